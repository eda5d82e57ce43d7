package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSampleTimeParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "full datetime with offset",
			input: "2024-01-15 08:30:00 -0500",
			want:  time.Date(2024, 1, 15, 8, 30, 0, 0, time.FixedZone("", -5*3600)),
		},
		{
			name:  "date only",
			input: "2024-01-15",
			want:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "garbage",
			input:   "not-a-date",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var st SampleTime
			err := st.Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %v", tt.input, st.Time)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if !st.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, st.Time, tt.want)
			}
		})
	}
}

func TestSampleTimeJSONRoundTrip(t *testing.T) {
	input := `"2024-03-01 22:15:30 +0100"`
	var st SampleTime
	if err := json.Unmarshal([]byte(input), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	out, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != input {
		t.Errorf("round trip = %s, want %s", out, input)
	}
}

func TestNumericValue(t *testing.T) {
	tests := []struct {
		value string
		want  float64
		ok    bool
	}{
		{"123.45", 123.45, true},
		{"0", 0, true},
		{"-3.5", -3.5, true},
		{"HKCategoryValueSleepAnalysisAsleepDeep", 0, false},
		{"", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"-Inf", 0, false},
	}

	for _, tt := range tests {
		s := HealthSample{Value: tt.value}
		got, ok := s.NumericValue()
		if ok != tt.ok || got != tt.want {
			t.Errorf("NumericValue(%q) = %v, %v; want %v, %v", tt.value, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDayKey(t *testing.T) {
	s := HealthSample{StartTime: SampleTime{Time: time.Date(2024, 6, 3, 23, 59, 0, 0, time.UTC)}}
	if got := s.DayKey(); got != "2024-06-03" {
		t.Errorf("DayKey() = %q, want %q", got, "2024-06-03")
	}
}
