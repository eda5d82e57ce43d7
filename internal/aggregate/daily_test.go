package aggregate

import (
	"encoding/json"
	"testing"
)

func TestAggregateSum(t *testing.T) {
	v := Aggregate([]float64{1000, 500, 2000, 750, 1250}, KindSum)
	if v.Total != 5500 {
		t.Errorf("total = %v, want 5500", v.Total)
	}
	if v.Count != 5 {
		t.Errorf("count = %d, want 5", v.Count)
	}
}

func TestAggregateAvgMinMax(t *testing.T) {
	v := Aggregate([]float64{65, 72, 95, 140, 88, 70}, KindAvgMinMax)
	if v.Min != 65 {
		t.Errorf("min = %v, want 65", v.Min)
	}
	if v.Max != 140 {
		t.Errorf("max = %v, want 140", v.Max)
	}
	if v.Avg != 88.33 {
		t.Errorf("avg = %v, want 88.33", v.Avg)
	}
	if v.Count != 6 {
		t.Errorf("count = %d, want 6", v.Count)
	}
}

func TestAggregateLatest(t *testing.T) {
	v := Aggregate([]float64{70.1, 69.8, 70.456}, KindLatest)
	if v.Latest != 70.46 {
		t.Errorf("latest = %v, want 70.46", v.Latest)
	}
}

func TestAggregateCount(t *testing.T) {
	v := Aggregate([]float64{1, 1, 1}, KindCount)
	if v.Total != 3 || v.Count != 3 {
		t.Errorf("count aggregate = {total %v count %d}, want both 3", v.Total, v.Count)
	}
}

func TestAggregateDuration(t *testing.T) {
	v := Aggregate([]float64{30.25, 14.5}, KindDuration)
	if v.Total != 44.75 {
		t.Errorf("total = %v, want 44.75", v.Total)
	}
	if v.Count != 2 {
		t.Errorf("count = %d, want 2", v.Count)
	}
}

func TestAggregateAvgRounding(t *testing.T) {
	// 10/3 = 3.333... rounds to 3.33; rounding happens once on the result.
	v := Aggregate([]float64{3, 3, 4}, KindAvg)
	if v.Avg != 3.33 {
		t.Errorf("avg = %v, want 3.33", v.Avg)
	}
}

func TestAggregateSingleValue(t *testing.T) {
	for _, kind := range []Kind{KindSum, KindAvg, KindAvgMinMax, KindLatest, KindDuration, KindCount} {
		v := Aggregate([]float64{42}, kind)
		if v.Count == 0 && kind != KindLatest {
			t.Errorf("kind %v: count = 0 for single value", kind)
		}
	}
}

// TestValueMarshalJSON pins the exact serialized shapes. Keys must come
// out byte-sorted so a decode-into-map reencode reproduces the same bytes.
func TestValueMarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{
			name:  "sum",
			value: Value{Kind: KindSum, Total: 5500, Count: 5},
			want:  `{"count":5,"total":5500}`,
		},
		{
			name:  "duration",
			value: Value{Kind: KindDuration, Total: 455, Count: 9},
			want:  `{"count":9,"total":455}`,
		},
		{
			name:  "count",
			value: Value{Kind: KindCount, Total: 3, Count: 3},
			want:  `{"count":3,"total":3}`,
		},
		{
			name:  "avg_min_max",
			value: Value{Kind: KindAvgMinMax, Avg: 88.33, Min: 65, Max: 140, Count: 6},
			want:  `{"avg":88.33,"count":6,"max":140,"min":65}`,
		},
		{
			name:  "latest is a bare number",
			value: Value{Kind: KindLatest, Latest: 70.5},
			want:  `70.5`,
		},
		{
			name:  "avg",
			value: Value{Kind: KindAvg, Avg: 16.4, Count: 12},
			want:  `{"avg":16.4,"count":12}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("marshal = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{88.333333, 88.33},
		{1.006, 1.01},
		{-1.006, -1.01},
		{0, 0},
		{2.5, 2.5},
	}
	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
