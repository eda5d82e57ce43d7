// Package archive is the boundary to the remote encrypted object store.
// The store client encrypts payloads with a wallet-derived key before
// upload and decrypts on download; this package sees plaintext payloads
// plus their stored metadata, and is responsible for integrity
// verification against the embedded content digest.
package archive

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/healthvault/internal/aggregate"
)

// ErrIntegrity marks a digest mismatch after download. It is fatal to the
// read: callers must never fall back to the payload as if it were valid.
var ErrIntegrity = errors.New("archive: content digest mismatch")

// ErrNotFound marks a missing object, distinct from integrity and
// transport failures.
var ErrNotFound = errors.New("archive: object not found")

// MetaDigest is the metadata key the content digest is stored under.
const MetaDigest = "digest"

// MetaDataType tags what kind of payload an object holds.
const MetaDataType = "data_type"

// OpResult reports a storage operation's outcome. Failures are values,
// not errors, so batch operations can record per-item outcomes without
// aborting.
type OpResult struct {
	Success bool   `json:"success"`
	URI     string `json:"uri,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ObjectRef identifies one stored object and its metadata.
type ObjectRef struct {
	URI      string            `json:"uri"`
	Metadata map[string]string `json:"metadata"`
}

// Client talks to the encrypted object store over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a store client for the given base URL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Digest computes the content digest of a payload in stored form.
func Digest(payload []byte) string {
	sum := sha256.Sum256(payload)
	return aggregate.DigestPrefix + hex.EncodeToString(sum[:])
}

type uploadRequest struct {
	Payload  json.RawMessage   `json:"payload"`
	Metadata map[string]string `json:"metadata"`
}

type uploadResponse struct {
	URI string `json:"uri"`
}

// Upload stores a payload with its metadata. The content digest is
// computed here and merged into the metadata so downloads can verify.
// Retries up to 3 times with exponential backoff on transport failure.
func (c *Client) Upload(ctx context.Context, dataType string, payload []byte, metadata map[string]string) OpResult {
	merged := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		merged[k] = v
	}
	merged[MetaDigest] = Digest(payload)
	merged[MetaDataType] = dataType

	body, err := json.Marshal(uploadRequest{Payload: payload, Metadata: merged})
	if err != nil {
		return OpResult{Error: fmt.Sprintf("marshaling upload: %v", err)}
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/objects", bytes.NewReader(body))
		if err != nil {
			return OpResult{Error: err.Error()}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
			var ur uploadResponse
			if err := json.Unmarshal(respBody, &ur); err != nil {
				return OpResult{Error: fmt.Sprintf("decoding upload response: %v", err)}
			}
			return OpResult{Success: true, URI: ur.URI}
		}
		lastErr = fmt.Errorf("upload failed (status %d): %s", resp.StatusCode, respBody)
	}

	return OpResult{Error: fmt.Sprintf("after 3 attempts: %v", lastErr)}
}

type downloadResponse struct {
	Payload  json.RawMessage   `json:"payload"`
	Metadata map[string]string `json:"metadata"`
}

// Download fetches a payload and verifies it against the digest recorded
// at upload time. A mismatch returns ErrIntegrity — a hard failure,
// surfaced distinctly from ErrNotFound and transport errors.
func (c *Client) Download(ctx context.Context, uri string) ([]byte, map[string]string, error) {
	body, err := c.get(ctx, "/v1/objects/"+url.PathEscape(uri))
	if err != nil {
		return nil, nil, err
	}

	var dr downloadResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, nil, fmt.Errorf("decoding download: %w", err)
	}

	stored := dr.Metadata[MetaDigest]
	if actual := Digest(dr.Payload); stored != "" && actual != stored {
		return nil, nil, fmt.Errorf("%w: stored %s, computed %s", ErrIntegrity, stored, actual)
	}

	return dr.Payload, dr.Metadata, nil
}

// List enumerates stored objects with the given data-type tag.
func (c *Client) List(ctx context.Context, dataType string) ([]ObjectRef, error) {
	params := url.Values{}
	params.Set(MetaDataType, dataType)

	body, err := c.get(ctx, "/v1/objects?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var refs []ObjectRef
	if err := json.Unmarshal(body, &refs); err != nil {
		return nil, fmt.Errorf("decoding object list: %w", err)
	}
	return refs, nil
}

// Delete removes a stored object.
func (c *Client) Delete(ctx context.Context, uri string) OpResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.baseURL+"/v1/objects/"+url.PathEscape(uri), nil)
	if err != nil {
		return OpResult{Error: err.Error()}
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return OpResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return OpResult{Error: fmt.Sprintf("delete failed (status %d): %s", resp.StatusCode, body)}
	}
	return OpResult{Success: true, URI: uri}
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("archive: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("archive: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("archive: read body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("archive: %s returned %d: %s", path, resp.StatusCode, body)
	}
	return body, nil
}
