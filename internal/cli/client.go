package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hpcsched/batling/internal/trace"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// TraceSummary mirrors the server's summary response.
type TraceSummary struct {
	trace.Summary
	Backfills              uint64 `json:"backfills"`
	ContiguousBackfills    uint64 `json:"contiguousBackfills"`
	NonContiguousBackfills uint64 `json:"nonContiguousBackfills"`
}

func (c *Client) GetTraceSummary() (*TraceSummary, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/api/v1/trace/summary")
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var summary TraceSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &summary, nil
}

func (c *Client) ListCycles() ([]trace.CycleRecord, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/api/v1/trace/cycles")
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var cycles []trace.CycleRecord
	if err := json.NewDecoder(resp.Body).Decode(&cycles); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return cycles, nil
}
