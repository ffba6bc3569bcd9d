package simulate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/lapreplay/internal/domain/report"
)

// HTTPReplayer posts logs to a running lapreplay server.
type HTTPReplayer struct {
	client  *http.Client
	baseURL string
}

// NewHTTPReplayer creates a replayer for the server at baseURL.
func NewHTTPReplayer(baseURL string, timeout time.Duration) *HTTPReplayer {
	return &HTTPReplayer{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Replay implements Replayer via POST /replays.
func (c *HTTPReplayer) Replay(ctx context.Context, r io.Reader) (*report.Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/replays", r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		if json.Unmarshal(body, &e) == nil && e.Code != "" {
			return nil, fmt.Errorf("replay rejected with status %d: %s: %s", resp.StatusCode, e.Code, e.Message)
		}
		return nil, fmt.Errorf("replay rejected with status %d", resp.StatusCode)
	}

	var rep report.Report
	if err := json.Unmarshal(body, &rep); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &rep, nil
}
