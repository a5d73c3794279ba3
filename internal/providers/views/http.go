package views

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vukan322/devfolio/internal/providers"
)

// Remote reads the total from an external view counter that answers
// GET requests with {"total": n}.
type Remote struct {
	client   *http.Client
	endpoint string
}

func NewRemote(endpoint string) *Remote {
	return &Remote{
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: endpoint,
	}
}

func (r *Remote) Name() string {
	return "views-http"
}

func (r *Remote) TotalViews(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("views: new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("views: do request: %w", err)
	}
	defer resp.Body.Close()

	if err := providers.CheckStatus(resp); err != nil {
		return 0, fmt.Errorf("views: %w", err)
	}

	var out struct {
		Total *int `json:"total"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("views: decode response: %w", err)
	}
	if out.Total == nil {
		return 0, fmt.Errorf("views: response has no total")
	}
	return *out.Total, nil
}
