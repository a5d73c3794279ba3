package wakatime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vukan322/devfolio/internal/core"
	"github.com/vukan322/devfolio/internal/providers"
)

const (
	defaultBaseURL   = "https://wakatime.com/api/v1"
	defaultUserAgent = "devfolio/0.1"

	recentPath  = "/users/current/stats/last_7_days"
	allTimePath = "/users/current/stats/all_time"
)

type Provider struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

type Option func(*Provider)

func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return "wakatime"
}

type recentResponse struct {
	Data *struct {
		HumanReadableTotal *string `json:"human_readable_total"`
	} `json:"data"`
}

type wakaLanguage struct {
	Name *string `json:"name"`
}

type allTimeResponse struct {
	Data *struct {
		DailyAverage              *float64       `json:"daily_average"`
		HumanReadableDailyAverage *string        `json:"human_readable_daily_average"`
		Languages                 []wakaLanguage `json:"languages"`
	} `json:"data"`
}

func (p *Provider) RecentSummary(ctx context.Context) (*core.RecentSummary, error) {
	var out recentResponse
	if err := p.get(ctx, recentPath, &out); err != nil {
		return nil, fmt.Errorf("wakatime: recent summary: %w", err)
	}
	if out.Data == nil {
		return nil, fmt.Errorf("wakatime: recent summary: empty response")
	}
	return &core.RecentSummary{Text: out.Data.HumanReadableTotal}, nil
}

func (p *Provider) AllTimeSummary(ctx context.Context) (*core.AllTimeSummary, error) {
	var out allTimeResponse
	if err := p.get(ctx, allTimePath, &out); err != nil {
		return nil, fmt.Errorf("wakatime: all-time summary: %w", err)
	}
	if out.Data == nil {
		return nil, fmt.Errorf("wakatime: all-time summary: empty response")
	}

	summary := &core.AllTimeSummary{
		DailyAverage: dailyAverage(out.Data.DailyAverage, out.Data.HumanReadableDailyAverage),
	}
	if len(out.Data.Languages) > 0 {
		summary.TopLanguage = &core.Language{Name: out.Data.Languages[0].Name}
	}
	if len(out.Data.Languages) > 1 {
		summary.SecondaryLanguage = &core.Language{Name: out.Data.Languages[1].Name}
	}
	return summary, nil
}

// dailyAverage prefers the numeric seconds field and falls back to the
// human readable text when WakaTime has not finished computing stats.
func dailyAverage(seconds *float64, text *string) *time.Duration {
	if seconds != nil {
		d := time.Duration(*seconds * float64(time.Second))
		return &d
	}
	if text != nil {
		if d, err := core.ParseDuration(*text); err == nil {
			return &d
		}
	}
	return nil
}

func (p *Provider) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	p.applyHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if err := providers.CheckStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (p *Provider) applyHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(p.apiKey)))
	}
}
