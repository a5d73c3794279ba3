package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vukan322/devfolio/internal/core"
	"github.com/vukan322/devfolio/internal/logfields"
	"github.com/vukan322/devfolio/internal/providers"
)

const defaultBaseURL = "https://gitlab.com/api/v4"

type Provider struct {
	client  *http.Client
	baseURL string
	token   string
	user    string
	logger  *slog.Logger
}

type Option func(*Provider)

// WithBaseURL points the provider at a self-managed instance.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// WithLogger sets where degraded sub-lookups are reported.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

func New(token, user string, opts ...Option) *Provider {
	p := &Provider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBaseURL,
		token:   token,
		user:    user,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) Name() string {
	return "gitlab"
}

func (p *Provider) DisplayName() string {
	return "GitLab"
}

type gitlabUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type gitlabProject struct {
	ID        int  `json:"id"`
	StarCount *int `json:"star_count"`
}

// UserStats fails only when the user cannot be resolved. The follower,
// merge request and project lookups degrade to absent fields on their own.
func (p *Provider) UserStats(ctx context.Context) (*core.UserStats, error) {
	user, err := p.fetchUser(ctx, p.user)
	if err != nil {
		return nil, fmt.Errorf("gitlab: fetch user: %w", err)
	}

	stats := &core.UserStats{}

	endpoint := fmt.Sprintf("%s/users/%d/followers?per_page=1", p.baseURL, user.ID)
	if n, err := p.fetchTotal(ctx, endpoint); err != nil {
		p.logger.Warn("gitlab: followers unavailable", logfields.Error(err))
	} else {
		stats.Followers = &n
	}

	endpoint = fmt.Sprintf("%s/merge_requests?author_id=%d&scope=all&state=all&per_page=1", p.baseURL, user.ID)
	if n, err := p.fetchTotal(ctx, endpoint); err != nil {
		p.logger.Warn("gitlab: merge requests unavailable", logfields.Error(err))
	} else {
		stats.PullRequests = &n
	}

	projects, err := p.fetchProjects(ctx, user.ID)
	if err != nil {
		p.logger.Warn("gitlab: projects unavailable", logfields.Error(err))
	} else {
		conn := &core.RepositoryConnection{Edges: make([]core.RepositoryEdge, 0, len(projects))}
		for _, pr := range projects {
			conn.Edges = append(conn.Edges, core.RepositoryEdge{
				Node: &core.Repository{StargazerCount: pr.StarCount},
			})
		}
		stats.Repositories = conn
	}

	return stats, nil
}

func (p *Provider) fetchUser(ctx context.Context, handle string) (*gitlabUser, error) {
	if handle == "" {
		return nil, fmt.Errorf("no user configured")
	}
	endpoint := fmt.Sprintf("%s/users?username=%s", p.baseURL, url.QueryEscape(handle))

	resp, err := p.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var users []gitlabUser
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("decode user response: %w", err)
	}

	if len(users) == 0 {
		return nil, fmt.Errorf("user %q not found", handle)
	}

	return &users[0], nil
}

// fetchTotal reads the X-Total pagination header of a list endpoint.
func (p *Provider) fetchTotal(ctx context.Context, endpoint string) (int, error) {
	resp, err := p.get(ctx, endpoint)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw := resp.Header.Get("X-Total")
	if raw == "" {
		return 0, fmt.Errorf("missing X-Total header from %s", endpoint)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse X-Total %q: %w", raw, err)
	}
	return n, nil
}

func (p *Provider) fetchProjects(ctx context.Context, userID int) ([]gitlabProject, error) {
	var all []gitlabProject
	page := 1

	for {
		endpoint := fmt.Sprintf(
			"%s/users/%d/projects?per_page=100&page=%d&simple=true",
			p.baseURL,
			userID,
			page,
		)

		pageProjects, err := p.fetchProjectPage(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		if len(pageProjects) == 0 {
			break
		}

		all = append(all, pageProjects...)
		page++
	}

	return all, nil
}

func (p *Provider) fetchProjectPage(ctx context.Context, endpoint string) ([]gitlabProject, error) {
	resp, err := p.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var projects []gitlabProject
	if err := json.NewDecoder(resp.Body).Decode(&projects); err != nil {
		return nil, fmt.Errorf("decode projects response: %w", err)
	}
	return projects, nil
}

func (p *Provider) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	p.applyAuth(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if err := providers.CheckStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func (p *Provider) applyAuth(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if p.token != "" {
		req.Header.Set("PRIVATE-TOKEN", p.token)
	}
}
