package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vukan322/devfolio/internal/core"
	"github.com/vukan322/devfolio/internal/logfields"
	"github.com/vukan322/devfolio/internal/providers"
)

const (
	defaultBaseURL   = "https://api.github.com"
	defaultUserAgent = "devfolio/0.1"
)

type Provider struct {
	client  *http.Client
	baseURL string
	token   string
	user    string
	logger  *slog.Logger
}

type Option func(*Provider)

func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

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
	return "github"
}

func (p *Provider) DisplayName() string {
	return "GitHub"
}

// maxRepositoryPages bounds the repository walk at 5000 repositories.
const maxRepositoryPages = 50

const userStatsQuery = `query($login: String!, $after: String) {
  user(login: $login) {
    followers { totalCount }
    pullRequests { totalCount }
    repositories(first: 100, after: $after, ownerAffiliations: OWNER, isFork: false, orderBy: {direction: DESC, field: STARGAZERS}) {
      pageInfo { hasNextPage endCursor }
      edges { node { stargazerCount } }
    }
  }
}`

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type countField struct {
	TotalCount *int `json:"totalCount"`
}

type repositoryPage struct {
	PageInfo struct {
		HasNextPage bool   `json:"hasNextPage"`
		EndCursor   string `json:"endCursor"`
	} `json:"pageInfo"`
	Edges []struct {
		Node *struct {
			StargazerCount *int `json:"stargazerCount"`
		} `json:"node"`
	} `json:"edges"`
}

type githubUser struct {
	Followers    *countField     `json:"followers"`
	PullRequests *countField     `json:"pullRequests"`
	Repositories *repositoryPage `json:"repositories"`
}

type userStatsResponse struct {
	Data *struct {
		User *githubUser `json:"user"`
	} `json:"data"`
	Errors []graphqlError `json:"errors"`
}

// UserStats reads the counts from the first page and walks the remaining
// repository pages for stars. A failed later page leaves stars absent
// rather than undercounted.
func (p *Provider) UserStats(ctx context.Context) (*core.UserStats, error) {
	if p.user == "" {
		return nil, errors.New("github: user stats: no user configured")
	}

	user, err := p.fetchUser(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("github: user stats: %w", err)
	}

	stats := convertUser(user)
	page := user.Repositories
	for n := 1; page != nil && page.PageInfo.HasNextPage; n++ {
		if n >= maxRepositoryPages {
			p.logger.Warn("github: repository list truncated",
				slog.Int("pages", n), logfields.Query("user_stats"))
			break
		}

		next, err := p.fetchUser(ctx, page.PageInfo.EndCursor)
		if err == nil && next.Repositories == nil {
			err = errors.New("repositories missing from page")
		}
		if err != nil {
			p.logger.Warn("github: repositories unavailable", logfields.Error(err))
			stats.Repositories = nil
			break
		}

		appendEdges(stats.Repositories, next.Repositories)
		page = next.Repositories
	}

	return stats, nil
}

func (p *Provider) fetchUser(ctx context.Context, after string) (*githubUser, error) {
	vars := map[string]any{"login": p.user, "after": nil}
	if after != "" {
		vars["after"] = after
	}

	var out userStatsResponse
	if err := p.query(ctx, graphqlRequest{Query: userStatsQuery, Variables: vars}, &out); err != nil {
		return nil, err
	}

	if out.Data == nil || out.Data.User == nil {
		if len(out.Errors) > 0 {
			return nil, errors.New(joinErrors(out.Errors))
		}
		return nil, fmt.Errorf("user %q not found", p.user)
	}
	return out.Data.User, nil
}

func convertUser(u *githubUser) *core.UserStats {
	stats := &core.UserStats{}
	if u.Followers != nil {
		stats.Followers = u.Followers.TotalCount
	}
	if u.PullRequests != nil {
		stats.PullRequests = u.PullRequests.TotalCount
	}
	if u.Repositories != nil {
		stats.Repositories = &core.RepositoryConnection{Edges: make([]core.RepositoryEdge, 0, len(u.Repositories.Edges))}
		appendEdges(stats.Repositories, u.Repositories)
	}
	return stats
}

func appendEdges(conn *core.RepositoryConnection, page *repositoryPage) {
	for _, e := range page.Edges {
		edge := core.RepositoryEdge{}
		if e.Node != nil {
			edge.Node = &core.Repository{StargazerCount: e.Node.StargazerCount}
		}
		conn.Edges = append(conn.Edges, edge)
	}
}

func (p *Provider) query(ctx context.Context, q graphqlRequest, out any) error {
	body, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/graphql", bytes.NewReader(body))
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
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", defaultUserAgent)
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
}

func joinErrors(errs []graphqlError) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}
