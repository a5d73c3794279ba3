package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/vukan322/devfolio/internal/core"
)

var ErrUnexpectedStatus = errors.New("unexpected status")

// ViewsProvider reports the total number of post views across the blog.
type ViewsProvider interface {
	Name() string
	TotalViews(ctx context.Context) (int, error)
}

// CodingProvider reports coding activity for a recent window and all time.
type CodingProvider interface {
	Name() string
	RecentSummary(ctx context.Context) (*core.RecentSummary, error)
	AllTimeSummary(ctx context.Context) (*core.AllTimeSummary, error)
}

// SourceHostProvider reports profile statistics from a source-hosting platform.
type SourceHostProvider interface {
	Name() string
	DisplayName() string
	UserStats(ctx context.Context) (*core.UserStats, error)
}

// CheckStatus returns an error wrapping ErrUnexpectedStatus for non-2xx responses.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.Request == nil || resp.Request.URL == nil {
		return fmt.Errorf("%w %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return fmt.Errorf("%w %d from %s", ErrUnexpectedStatus, resp.StatusCode, resp.Request.URL.Redacted())
}
