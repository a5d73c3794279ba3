package demo

import (
	"context"
	"time"

	"github.com/vukan322/devfolio/internal/core"
)

// DemoProvider serves fixed numbers for every provider contract so the site
// can run without credentials.
type DemoProvider struct{}

func New() *DemoProvider {
	return &DemoProvider{}
}

func (d *DemoProvider) Name() string {
	return "demo"
}

func (d *DemoProvider) DisplayName() string {
	return "GitHub"
}

func (d *DemoProvider) TotalViews(ctx context.Context) (int, error) {
	return 4821, nil
}

func (d *DemoProvider) RecentSummary(ctx context.Context) (*core.RecentSummary, error) {
	return &core.RecentSummary{Text: core.Ptr("21 hrs 43 mins")}, nil
}

func (d *DemoProvider) AllTimeSummary(ctx context.Context) (*core.AllTimeSummary, error) {
	avg := 3*time.Hour + 6*time.Minute
	return &core.AllTimeSummary{
		DailyAverage:      &avg,
		TopLanguage:       &core.Language{Name: core.Ptr("Go")},
		SecondaryLanguage: &core.Language{Name: core.Ptr("TypeScript")},
	}, nil
}

func (d *DemoProvider) UserStats(ctx context.Context) (*core.UserStats, error) {
	stars := []int{32, 11, 4, 0}
	edges := make([]core.RepositoryEdge, 0, len(stars))
	for _, s := range stars {
		edges = append(edges, core.RepositoryEdge{Node: &core.Repository{StargazerCount: core.Ptr(s)}})
	}

	return &core.UserStats{
		Followers:    core.Ptr(10),
		PullRequests: core.Ptr(58),
		Repositories: &core.RepositoryConnection{Edges: edges},
	}, nil
}
