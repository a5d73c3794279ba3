package core

import "time"

// Snapshot is the set of resolved metric values for one render pass.
// A nil field means the owning provider could not supply it.
type Snapshot struct {
	TotalPosts int `json:"totalPosts"`

	PostViews *int `json:"postViews"`

	Followers    *int `json:"followers"`
	PullRequests *int `json:"pullRequests"`
	Stars        *int `json:"stars"`

	CodingTime        *string  `json:"codingTime"`
	DailyAverage      *float64 `json:"dailyAverage"`
	TopLanguage       *string  `json:"topLanguage"`
	SecondaryLanguage *string  `json:"secondaryLanguage"`
}

type RecentSummary struct {
	Text *string
}

type Language struct {
	Name *string
}

type AllTimeSummary struct {
	DailyAverage      *time.Duration
	TopLanguage       *Language
	SecondaryLanguage *Language
}

type Repository struct {
	StargazerCount *int
}

type RepositoryEdge struct {
	Node *Repository
}

type RepositoryConnection struct {
	Edges []RepositoryEdge
}

type UserStats struct {
	Followers    *int
	PullRequests *int
	Repositories *RepositoryConnection
}

func Ptr[T any](v T) *T {
	return &v
}
