package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vukan322/devfolio/internal/core"
)

var opts = Options{ProfileURL: "https://github.com/octocat", HostName: "GitHub"}

func fullSnapshot() core.Snapshot {
	return core.Snapshot{
		TotalPosts:        12,
		PostViews:         core.Ptr(48213),
		Followers:         core.Ptr(42),
		PullRequests:      core.Ptr(17),
		Stars:             core.Ptr(14),
		CodingTime:        core.Ptr("3 hrs 12 mins"),
		DailyAverage:      core.Ptr(1.5),
		TopLanguage:       core.Ptr("Go"),
		SecondaryLanguage: core.Ptr("TypeScript"),
	}
}

func titles(cards []Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Title)
	}
	return out
}

var wantTitles = []string{
	"Total Posts",
	"Total Posts Views",
	"GitHub Followers",
	"Pull Requests",
	"GitHub Stars",
	"Coding Time*",
	"Daily Average*",
	"Languages",
}

func TestCardsFull(t *testing.T) {
	cards := Cards(fullSnapshot(), opts)

	require.Len(t, cards, GridSize)
	assert.Equal(t, wantTitles, titles(cards))

	assert.Equal(t, Card{Title: "Total Posts", Value: "12", Href: "/blog"}, cards[0])
	assert.Equal(t, "48,213", cards[1].Value)
	assert.Equal(t, "https://github.com/octocat", cards[2].Href)
	assert.Equal(t, "14", cards[4].Value)
	assert.Equal(t, "3 hrs 12 mins", cards[5].Value)
	assert.Empty(t, cards[5].Href)
	assert.Equal(t, "1.5", cards[6].Value)
	assert.Equal(t, "Go / TypeScript", cards[7].Value)
}

func TestCardsEmptySnapshot(t *testing.T) {
	cards := Cards(core.Snapshot{}, Options{})

	require.Len(t, cards, GridSize)
	assert.Equal(t, wantTitles, titles(cards))
	assert.Equal(t, "0", cards[0].Value)
	for _, c := range cards[1:] {
		assert.Equal(t, Placeholder, c.Value, c.Title)
	}
}

func TestCardsProviderFailureCombinations(t *testing.T) {
	full := fullSnapshot()

	// Cards owned by each provider, by grid index.
	owned := map[string][]int{
		"views":  {1},
		"host":   {2, 3, 4},
		"coding": {5, 6, 7},
	}

	for mask := 0; mask < 8; mask++ {
		s := full
		failed := map[int]bool{}
		if mask&1 != 0 {
			s.PostViews = nil
			for _, i := range owned["views"] {
				failed[i] = true
			}
		}
		if mask&2 != 0 {
			s.Followers, s.PullRequests, s.Stars = nil, nil, nil
			for _, i := range owned["host"] {
				failed[i] = true
			}
		}
		if mask&4 != 0 {
			s.CodingTime, s.DailyAverage, s.TopLanguage, s.SecondaryLanguage = nil, nil, nil, nil
			for _, i := range owned["coding"] {
				failed[i] = true
			}
		}

		cards := Cards(s, opts)
		require.Len(t, cards, GridSize)
		assert.Equal(t, wantTitles, titles(cards))
		for i, c := range cards {
			if failed[i] {
				assert.Equal(t, Placeholder, c.Value, "mask %d card %q", mask, c.Title)
			} else {
				assert.NotEqual(t, Placeholder, c.Value, "mask %d card %q", mask, c.Title)
			}
		}
		assert.Equal(t, len(failed)+boolInt(mask&4 != 0), s.MissingFields(), "mask %d", mask)
	}
}

// The coding provider owns three cards but four fields.
func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func TestCardsPartialLanguages(t *testing.T) {
	s := core.Snapshot{TopLanguage: core.Ptr("Go")}
	assert.Equal(t, "Go / --", Cards(s, opts)[7].Value)
}

func TestCardsHostName(t *testing.T) {
	cards := Cards(core.Snapshot{}, Options{HostName: "GitLab"})
	assert.Equal(t, "GitLab Followers", cards[2].Title)
	assert.Equal(t, "GitLab Stars", cards[4].Title)
	assert.True(t, strings.HasPrefix(cards[0].Href, "/blog"))
}
