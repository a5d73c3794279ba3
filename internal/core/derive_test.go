package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodingTimeLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "3 hrs 12 mins today", want: "3 hrs 12 mins", ok: true},
		{in: "3 hrs 12 mins", want: "3 hrs 12 mins", ok: true},
		{in: "45 mins", want: "45 mins", ok: true},
		{in: "1,234 hrs 5 mins 10 secs", want: "1,234 hrs 5 mins", ok: true},
		{in: "  2 hrs  ", want: "2 hrs", ok: true},
		{in: "today", ok: false},
		{in: "", ok: false},
		{in: "3", ok: false},
	}

	for _, tc := range cases {
		got, ok := CodingTimeLabel(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestDecimalHours(t *testing.T) {
	assert.Equal(t, 1.5, DecimalHours(90*time.Minute))
	assert.Equal(t, 0.0, DecimalHours(0))
	assert.Equal(t, 2.33, DecimalHours(2*time.Hour+20*time.Minute))
}

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"1:30":         90 * time.Minute,
		"0:05":         5 * time.Minute,
		"1:30:30":      90*time.Minute + 30*time.Second,
		"1 hr 30 mins": 90 * time.Minute,
		"2 hrs":        2 * time.Hour,
		"1h30m":        90 * time.Minute,
	}
	for in, want := range cases {
		got, err := ParseDuration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "1:75", "a:b", "3 parsecs", "1 hr 30"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseDurationFeedsDecimalHours(t *testing.T) {
	d, err := ParseDuration("1:30")
	require.NoError(t, err)
	assert.Equal(t, 1.5, DecimalHours(d))
}

func TestSumStars(t *testing.T) {
	edges := func(counts ...int) *RepositoryConnection {
		conn := &RepositoryConnection{Edges: []RepositoryEdge{}}
		for _, c := range counts {
			conn.Edges = append(conn.Edges, RepositoryEdge{Node: &Repository{StargazerCount: Ptr(c)}})
		}
		return conn
	}

	got := SumStars(edges(4, 0, 10))
	require.NotNil(t, got)
	assert.Equal(t, 14, *got)

	got = SumStars(edges())
	require.NotNil(t, got)
	assert.Equal(t, 0, *got)

	assert.Nil(t, SumStars(nil))
}

func TestSumStarsSkipsMalformedEdges(t *testing.T) {
	conn := &RepositoryConnection{Edges: []RepositoryEdge{
		{Node: &Repository{StargazerCount: Ptr(3)}},
		{Node: nil},
		{Node: &Repository{}},
		{Node: &Repository{StargazerCount: Ptr(2)}},
	}}

	got := SumStars(conn)
	require.NotNil(t, got)
	assert.Equal(t, 5, *got)
}
