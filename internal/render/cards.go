package render

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/vukan322/devfolio/internal/core"
)

// Placeholder is shown for any metric that could not be resolved.
const Placeholder = "--"

// GridSize is the fixed number of cards in the metrics grid.
const GridSize = 8

type Card struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Href  string `json:"href,omitempty"`
}

type Options struct {
	BlogPath   string
	ProfileURL string
	HostName   string
}

var numbers = message.NewPrinter(language.English)

// Cards lays out a snapshot in the fixed grid order. It always returns
// GridSize cards.
func Cards(s core.Snapshot, opts Options) []Card {
	blog := opts.BlogPath
	if blog == "" {
		blog = "/blog"
	}
	host := opts.HostName
	if host == "" {
		host = "GitHub"
	}

	return []Card{
		{Title: "Total Posts", Value: formatInt(&s.TotalPosts), Href: blog},
		{Title: "Total Posts Views", Value: formatInt(s.PostViews), Href: blog},
		{Title: host + " Followers", Value: formatInt(s.Followers), Href: opts.ProfileURL},
		{Title: "Pull Requests", Value: formatInt(s.PullRequests), Href: opts.ProfileURL},
		{Title: host + " Stars", Value: formatInt(s.Stars), Href: opts.ProfileURL},
		{Title: "Coding Time*", Value: formatString(s.CodingTime)},
		{Title: "Daily Average*", Value: formatHours(s.DailyAverage)},
		{Title: "Languages", Value: formatLanguages(s.TopLanguage, s.SecondaryLanguage)},
	}
}

func formatInt(v *int) string {
	if v == nil {
		return Placeholder
	}
	return numbers.Sprintf("%d", *v)
}

func formatString(v *string) string {
	if v == nil || *v == "" {
		return Placeholder
	}
	return *v
}

func formatHours(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatLanguages(top, secondary *string) string {
	if top == nil && secondary == nil {
		return Placeholder
	}
	return formatString(top) + " / " + formatString(secondary)
}
