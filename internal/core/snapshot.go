package core

// Results holds whatever each provider query returned. Nil entries are
// queries that failed or had nothing to report.
type Results struct {
	TotalPosts int
	PostViews  *int
	Recent     *RecentSummary
	AllTime    *AllTimeSummary
	User       *UserStats
}

func BuildSnapshot(r Results) Snapshot {
	s := Snapshot{
		TotalPosts: r.TotalPosts,
		PostViews:  r.PostViews,
	}

	if r.Recent != nil && r.Recent.Text != nil {
		if label, ok := CodingTimeLabel(*r.Recent.Text); ok {
			s.CodingTime = &label
		}
	}

	if at := r.AllTime; at != nil {
		if at.DailyAverage != nil {
			s.DailyAverage = Ptr(DecimalHours(*at.DailyAverage))
		}
		s.TopLanguage = languageName(at.TopLanguage)
		s.SecondaryLanguage = languageName(at.SecondaryLanguage)
	}

	if u := r.User; u != nil {
		s.Followers = u.Followers
		s.PullRequests = u.PullRequests
		s.Stars = SumStars(u.Repositories)
	}

	return s
}

func languageName(l *Language) *string {
	if l == nil || l.Name == nil || *l.Name == "" {
		return nil
	}
	return l.Name
}

// MissingFields counts the optional fields that are absent.
func (s Snapshot) MissingFields() int {
	n := 0
	for _, missing := range []bool{
		s.PostViews == nil,
		s.Followers == nil,
		s.PullRequests == nil,
		s.Stars == nil,
		s.CodingTime == nil,
		s.DailyAverage == nil,
		s.TopLanguage == nil,
		s.SecondaryLanguage == nil,
	} {
		if missing {
			n++
		}
	}
	return n
}
