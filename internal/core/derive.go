package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const maxLabelPairs = 2

// CodingTimeLabel keeps the leading "<number> <unit>" pairs of a coding
// summary, so "3 hrs 12 mins today" becomes "3 hrs 12 mins".
func CodingTimeLabel(text string) (string, bool) {
	fields := strings.Fields(text)

	var kept []string
	for i := 0; i+1 < len(fields) && len(kept) < maxLabelPairs*2; i += 2 {
		if !isQuantity(fields[i]) {
			break
		}
		kept = append(kept, fields[i], fields[i+1])
	}
	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, " "), true
}

func isQuantity(s string) bool {
	s = strings.ReplaceAll(s, ",", "")
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// DecimalHours converts d to hours rounded to two decimal places.
func DecimalHours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}

// ParseDuration understands the textual forms coding trackers report:
// clock ("1:30", "1:30:15"), human readable ("1 hr 30 mins") and Go
// duration strings ("1h30m").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("parse duration: empty value")
	}

	if strings.Contains(s, ":") {
		return parseClock(s)
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	return parseHumanDuration(s)
}

func parseClock(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("parse duration %q: want H:MM or H:MM:SS", s)
	}

	units := []time.Duration{time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("parse duration %q: bad component %q", s, p)
		}
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("parse duration %q: component %q out of range", s, p)
		}
		total += time.Duration(n) * units[i]
	}
	return total, nil
}

var humanUnits = map[string]time.Duration{
	"hr":      time.Hour,
	"hrs":     time.Hour,
	"hour":    time.Hour,
	"hours":   time.Hour,
	"min":     time.Minute,
	"mins":    time.Minute,
	"minute":  time.Minute,
	"minutes": time.Minute,
	"sec":     time.Second,
	"secs":    time.Second,
	"second":  time.Second,
	"seconds": time.Second,
}

func parseHumanDuration(s string) (time.Duration, error) {
	fields := strings.Fields(s)
	if len(fields)%2 != 0 {
		return 0, fmt.Errorf("parse duration %q: unpaired quantity", s)
	}

	var total time.Duration
	for i := 0; i < len(fields); i += 2 {
		n, err := strconv.ParseFloat(strings.ReplaceAll(fields[i], ",", ""), 64)
		if err != nil {
			return 0, fmt.Errorf("parse duration %q: %w", s, err)
		}
		unit, ok := humanUnits[strings.ToLower(fields[i+1])]
		if !ok {
			return 0, fmt.Errorf("parse duration %q: unknown unit %q", s, fields[i+1])
		}
		total += time.Duration(n * float64(unit))
	}
	return total, nil
}

// SumStars totals stargazer counts across repository edges. A nil
// connection is absent; an edge without a count contributes zero.
func SumStars(conn *RepositoryConnection) *int {
	if conn == nil {
		return nil
	}

	var total int
	for _, e := range conn.Edges {
		if e.Node == nil || e.Node.StargazerCount == nil {
			continue
		}
		total += *e.Node.StargazerCount
	}
	return &total
}
