package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// Timeframe is the width of one chart bucket in seconds.
type Timeframe int64

const (
	Hour Timeframe = 3600
	Day  Timeframe = 86400
)

func (t Timeframe) Seconds() int64 {
	return int64(t)
}

func (t Timeframe) String() string {
	switch t {
	case Hour:
		return "h"
	case Day:
		return "d"
	default:
		return strconv.FormatInt(int64(t), 10) + "s"
	}
}

// ParseTimeframeUnit parses "h" or "d" (case-insensitive).
func ParseTimeframeUnit(unit string) (Timeframe, error) {
	switch strings.ToLower(unit) {
	case "h":
		return Hour, nil
	case "d":
		return Day, nil
	default:
		return 0, fmt.Errorf("unsupported timeframe unit %q: %w", unit, ErrInvalidTimeframe)
	}
}

// ParseTimeframe parses a "<range><unit>" string such as "7d" or "24h".
// The range must fit in a uint8; hourly ranges above maxHourlyRange are rejected.
func ParseTimeframe(s string, maxHourlyRange int) (Timeframe, uint8, error) {
	if len(s) < 2 {
		return 0, 0, fmt.Errorf("timeframe %q is too short: %w", s, ErrInvalidTimeframe)
	}

	tf, err := ParseTimeframeUnit(s[len(s)-1:])
	if err != nil {
		return 0, 0, err
	}

	rng, err := strconv.ParseUint(s[:len(s)-1], 10, 8)
	if err != nil {
		return 0, 0, fmt.Errorf("timeframe range %q: %w", s[:len(s)-1], ErrInvalidTimeframe)
	}
	if tf == Hour && maxHourlyRange > 0 && int(rng) > maxHourlyRange {
		return 0, 0, fmt.Errorf("hourly range %d exceeds %d: %w", rng, maxHourlyRange, ErrInvalidTimeframe)
	}

	return tf, uint8(rng), nil
}

// Page selects signatures [Start, End) from the newest-first signature list.
type Page struct {
	Start int
	End   int
}

// ParsePage parses a "start-end" page expression.
func ParsePage(s string) (Page, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return Page{}, fmt.Errorf("page %q must be start-end: %w", s, ErrInvalidPage)
	}
	start, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return Page{}, fmt.Errorf("page start %q: %w", parts[0], ErrInvalidPage)
	}
	end, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Page{}, fmt.Errorf("page end %q: %w", parts[1], ErrInvalidPage)
	}
	if end < start {
		return Page{}, fmt.Errorf("page end %d before start %d: %w", end, start, ErrInvalidPage)
	}
	return Page{Start: int(start), End: int(end)}, nil
}

// Bounds clamps the page to a list of n items.
func (p Page) Bounds(n int) (int, int) {
	start, end := p.Start, p.End
	if start > n {
		start = n
	}
	if end > n {
		end = n
	}
	return start, end
}
