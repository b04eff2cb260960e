package entity

import "errors"

// Error kinds surfaced to callers. Wrap them with fmt.Errorf("...: %w", ErrX) and test with errors.Is.
var (
	ErrInvalidAddress   = errors.New("invalid address")
	ErrFetch            = errors.New("fetch error")
	ErrParse            = errors.New("parse error")
	ErrRateLimited      = errors.New("rate limited")
	ErrInvalidTimeframe = errors.New("invalid timeframe")
	ErrInvalidPage      = errors.New("invalid page")
	ErrNotFound         = errors.New("not found")
)

// ErrorKind returns the name of the error kind err belongs to, or "Internal" for unclassified errors.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidAddress):
		return "InvalidAddress"
	case errors.Is(err, ErrInvalidTimeframe):
		return "InvalidTimeframe"
	case errors.Is(err, ErrInvalidPage):
		return "InvalidPage"
	case errors.Is(err, ErrRateLimited):
		return "RateLimited"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrFetch):
		return "FetchError"
	case errors.Is(err, ErrParse):
		return "ParseError"
	default:
		return "Internal"
	}
}
