package lines

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"

	toerrors "github.com/conneroisu/codetour/internal/errors"
)

const (
	// MaxLine is the largest line number a spec may reference.
	MaxLine = math.MaxInt32

	// MaxRangeWidth caps how many lines a single "a-b" token may expand to.
	MaxRangeWidth = 100000
)

// Parse converts a spec like "3,5-8,12" into a LineSet. Tokens are separated
// by commas and may be surrounded by whitespace. A blank spec yields an empty
// set. Any malformed token (non-numeric, zero, reversed range, empty) fails
// the whole parse with an INVALID_RANGE validation error.
func Parse(spec string) (LineSet, error) {
	set, errs := parse(spec)
	if len(errs) > 0 {
		return LineSet{}, errs[0]
	}
	return set, nil
}

// ParseLenient parses spec like Parse but skips malformed tokens, returning
// the set built from the valid ones together with one error per bad token.
func ParseLenient(spec string) (LineSet, []error) {
	return parse(spec)
}

// MustParse is like Parse but panics on error. Intended for tests and
// constant specs.
func MustParse(spec string) LineSet {
	set, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return set
}

func parse(spec string) (LineSet, []error) {
	bm := roaring.New()
	if strings.TrimSpace(spec) == "" {
		return LineSet{bm: bm}, nil
	}

	var errs []error
	for _, raw := range strings.Split(spec, ",") {
		token := strings.TrimSpace(raw)
		if err := addToken(bm, token); err != nil {
			errs = append(errs, err.WithContext("spec", spec))
		}
	}

	return LineSet{bm: bm}, errs
}

func addToken(bm *roaring.Bitmap, token string) *toerrors.TourError {
	if token == "" {
		return toerrors.ErrInvalidRange(token, "empty token")
	}

	if !strings.Contains(token, "-") {
		line, reason := parseLine(token)
		if reason != "" {
			return toerrors.ErrInvalidRange(token, reason)
		}
		bm.Add(uint32(line))
		return nil
	}

	parts := strings.Split(token, "-")
	if len(parts) != 2 {
		return toerrors.ErrInvalidRange(token, "expected start-end")
	}
	first, last := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if first == "" {
		return toerrors.ErrInvalidRange(token, "missing range start")
	}
	if last == "" {
		return toerrors.ErrInvalidRange(token, "missing range end")
	}

	start, reason := parseLine(first)
	if reason != "" {
		return toerrors.ErrInvalidRange(token, reason)
	}
	end, reason := parseLine(last)
	if reason != "" {
		return toerrors.ErrInvalidRange(token, reason)
	}
	if end < start {
		return toerrors.ErrInvalidRange(token, "range end is before range start")
	}
	if end-start >= MaxRangeWidth {
		return toerrors.ErrInvalidRange(token, "range is too wide")
	}

	// AddRange's upper bound is exclusive.
	bm.AddRange(uint64(start), uint64(end)+1)
	return nil
}

// parseLine returns the line number or a non-empty reason it is invalid.
func parseLine(token string) (int, string) {
	line, err := strconv.Atoi(token)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, "line number is too large"
		}
		return 0, "not a number"
	}
	if line < 1 {
		return 0, "line numbers start at 1"
	}
	if line > MaxLine {
		return 0, "line number is too large"
	}
	return line, ""
}
