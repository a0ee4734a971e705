// Package lines parses line-range specs such as "3,5-8,12" into LineSets.
//
// A LineSet is an immutable set of 1-based line numbers backed by a roaring
// bitmap. The zero value is an empty set and is safe to use.
package lines

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring"
)

// LineSet is an immutable set of 1-based line numbers.
type LineSet struct {
	bm *roaring.Bitmap
}

// Empty returns the empty LineSet.
func Empty() LineSet {
	return LineSet{}
}

// Of builds a LineSet from explicit line numbers. Non-positive values are
// dropped; duplicates collapse.
func Of(lines ...int) LineSet {
	bm := roaring.New()
	for _, line := range lines {
		if line >= 1 && line <= MaxLine {
			bm.Add(uint32(line))
		}
	}
	return LineSet{bm: bm}
}

// Contains reports whether line is in the set.
func (s LineSet) Contains(line int) bool {
	if s.bm == nil || line < 1 || line > MaxLine {
		return false
	}
	return s.bm.Contains(uint32(line))
}

// Len returns the number of lines in the set.
func (s LineSet) Len() int {
	if s.bm == nil {
		return 0
	}
	return int(s.bm.GetCardinality())
}

// IsEmpty reports whether the set has no lines.
func (s LineSet) IsEmpty() bool {
	return s.bm == nil || s.bm.IsEmpty()
}

// First returns the lowest line in the set.
func (s LineSet) First() (int, bool) {
	if s.IsEmpty() {
		return 0, false
	}
	return int(s.bm.Minimum()), true
}

// Lines returns the lines in ascending order.
func (s LineSet) Lines() []int {
	if s.IsEmpty() {
		return []int{}
	}
	raw := s.bm.ToArray()
	out := make([]int, len(raw))
	for i, v := range raw {
		out[i] = int(v)
	}
	return out
}

// Equal reports whether both sets hold the same lines.
func (s LineSet) Equal(other LineSet) bool {
	if s.IsEmpty() || other.IsEmpty() {
		return s.IsEmpty() == other.IsEmpty()
	}
	return s.bm.Equals(other.bm)
}

// String renders the set in canonical compact form, e.g. "3,5-8,12".
func (s LineSet) String() string {
	if s.IsEmpty() {
		return ""
	}

	var b strings.Builder
	write := func(start, end uint32) {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(start), 10))
		if end > start {
			b.WriteByte('-')
			b.WriteString(strconv.FormatUint(uint64(end), 10))
		}
	}

	it := s.bm.Iterator()
	start := it.Next()
	prev := start
	for it.HasNext() {
		v := it.Next()
		if v == prev+1 {
			prev = v
			continue
		}
		write(start, prev)
		start, prev = v, v
	}
	write(start, prev)

	return b.String()
}

// MarshalJSON encodes the set as an ascending array of line numbers.
func (s LineSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Lines())
}

// UnmarshalJSON decodes an array of line numbers.
func (s *LineSet) UnmarshalJSON(data []byte) error {
	var raw []int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Of(raw...)
	return nil
}
