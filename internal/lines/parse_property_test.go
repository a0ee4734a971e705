//go:build property

package lines

import (
	"fmt"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestParseProperties validates the algebra of the range parser.
func TestParseProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("canonical form round-trips", prop.ForAll(
		func(values []int) bool {
			set := Of(values...)
			parsed, err := Parse(set.String())
			return err == nil && parsed.Equal(set)
		},
		gen.SliceOf(gen.IntRange(1, 500)),
	))

	properties.Property("a range expands to exactly its inclusive span", prop.ForAll(
		func(start, width int) bool {
			end := start + width
			set, err := Parse(fmt.Sprintf("%d-%d", start, end))
			if err != nil || set.Len() != width+1 {
				return false
			}
			first, _ := set.First()
			return first == start && set.Contains(end) && !set.Contains(end+1)
		},
		gen.IntRange(1, 10000),
		gen.IntRange(0, 200),
	))

	properties.Property("reversed ranges are rejected", prop.ForAll(
		func(start, gap int) bool {
			_, err := Parse(fmt.Sprintf("%d-%d", start+gap, start))
			return err != nil
		},
		gen.IntRange(1, 10000),
		gen.IntRange(1, 50),
	))

	properties.Property("token order does not matter", prop.ForAll(
		func(values []int) bool {
			tokens := make([]string, len(values))
			reversed := make([]string, len(values))
			for i, v := range values {
				tokens[i] = fmt.Sprint(v)
				reversed[len(values)-1-i] = fmt.Sprint(v)
			}
			a, errA := Parse(strings.Join(tokens, ","))
			b, errB := Parse(strings.Join(reversed, ","))
			return errA == nil && errB == nil && a.Equal(b)
		},
		gen.SliceOf(gen.IntRange(1, 1000)),
	))

	properties.TestingRun(t)
}
