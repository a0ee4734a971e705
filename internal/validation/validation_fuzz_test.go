package validation

import (
	"strings"
	"testing"
)

// FuzzValidateContentPath checks that accepted paths never escape the root
func FuzzValidateContentPath(f *testing.F) {
	f.Add("code-examples/a.js")
	f.Add("/a/b/c.go")
	f.Add("../../../etc/passwd")
	f.Add("a/..")
	f.Add("..")
	f.Add("a\\..\\b")
	f.Add("a\x00b")
	f.Add("....//....//etc")
	f.Add("%2e%2e/secret")
	f.Add(".codetour.yml")

	f.Fuzz(func(t *testing.T, input string) {
		clean, err := ValidateContentPath(input)
		if err != nil {
			return
		}

		if clean == "" || strings.HasPrefix(clean, "/") {
			t.Errorf("accepted path %q cleaned to %q", input, clean)
		}
		for _, segment := range strings.Split(clean, "/") {
			if segment == ".." {
				t.Errorf("accepted path %q escapes the root: %q", input, clean)
			}
			if strings.HasPrefix(segment, ".") {
				t.Errorf("accepted path %q reaches a hidden file: %q", input, clean)
			}
		}
		if strings.ContainsAny(clean, "\x00\\") {
			t.Errorf("accepted path %q contains forbidden characters: %q", input, clean)
		}
	})
}
