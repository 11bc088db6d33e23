package driver

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Diff renders a unified diff between the original and formatted text.
// It is empty when they are equal.
func Diff(path, before, after string) string {
	if before == after {
		return ""
	}
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: path + ".orig",
		ToFile:   path,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return out
}
