package tests_test

import (
	"fmt"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
)

// expectContains returns a comparator verifying the output contains a substring.
func expectContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectNotContains returns a comparator verifying the output does not contain a substring.
func expectNotContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("unexpected substring %q found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectLines returns a comparator verifying the output has exactly n non-empty lines.
func expectLines(n int) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		count := 0

		for line := range strings.SplitSeq(stdout, "\n") {
			if strings.TrimSpace(line) != "" {
				count++
			}
		}

		if count != n {
			testing.Log(fmt.Sprintf("expected %d lines, got %d:\n%s", n, count, stdout))
			testing.Fail()
		}
	}
}
