package tests_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/cambium/tests/testutils"
)

const brokenGenre = `{"lufs": {"target": -8, "min": -6, "max": -10, "tolerance": 1}}`

func TestTargetsCLI(t *testing.T) {
	userTargets := t.TempDir()
	if err := os.WriteFile(filepath.Join(userTargets, "broken.json"), []byte(brokenGenre), 0o600); err != nil {
		t.Fatal(err)
	}

	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "list shows the embedded genres",
			Command:     test.Command("targets", "list"),
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains("default"),
						expectContains("funk_mandela"),
						expectContains("trance"),
						expectLines(7),
					),
				}
			},
		},
		{
			Description: "show resolves a genre in the requested mode",
			Command:     test.Command("targets", "show", "--mode", "car", "EDM"),
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectContains("edm"),
						expectContains("car"),
						expectContains("lufs"),
					),
				}
			},
		},
		{
			Description: "show without a genre fails",
			Command:     test.Command("targets", "show"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "show of an unknown genre fails",
			Command:     test.Command("targets", "show", "polka"),
			Expected:    test.Expects(expect.ExitCodeGenericFail, nil, nil),
		},
		{
			Description: "validate accepts every embedded genre",
			Command:     test.Command("targets", "validate"),
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output: expect.All(
						expectNotContains("FAIL"),
						expectLines(7),
					),
				}
			},
		},
		{
			Description: "validate reports a broken user document",
			Command:     test.Command("targets", "validate", "--targets", userTargets, "broken", "edm"),
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeGenericFail,
					Output: expect.All(
						expectContains("FAIL broken"),
						expectContains("OK edm"),
					),
				}
			},
		},
	}

	testCase.Run(t)
}
