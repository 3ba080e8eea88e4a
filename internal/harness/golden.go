package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario and compares a textual snapshot of the
// run against a golden file in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, sc *Scenario) error {
	t.Helper()

	res, err := Run(sc)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, snapshot(sc, res))

	return nil
}

// snapshot renders a run deterministically: scenario header, rewritten
// form, result or error, then the decisions in dispatch order.
func snapshot(sc *Scenario, res *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", sc.Name)
	fmt.Fprintf(&b, "target: %s\n", sc.Target)
	fmt.Fprintf(&b, "source: %s\n", strings.TrimSpace(sc.Source))
	if res.Rewritten != "" {
		fmt.Fprintf(&b, "rewritten: %s\n", res.Rewritten)
	}
	if res.Err != nil {
		fmt.Fprintf(&b, "error: %v\n", res.Err)
	} else {
		fmt.Fprintf(&b, "result: %s\n", res.Value)
	}
	if len(res.Decisions) > 0 {
		b.WriteString("decisions:\n")
		for _, d := range res.Decisions {
			fmt.Fprintf(&b, "  %s %s: %s => %s\n", d.Rule, d.Op, d.Before, d.After)
		}
	}
	return []byte(b.String())
}
