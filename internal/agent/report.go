package agent

import (
	"fmt"
	"regexp"
	"strings"
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// StripThink removes <think>...</think> blocks and surrounding whitespace.
func StripThink(s string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(s, ""))
}

// Status is "error" when any observation mentions an error or a failure.
func Status(res Result) string {
	for _, s := range res.Steps {
		if isErrorObservation(s.Observation) {
			return "error"
		}
	}
	return "success"
}

func isErrorObservation(obs string) bool {
	lower := strings.ToLower(obs)
	return strings.Contains(lower, "error") || strings.Contains(lower, "failed")
}

// Report renders res in the fixed layout printed by the agent command.
func Report(res Result) string {
	var b strings.Builder

	action := res.Input
	if len(res.Steps) > 0 {
		action = fmt.Sprintf("Called %s with %s", res.Steps[0].Tool, res.Steps[0].Input)
	}

	fmt.Fprintf(&b, "Status: %s\n", Status(res))
	fmt.Fprintf(&b, "Action: %s\n", action)
	fmt.Fprintf(&b, "Data: %s\n", StripThink(res.Output))
	b.WriteString("Detailed output:\n")

	var errs []string
	for i, s := range res.Steps {
		for _, line := range strings.Split(s.Log, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				b.WriteString(line + "\n")
			}
		}
		fmt.Fprintf(&b, "Action %d: %s with input %s\n", i+1, s.Tool, s.Input)
		fmt.Fprintf(&b, "Observation %d: %s\n", i+1, s.Observation)
		if isErrorObservation(s.Observation) {
			errs = append(errs, s.Observation)
		}
	}

	if len(errs) > 0 {
		b.WriteString("Errors:\n")
		for _, e := range errs {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	return b.String()
}
