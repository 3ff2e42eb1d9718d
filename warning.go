package snaptable

import (
	"fmt"
	"strings"

	"github.com/tsawler/snaptable/model"
	"github.com/tsawler/snaptable/sources"
)

// Warning is a non-fatal problem met during extraction, such as a text
// item whose geometry could not be placed. Extraction carries on without
// the offending item.
type Warning struct {
	Message string

	// Text of the skipped item, if any
	Text string

	// Selection is the index of the selection passed to Tables, or 0
	Selection int
}

func (w Warning) String() string {
	if w.Text == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %q", w.Message, w.Text)
}

// FormatWarnings renders warnings one per line
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}

func issueWarnings(issues []sources.Issue) []Warning {
	warnings := make([]Warning, 0, len(issues))
	for _, is := range issues {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("skipped text item: %v", is.Err),
			Text:    is.Text,
		})
	}
	return warnings
}

func skippedWarnings(frags []model.Fragment) []Warning {
	warnings := make([]Warning, 0, len(frags))
	for _, f := range frags {
		warnings = append(warnings, Warning{
			Message: fmt.Sprintf("skipped fragment: %v", f.Validate()),
			Text:    f.Text,
		})
	}
	return warnings
}
