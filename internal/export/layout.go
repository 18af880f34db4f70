// Package export renders question sheets. Every format consumes the same
// Layout so numbering, ordering and wording match across formats.
package export

import (
	"fmt"
	"io"
	"strings"

	"quizbank/pkg/domain"
)

// optionSeparator sits between the lettered options on one line.
const optionSeparator = "    "

var optionLabels = [3]string{"A", "B", "C"}

// Item is one numbered question of a sheet.
type Item struct {
	Number   int
	Question string
	Options  [3]string
}

// HasOptions reports whether any option is non-empty.
func (it Item) HasOptions() bool {
	return it.Options[0] != "" || it.Options[1] != "" || it.Options[2] != ""
}

// Heading is the numbered question line, e.g. "3. What is 2+2?".
func (it Item) Heading() string {
	return fmt.Sprintf("%d. %s", it.Number, it.Question)
}

// OptionsLine lays the options side by side with letter labels. It is
// empty when the item has no options.
func (it Item) OptionsLine() string {
	if !it.HasOptions() {
		return ""
	}
	parts := make([]string, len(optionLabels))
	for i, label := range optionLabels {
		parts[i] = fmt.Sprintf("%s) %s", label, it.Options[i])
	}
	return strings.Join(parts, optionSeparator)
}

// Layout numbers records from 1 in the order given. Numbers are
// independent of record identities.
func Layout(records []domain.Record) []Item {
	items := make([]Item, len(records))
	for i, r := range records {
		items[i] = Item{Number: i + 1, Question: r.Question, Options: r.Options()}
	}
	return items
}

// Lines flattens items into printable lines. An empty string marks the
// spacer that follows every item.
func Lines(items []Item) []string {
	out := make([]string, 0, len(items)*3)
	for _, it := range items {
		out = append(out, it.Heading())
		if line := it.OptionsLine(); line != "" {
			out = append(out, line)
		}
		out = append(out, "")
	}
	return out
}

// WriteText prints the sheet as plain text. The CLI uses it for previews.
func WriteText(w io.Writer, items []Item) error {
	for _, line := range Lines(items) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
