package ledger

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/politikcred/internal/model"
)

const maxQuote = 240

// Describe writes the factual justification for a verification: what was
// promised, what was recorded, and how the two were compared. It quotes the
// record and never characterizes the official.
func Describe(promise *model.Promise, action *model.Action, v *model.Verification) string {
	var b strings.Builder

	b.WriteString("Promise")
	if !promise.StatedAt.IsZero() {
		fmt.Fprintf(&b, " stated on %s", promise.StatedAt.Format("2006-01-02"))
	}
	if promise.Source.Type != "" {
		fmt.Fprintf(&b, " (%s)", promise.Source.Type)
	}
	fmt.Fprintf(&b, ": %q. ", quote(promise.Text))

	b.WriteString("Recorded action")
	if !action.OccurredAt.IsZero() {
		fmt.Fprintf(&b, " on %s", action.OccurredAt.Format("2006-01-02"))
	}
	if action.ExternalRef != "" {
		fmt.Fprintf(&b, " (ref %s)", action.ExternalRef)
	}
	fmt.Fprintf(&b, ": position %q on %q. ", action.Position, quote(action.Description))

	fmt.Fprintf(&b, "Assessed as %s by %s matching with confidence %.2f.", v.MatchType, v.Method, v.Confidence)
	return b.String()
}

func quote(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= maxQuote {
		return s
	}
	r := []rune(s)
	return string(r[:maxQuote]) + "..."
}
