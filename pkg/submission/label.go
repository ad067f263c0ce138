package submission

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	labelIdle       = "Create Dataset"
	labelSubmitting = "Creating Dataset…"
	labelComplete   = "Dataset Created"
)

var labelPrinter = message.NewPrinter(language.English)

// Label derives the submit-button label from a snapshot: "Create Dataset"
// while idle, "Creating Dataset…" in flight, and "Inserted 1,532 Rows" (or a
// generic success label when the count is absent) once complete.
func Label(snap Snapshot) string {
	switch snap.Phase {
	case PhaseSubmitting:
		return labelSubmitting
	case PhaseComplete:
		if snap.InsertedCount == nil {
			return labelComplete
		}
		return labelPrinter.Sprintf("Inserted %d Rows", *snap.InsertedCount)
	default:
		return labelIdle
	}
}

// SubmitEnabled reports whether the submit control performs a network
// submission in the given state. In submitting it is disabled outright; in
// complete the control re-arms the form instead of submitting.
func SubmitEnabled(snap Snapshot) bool {
	return snap.Phase == PhaseIdle
}
