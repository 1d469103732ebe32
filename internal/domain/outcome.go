package domain

// Outcome is the terminal transition of a single job attempt.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeSkipped   Outcome = "skipped" // Local file already matches the remote size
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

func (o Outcome) String() string {
	return string(o)
}

// Advances reports whether the outcome moves the overall progress forward.
// Only a cancelled download is left out: a failure advances the counter
// even when the error also stopped the worker, so done reaches total once
// every job has been attempted.
func (o Outcome) Advances() bool {
	return o != OutcomeCancelled
}
