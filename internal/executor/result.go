package executor

import "fmt"

// Outcome discriminates the Result variants.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeDismissed
	OutcomeCancelled
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeDismissed:
		return "dismissed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of executing or validating an action. The set of
// implementations is closed.
type Result interface {
	Outcome() Outcome
	isResult()
}

// Success means the capability was sent, or for Validate, that it could be.
type Success struct{}

// NotificationDismissed means the notification is no longer live.
type NotificationDismissed struct {
	Key string
}

// IntentCancelled means the capability was invalidated by its issuer.
type IntentCancelled struct {
	Key   string
	Cause error
}

// Error is any other failure.
type Error struct {
	Message string
	Cause   error
}

func (Success) Outcome() Outcome               { return OutcomeSuccess }
func (NotificationDismissed) Outcome() Outcome { return OutcomeDismissed }
func (IntentCancelled) Outcome() Outcome       { return OutcomeCancelled }
func (Error) Outcome() Outcome                 { return OutcomeError }

func (Success) isResult()               {}
func (NotificationDismissed) isResult() {}
func (IntentCancelled) isResult()       {}
func (Error) isResult()                 {}

func (e Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e Error) Unwrap() error { return e.Cause }
