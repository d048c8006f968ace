package ledger

import (
	"errors"
	"fmt"

	"moneylite/internal/apiclient"
)

// ErrBusy is returned when a form is submitted while its previous
// submission is still in flight.
var ErrBusy = errors.New("a submission from this form is already in progress")

// ValidationError is a local input check that failed before any request
// was sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// FetchError wraps the first failure that aborted LoadAll.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// userMessage renders err as the one line shown in the error slot.
func userMessage(err error) string {
	var (
		ve *ValidationError
		fe *FetchError
		he *apiclient.HTTPError
		ne *apiclient.NetworkError
	)
	prefix := ""
	if errors.As(err, &fe) {
		prefix = "Could not load " + fe.Resource + ": "
	}
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrBusy):
		return "Still working on the previous submission."
	case errors.As(err, &he):
		if he.Body != "" {
			return fmt.Sprintf("%sserver returned %d: %s", prefix, he.StatusCode, he.Body)
		}
		return fmt.Sprintf("%sserver returned %d", prefix, he.StatusCode)
	case errors.As(err, &ne):
		return prefix + "cannot reach the server"
	case prefix != "":
		return prefix + fe.Err.Error()
	default:
		return err.Error()
	}
}
