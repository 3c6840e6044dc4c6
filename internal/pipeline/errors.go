package pipeline

import (
	"errors"
	"fmt"

	"github.com/WeBuildYourAi/compliance-agent/internal/state"
)

// StageError represents a failure of a stage's own logic, as opposed to an item-level failure
type StageError struct {
	Stage   string
	Attempt int
	Message string
	Cause   error
	// Fatal errors abandon the run without retrying the stage.
	Fatal bool
}

func (e *StageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s failed: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// fatalError is implemented by errors that must not be retried (planning.InputError).
type fatalError interface {
	Fatal() bool
}

// IsFatal reports whether err, or any error it wraps, is marked fatal.
func IsFatal(err error) bool {
	var se *StageError
	if errors.As(err, &se) && se.Fatal {
		return true
	}
	var fe fatalError
	return errors.As(err, &fe) && fe.Fatal()
}

// newStageError wraps err as a StageError for stage, keeping an existing StageError intact.
func newStageError(stage string, attempt int, err error) *StageError {
	var se *StageError
	if errors.As(err, &se) {
		if se.Stage == "" {
			se.Stage = stage
		}
		if se.Attempt == 0 {
			se.Attempt = attempt
		}
		se.Fatal = se.Fatal || IsFatal(se.Cause)
		return se
	}
	msg := err.Error()
	return &StageError{Stage: stage, Attempt: attempt, Message: msg, Cause: err, Fatal: IsFatal(err)}
}

// HandleError records a stage failure on st: it initializes the state, stores
// "<stage> failed: <message>" as the last error, increments the run-level retry
// counter by exactly one and appends an error entry carrying the new count.
// It returns the new retry count.
func HandleError(st *state.RunState, stage string, err error, maxRetries int) int {
	st.Init()
	st.Touch(stage)

	msg := "unknown error"
	if err != nil {
		msg = err.Error()
		var se *StageError
		if errors.As(err, &se) {
			msg = se.Message
			if se.Cause != nil && se.Message != se.Cause.Error() {
				msg = fmt.Sprintf("%s: %v", se.Message, se.Cause)
			}
		}
	}

	st.LastError = fmt.Sprintf("%s failed: %s", stage, msg)
	st.RetryCount++
	st.AddMessage(stage, state.LevelError, fmt.Sprintf("Processing error in %s. Retry attempt %d/%d.", stage, st.RetryCount, maxRetries))
	return st.RetryCount
}
