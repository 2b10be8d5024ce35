package anticaptcha

import (
	"fmt"
	"strconv"

	goerrors "github.com/go-errors/errors"
)

// Sentinels for the vendor error codes callers usually branch on.
// Match them with errors.Is against any error returned by the Client.
var (
	ErrKeyDoesNotExist   = goerrors.New("account key does not exist")
	ErrZeroBalance       = goerrors.New("account has zero or negative balance")
	ErrNoSlotAvailable   = goerrors.New("no idle workers available")
	ErrCaptchaUnsolvable = goerrors.New("captcha could not be solved")
	ErrTaskNotFound      = goerrors.New("task not found or expired")
	ErrIPNotAllowed      = goerrors.New("request from this IP is not allowed")

	// ErrTimeout is matched by every *TimeoutError.
	ErrTimeout = goerrors.New("timeout error")
)

// codeSentinels maps errorCode values from the API to sentinel errors.
var codeSentinels = map[string]error{
	"ERROR_KEY_DOES_NOT_EXIST": ErrKeyDoesNotExist,
	"ERROR_ZERO_BALANCE":       ErrZeroBalance,
	"ERROR_NO_SLOT_AVAILABLE":  ErrNoSlotAvailable,
	"ERROR_CAPTCHA_UNSOLVABLE": ErrCaptchaUnsolvable,
	"ERROR_NO_SUCH_CAPCHA_ID":  ErrTaskNotFound,
	"WRONG_CAPTCHA_ID":         ErrTaskNotFound,
	"ERROR_TASK_ABSENT":        ErrTaskNotFound,
	"ERROR_IP_NOT_ALLOWED":     ErrIPNotAllowed,
	"ERROR_IP_BLOCKED":         ErrIPNotAllowed,
	"ERROR_ACCOUNT_SUSPENDED":  ErrKeyDoesNotExist,
}

// RemoteError is returned when the API answers with a non-zero errorId.
type RemoteError struct {
	ID          int
	Code        string
	Description string
}

func (e *RemoteError) Error() string {
	return "anticaptcha error " + strconv.Itoa(e.ID) + " (" + e.Code + "): " + e.Description
}

// Is reports whether target is the sentinel registered for e.Code.
func (e *RemoteError) Is(target error) bool {
	s, ok := codeSentinels[e.Code]
	return ok && s == target
}

// TimeoutError is returned by the poller when a task stays in processing
// for more than the configured number of retries.
type TimeoutError struct {
	TaskID   int64
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout error: task %d still processing after %d attempts", e.TaskID, e.Attempts)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// TransportError wraps failures where no structured API error is available:
// network errors, unexpected HTTP statuses and undecodable bodies.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	msg := "HTTP request to " + e.Op + " failed"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Err }

// errorFields is embedded by every response body.
type errorFields struct {
	ErrorID          int    `json:"errorId"`
	ErrorCode        string `json:"errorCode"`
	ErrorDescription string `json:"errorDescription"`
}

// apiError returns nil for errorId 0 and a *RemoteError otherwise.
func (f *errorFields) apiError() error {
	if f.ErrorID == 0 {
		return nil
	}
	return &RemoteError{ID: f.ErrorID, Code: f.ErrorCode, Description: f.ErrorDescription}
}
