package models

import "fmt"

// Error codes used in operation results and internal error handling.
const (
	ErrCodeSelectorNotFound = "SELECTOR_NOT_FOUND"
	ErrCodeInteraction      = "INTERACTION_FAILED"
	ErrCodeNavigation       = "NAVIGATION_FAILED"
	ErrCodeBrowserCrash     = "BROWSER_CRASH"
	ErrCodeCaptchaProvider  = "CAPTCHA_PROVIDER"
	ErrCodeCaptchaUnsolved  = "CAPTCHA_UNSOLVED"
	ErrCodeUnverified       = "BOOKING_UNVERIFIED"
	ErrCodeStorage          = "STORAGE"
	ErrCodeInvalidInput     = "INVALID_INPUT"
)

// OpError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type OpError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError creates a new OpError.
func NewOpError(code, message string, err error) *OpError {
	return &OpError{Code: code, Message: message, Err: err}
}
