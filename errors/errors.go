package errors

import "fmt"

var (
	ErrInvalidContent  = fmt.Errorf("Invalid message content")
	ErrInvalidBody     = fmt.Errorf("invalid request body")
	ErrInvalidMethod   = fmt.Errorf("Invalid method")
	ErrConditionFailed = fmt.Errorf("the conditional request failed")
	ErrMessageNotFound = fmt.Errorf("message not found")
	ErrUnknownStrategy = fmt.Errorf("unknown reaction strategy")
	ErrUnknownBackend  = fmt.Errorf("unknown store backend")
)
