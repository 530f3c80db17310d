package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrNameTaken        = fmt.Errorf("participant name already in use")
	ErrUnknownUser      = fmt.Errorf("acting user is not a registered participant")
	ErrNotFound         = fmt.Errorf("record not found")
	ErrForbidden        = fmt.Errorf("user is not the owner of the message")
	ErrMissingIdentity  = fmt.Errorf("no acting user supplied")
	ErrStoreUnavailable = fmt.Errorf("store unavailable")
)
