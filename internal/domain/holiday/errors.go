package holiday

import "errors"

var (
	ErrRequestNotFound         = errors.New("holiday request not found")
	ErrRequestAlreadyProcessed = errors.New("holiday request already processed")
)
