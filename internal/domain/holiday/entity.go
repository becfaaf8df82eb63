package holiday

import (
	"time"
)

// RequestStatus is the moderation state of a holiday request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// HolidayRequest is a user's request for time off, reviewed by an admin.
type HolidayRequest struct {
	ID           string
	UserID       string
	UserName     string
	SecretCode   string
	StartDate    time.Time
	EndDate      time.Time
	Reason       string
	Status       RequestStatus
	RejectReason *string
	SubmittedAt  time.Time
}
