package domain

import (
	"time"

	"github.com/google/uuid"
)

type ContactReason string

const (
	ContactReasonInquiry   ContactReason = "inquiry"
	ContactReasonFeedback  ContactReason = "feedback"
	ContactReasonComplaint ContactReason = "complaint"
	ContactReasonIssue     ContactReason = "issue"
	ContactReasonOther     ContactReason = "other"
)

func (r ContactReason) IsValid() bool {
	switch r {
	case ContactReasonInquiry, ContactReasonFeedback, ContactReasonComplaint,
		ContactReasonIssue, ContactReasonOther:
		return true
	default:
		return false
	}
}

type Contact struct {
	ID        uuid.UUID
	Reason    ContactReason
	Name      string
	Email     string
	Phone     *string
	Message   string
	CreatedAt time.Time
}

type ReportType string

const (
	ReportTypeCampaign ReportType = "campaign"
	ReportTypeUser     ReportType = "user"
)

func (t ReportType) IsValid() bool {
	return t == ReportTypeCampaign || t == ReportTypeUser
}

type ReportStatus string

const (
	ReportStatusActive   ReportStatus = "active"
	ReportStatusResolved ReportStatus = "resolved"
)

type Report struct {
	ID            uuid.UUID
	Type          ReportType
	Reason        string
	Details       string
	ReporterName  string
	ReporterEmail string
	Status        ReportStatus
	CreatedAt     time.Time
}
