package domain

import (
	"time"

	"github.com/google/uuid"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationDenied   VerificationStatus = "denied"
)

func (v VerificationStatus) IsValid() bool {
	switch v {
	case VerificationPending, VerificationApproved, VerificationDenied:
		return true
	default:
		return false
	}
}

type Campaign struct {
	ID             uuid.UUID
	CreatorID      uuid.UUID
	Title          string
	Category       string
	Description    string
	Story          string
	Goal           int64
	Verification   VerificationStatus
	DenyReason     *string
	ImageURLs      []string
	VideoURLs      []string
	RaisedFunds    int64
	Backers        int
	FundsWithdrawn int64
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FundState is the read-only projection of a campaign's running totals.
type FundState struct {
	CampaignID     uuid.UUID
	RaisedFunds    int64
	Backers        int
	FundsWithdrawn int64
}

type Comment struct {
	ID         uuid.UUID
	CampaignID uuid.UUID
	AuthorID   uuid.UUID
	AuthorName string
	Content    string
	Reply      *string
	CreatedAt  time.Time
}

type Message struct {
	ID         uuid.UUID
	CampaignID uuid.UUID
	SenderID   uuid.UUID
	SenderName string
	ReceiverID uuid.UUID
	Content    string
	CreatedAt  time.Time
}
