package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrCampaignNotFound     = errors.New("campaign not found")
	ErrDonorNotFound        = errors.New("donor not found")
	ErrNotCampaignOwner     = errors.New("campaign not owned by requester")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrDuplicateTransaction = errors.New("transaction already processed")
	ErrPayoutFailed         = errors.New("payout gateway failure")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrVersionConflict      = errors.New("optimistic lock conflict")
	ErrUserExists           = errors.New("user already exists")
	ErrUserBlocked          = errors.New("user is blocked")
	ErrCommentNotFound      = errors.New("comment not found")
	ErrMessageNotFound      = errors.New("message not found")
)
