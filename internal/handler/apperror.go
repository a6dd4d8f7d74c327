package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

var (
	ErrValidationFailed = &AppError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: "request validation failed",
	}
	ErrInvalidRequestBody = &AppError{
		Status:  http.StatusBadRequest,
		Code:    "INVALID_REQUEST_BODY",
		Message: "request body is malformed",
	}
	ErrInvalidRequest = &AppError{
		Status:  http.StatusBadRequest,
		Code:    "INVALID_REQUEST",
		Message: "request is invalid",
	}
	ErrInvalidAmount = &AppError{
		Status:  http.StatusBadRequest,
		Code:    "INVALID_AMOUNT",
		Message: "amount must be a positive value",
	}
	ErrUnauthorized = &AppError{
		Status:  http.StatusUnauthorized,
		Code:    "UNAUTHORIZED",
		Message: "authentication required",
	}
	ErrInvalidCredentials = &AppError{
		Status:  http.StatusUnauthorized,
		Code:    "INVALID_CREDENTIALS",
		Message: "email or password is incorrect",
	}
	ErrInvalidSignature = &AppError{
		Status:  http.StatusUnauthorized,
		Code:    "INVALID_SIGNATURE",
		Message: "webhook signature verification failed",
	}
	ErrForbidden = &AppError{
		Status:  http.StatusForbidden,
		Code:    "FORBIDDEN",
		Message: "you do not have access to this resource",
	}
	ErrNotCampaignOwner = &AppError{
		Status:  http.StatusForbidden,
		Code:    "NOT_CAMPAIGN_OWNER",
		Message: "only the campaign owner may perform this action",
	}
	ErrUserBlocked = &AppError{
		Status:  http.StatusForbidden,
		Code:    "USER_BLOCKED",
		Message: "this account has been blocked",
	}
	ErrResourceNotFound = &AppError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "resource not found",
	}
	ErrCampaignNotFound = &AppError{
		Status:  http.StatusNotFound,
		Code:    "CAMPAIGN_NOT_FOUND",
		Message: "campaign not found",
	}
	ErrDonorNotFound = &AppError{
		Status:  http.StatusNotFound,
		Code:    "DONOR_NOT_FOUND",
		Message: "no account matches the donor email",
	}
	ErrUserExists = &AppError{
		Status:  http.StatusConflict,
		Code:    "USER_EXISTS",
		Message: "an account with this email already exists",
	}
	ErrVersionConflict = &AppError{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: "the resource was modified concurrently, retry the request",
	}
	ErrInsufficientFunds = &AppError{
		Status:  http.StatusUnprocessableEntity,
		Code:    "INSUFFICIENT_FUNDS",
		Message: "available funds are less than the requested amount",
	}
	ErrPayoutFailed = &AppError{
		Status:  http.StatusBadGateway,
		Code:    "PAYOUT_FAILED",
		Message: "the payout provider rejected the withdrawal",
	}
	ErrInternalError = &AppError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: "an unexpected error occurred",
	}
)
