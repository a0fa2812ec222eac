package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation conflicts with the current state of a resource.
var ErrConflict = errors.New("resource state conflict")

// ErrForbidden indicates that the caller is not allowed to perform the operation.
var ErrForbidden = errors.New("operation forbidden")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrBusinessRule is the sentinel wrapped by every BusinessError so callers can
// match the whole category with errors.Is.
var ErrBusinessRule = errors.New("business rule violation")

// ErrorCode is a stable machine-readable code for a business rule violation.
// Codes are part of the API contract and must not be renamed.
type ErrorCode string

const (
	CodeSameAccount              ErrorCode = "SAME_ACCOUNT"
	CodeAccountArchived          ErrorCode = "ACCOUNT_ARCHIVED"
	CodeTransferPairInvalid      ErrorCode = "TRANSFER_PAIR_INVALID"
	CodeTransferDirectionInvalid ErrorCode = "TRANSFER_DIRECTION_INVALID"
	CodeCrossCurrencyUnsupported ErrorCode = "CROSS_CURRENCY_UNSUPPORTED"
	CodeAutopayAccountInvalid    ErrorCode = "AUTOPAY_ACCOUNT_INVALID"
	CodeAutopayNotSupported      ErrorCode = "AUTOPAY_NOT_SUPPORTED"
	CodeAutopayConflict          ErrorCode = "AUTOPAY_CONFLICT"
	CodeAutopayCircular          ErrorCode = "AUTOPAY_CIRCULAR"
	CodeAutopayTxnProtected      ErrorCode = "AUTOPAY_TXN_PROTECTED"
	CodeDueMonthOffsetInvalid    ErrorCode = "DUE_MONTH_OFFSET_INVALID"
	CodeDueHolidayPolicyInvalid  ErrorCode = "DUE_HOLIDAY_POLICY_INVALID"
	CodeClosingDayInvalid        ErrorCode = "CLOSING_DAY_INVALID"
	CodeNotCreditCard            ErrorCode = "NOT_CREDIT_CARD"
)

// BusinessError is a policy violation distinct from malformed input. It carries a
// stable code so API clients can render specific guidance.
type BusinessError struct {
	Code    ErrorCode
	Message string
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is makes errors.Is(err, ErrBusinessRule) match any BusinessError.
func (e *BusinessError) Is(target error) bool {
	return target == ErrBusinessRule
}

// NewBusinessError creates a BusinessError with a stable code.
func NewBusinessError(code ErrorCode, message string) *BusinessError {
	return &BusinessError{Code: code, Message: message}
}

// AsBusinessError extracts a BusinessError from an error chain, if present.
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
