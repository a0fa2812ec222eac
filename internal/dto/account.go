package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketfolio/pocketfolio/internal/core/domain"
)

// CreateAccountRequest is the payload for creating an account.
type CreateAccountRequest struct {
	Name              string             `json:"name" binding:"required"`
	AccountType       domain.AccountType `json:"accountType" binding:"required,oneof=CASH BANK CREDIT_CARD INVESTMENT"`
	CurrencyCode      string             `json:"currencyCode" binding:"required,iso4217code"`
	InitialBalance    decimal.Decimal    `json:"initialBalance"`
	IncludeInNetWorth bool               `json:"includeInNetWorth"`
	Notes             string             `json:"notes"`

	// Credit-card billing fields.
	ClosingDay       *int    `json:"closingDay,omitempty" binding:"omitempty,min=1,max=31"`
	DueDay           *int    `json:"dueDay,omitempty" binding:"omitempty,min=1,max=31"`
	DueMonthOffset   *int    `json:"dueMonthOffset,omitempty"`
	DueHolidayPolicy string  `json:"dueHolidayPolicy,omitempty"`
	AutopayEnabled   bool    `json:"autopayEnabled"`
	AutopayAccountID *string `json:"autopayAccountID,omitempty"`
}

// UpdateAccountRequest is the payload for updating an account. Balance fields
// are never updated directly; the ledger owns them.
type UpdateAccountRequest struct {
	Name              *string `json:"name,omitempty"`
	IncludeInNetWorth *bool   `json:"includeInNetWorth,omitempty"`
	Archived          *bool   `json:"archived,omitempty"`
	Notes             *string `json:"notes,omitempty"`

	ClosingDay       *int    `json:"closingDay,omitempty" binding:"omitempty,min=1,max=31"`
	DueDay           *int    `json:"dueDay,omitempty" binding:"omitempty,min=1,max=31"`
	DueMonthOffset   *int    `json:"dueMonthOffset,omitempty"`
	DueHolidayPolicy *string `json:"dueHolidayPolicy,omitempty"`
	AutopayEnabled   *bool   `json:"autopayEnabled,omitempty"`
	AutopayAccountID *string `json:"autopayAccountID,omitempty"`
}

// AccountResponse is the API representation of an account.
type AccountResponse struct {
	AccountID         string             `json:"accountID"`
	OwnerID           string             `json:"ownerID"`
	Name              string             `json:"name"`
	AccountType       domain.AccountType `json:"accountType"`
	CurrencyCode      string             `json:"currencyCode"`
	InitialBalance    decimal.Decimal    `json:"initialBalance"`
	CurrentBalance    decimal.Decimal    `json:"currentBalance"`
	IncludeInNetWorth bool               `json:"includeInNetWorth"`
	Archived          bool               `json:"archived"`
	Notes             string             `json:"notes,omitempty"`
	ClosingDay        *int               `json:"closingDay,omitempty"`
	DueDay            *int               `json:"dueDay,omitempty"`
	DueMonthOffset    int                `json:"dueMonthOffset"`
	DueHolidayPolicy  domain.HolidayPolicy `json:"dueHolidayPolicy"`
	AutopayEnabled    bool               `json:"autopayEnabled"`
	AutopayAccountID  *string            `json:"autopayAccountID,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
}

// ListAccountsResponse wraps a page of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
}

// ToAccountResponse maps a domain account to its API representation.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:         a.AccountID,
		OwnerID:           a.OwnerID,
		Name:              a.Name,
		AccountType:       a.AccountType,
		CurrencyCode:      a.CurrencyCode,
		InitialBalance:    a.InitialBalance,
		CurrentBalance:    a.CurrentBalance,
		IncludeInNetWorth: a.IncludeInNetWorth,
		Archived:          a.Archived,
		Notes:             a.Notes,
		ClosingDay:        a.ClosingDay,
		DueDay:            a.DueDay,
		DueMonthOffset:    a.DueMonthOffset,
		DueHolidayPolicy:  a.DueHolidayPolicy,
		AutopayEnabled:    a.AutopayEnabled,
		AutopayAccountID:  a.AutopayAccountID,
		CreatedAt:         a.CreatedAt,
	}
}

// ToAccountResponses maps a slice of domain accounts.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = ToAccountResponse(&accounts[i])
	}
	return out
}
