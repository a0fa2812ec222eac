package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType classifies an account for billing purposes. Only CREDIT_CARD
// accounts participate in the statement lifecycle.
type AccountType string

const (
	Cash       AccountType = "CASH"
	Bank       AccountType = "BANK"
	CreditCard AccountType = "CREDIT_CARD"
	Investment AccountType = "INVESTMENT"
)

// HolidayPolicy controls how a computed due date is shifted off a weekend.
type HolidayPolicy string

const (
	HolidayNone     HolidayPolicy = "NONE"
	HolidayAdvance  HolidayPolicy = "ADVANCE"  // Sat/Sun -> preceding Friday
	HolidayPostpone HolidayPolicy = "POSTPONE" // Sat/Sun -> following Monday
)

// Account represents a financial account within the core domain.
// CurrentBalance is mutated exclusively through ledger operations.
type Account struct {
	AccountID         string          `json:"accountID"`
	OwnerID           string          `json:"ownerID"`      // FK -> users.user_id
	Name              string          `json:"name"`         // User-defined name
	AccountType       AccountType     `json:"accountType"`  // CASH, BANK, CREDIT_CARD, ...
	CurrencyCode      string          `json:"currencyCode"` // ISO-4217, 3 letters
	InitialBalance    decimal.Decimal `json:"initialBalance"`
	CurrentBalance    decimal.Decimal `json:"currentBalance"`
	IncludeInNetWorth bool            `json:"includeInNetWorth"`
	Archived          bool            `json:"archived"` // Blocks new transactions
	Notes             string          `json:"notes"`

	// Credit-card billing fields. Nil/zero for other account types.
	ClosingDay       *int          `json:"closingDay,omitempty"` // 1-31, 31 = month-end
	DueDay           *int          `json:"dueDay,omitempty"`
	DueMonthOffset   int           `json:"dueMonthOffset"`   // 0, 1 or 2 months after closing
	DueHolidayPolicy HolidayPolicy `json:"dueHolidayPolicy"` // NONE, ADVANCE, POSTPONE
	AutopayEnabled   bool          `json:"autopayEnabled"`
	AutopayAccountID *string       `json:"autopayAccountID,omitempty"` // Must agree with AutopayEnabled

	AuditFields
}

// IsCreditCard reports whether the account participates in the billing cycle.
func (a *Account) IsCreditCard() bool {
	return a.AccountType == CreditCard
}
