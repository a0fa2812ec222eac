package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketfolio/pocketfolio/internal/core/domain"
)

// CloseStatementRequest triggers a statement close for one account.
type CloseStatementRequest struct {
	ClosingDate CivilDate `json:"closingDate" binding:"required"`
}

// BillingRunRequest triggers a batch billing job. Date defaults to today in
// the billing time zone when omitted.
type BillingRunRequest struct {
	Date *CivilDate `json:"date,omitempty"`
}

// StatementResponse is the API representation of a statement.
type StatementResponse struct {
	StatementID          string                 `json:"statementID"`
	AccountID            string                 `json:"accountID"`
	PeriodStart          CivilDate              `json:"periodStart"`
	PeriodEnd            CivilDate              `json:"periodEnd"`
	ClosingDate          CivilDate              `json:"closingDate"`
	DueDate              CivilDate              `json:"dueDate"`
	Balance              decimal.Decimal        `json:"balance"`
	Status               domain.StatementStatus `json:"status"`
	PlannedTransactionID *string                `json:"plannedTransactionID,omitempty"`
	PaidTransactionID    *string                `json:"paidTransactionID,omitempty"`
	CreatedAt            time.Time              `json:"createdAt"`
}

// ListStatementsResponse wraps a page of statements.
type ListStatementsResponse struct {
	Statements []StatementResponse `json:"statements"`
}

// ToStatementResponse maps a domain statement to its API representation.
func ToStatementResponse(s *domain.Statement) StatementResponse {
	return StatementResponse{
		StatementID:          s.StatementID,
		AccountID:            s.AccountID,
		PeriodStart:          CivilDate(s.PeriodStart),
		PeriodEnd:            CivilDate(s.PeriodEnd),
		ClosingDate:          CivilDate(s.ClosingDate),
		DueDate:              CivilDate(s.DueDate),
		Balance:              s.Balance,
		Status:               s.Status,
		PlannedTransactionID: s.PlannedTransactionID,
		PaidTransactionID:    s.PaidTransactionID,
		CreatedAt:            s.CreatedAt,
	}
}

// ToStatementResponses maps a slice of domain statements.
func ToStatementResponses(stmts []domain.Statement) []StatementResponse {
	out := make([]StatementResponse, len(stmts))
	for i := range stmts {
		out[i] = ToStatementResponse(&stmts[i])
	}
	return out
}
