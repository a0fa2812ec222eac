package domain

// Category labels income/expense transactions. The ledger only ever looks a
// category up by id; hierarchy queries live outside the core.
type Category struct {
	CategoryID       string  `json:"categoryID"`
	OwnerID          string  `json:"ownerID"`
	Name             string  `json:"name"`
	Kind             TransactionKind `json:"kind"` // INCOME or EXPENSE
	ParentCategoryID *string `json:"parentCategoryID,omitempty"`
	AuditFields
}
