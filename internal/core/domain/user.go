package domain

// User is an account owner. The system runs single-tenant for now; a seeded
// default owner backs requests that omit one.
type User struct {
	UserID       string `json:"userID"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	AuditFields
}
