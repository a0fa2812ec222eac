package services

import (
	portsrepo "github.com/pocketfolio/pocketfolio/internal/core/ports/repositories"
	portssvc "github.com/pocketfolio/pocketfolio/internal/core/ports/services"
)

// NewServiceContainer wires the concrete services onto the repository
// provider. The billing service doubles as the statement reconciler the
// ledger calls inside its units of work.
func NewServiceContainer(repos portsrepo.RepositoryProvider, defaultOwnerID string) portssvc.ServiceContainer {
	billingSvc := NewBillingService(repos.AccountRepo, repos.TransactionRepo, repos.StatementRepo, repos.TxManager, defaultOwnerID)

	return portssvc.ServiceContainer{
		Account:  NewAccountService(repos.AccountRepo, defaultOwnerID),
		Ledger:   NewLedgerService(repos.AccountRepo, repos.TransactionRepo, repos.CategoryRepo, repos.TxManager, billingSvc, defaultOwnerID),
		Billing:  billingSvc,
		Category: NewCategoryService(repos.CategoryRepo, defaultOwnerID),
		User:     NewUserService(repos.UserRepo),
	}
}
