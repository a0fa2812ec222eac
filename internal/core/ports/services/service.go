package services

// ServiceContainer bundles the service facades handed to the HTTP layer and
// the scheduler.
type ServiceContainer struct {
	Account  AccountSvcFacade
	Ledger   LedgerSvcFacade
	Billing  BillingSvcFacade
	Category CategorySvcFacade
	User     UserSvcFacade
}
