package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/pocketfolio/pocketfolio/internal/core/domain"
	"github.com/pocketfolio/pocketfolio/internal/core/services"
	"github.com/pocketfolio/pocketfolio/internal/utils/billing"
)

type BillingServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockTxnRepo     *MockTransactionRepository
	mockStmtRepo    *MockStatementRepository
	service         *services.BillingService
}

func (suite *BillingServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.mockStmtRepo = new(MockStatementRepository)
	suite.service = services.NewBillingService(
		suite.mockAccountRepo,
		suite.mockTxnRepo,
		suite.mockStmtRepo,
		&fakeTxManager{},
		testOwnerID,
	)
}

// testCard builds a credit card closing on the 15th, due on the 10th of the
// following month.
func testCard(autopaySourceID *string) *domain.Account {
	closingDay := 15
	dueDay := 10
	return &domain.Account{
		AccountID:        uuid.NewString(),
		OwnerID:          testOwnerID,
		AccountType:      domain.CreditCard,
		CurrencyCode:     "USD",
		ClosingDay:       &closingDay,
		DueDay:           &dueDay,
		DueMonthOffset:   1,
		DueHolidayPolicy: domain.HolidayNone,
		AutopayEnabled:   autopaySourceID != nil,
		AutopayAccountID: autopaySourceID,
	}
}

func testStatement(accountID string, status domain.StatementStatus, balance decimal.Decimal) *domain.Statement {
	closing := billing.Date(2025, time.April, 15)
	return &domain.Statement{
		StatementID: uuid.NewString(),
		AccountID:   accountID,
		PeriodStart: billing.Date(2025, time.March, 16),
		PeriodEnd:   closing,
		ClosingDate: closing,
		DueDate:     billing.Date(2025, time.May, 10),
		Balance:     balance,
		Status:      status,
	}
}

func (suite *BillingServiceTestSuite) TestCloseForAccountOnDate_AlreadyClosedIsIdempotent() {
	ctx := context.Background()
	card := testCard(nil)
	st := testStatement(card.AccountID, domain.StatementClosed, decimal.NewFromInt(300))

	suite.mockAccountRepo.On("FindAccountByID", ctx, card.AccountID).Return(card, nil).Once()
	suite.mockStmtRepo.On("FindStatementByAccountAndClosingDateInTx", ctx, mock.Anything, card.AccountID, st.ClosingDate).
		Return(st, nil).Once()

	got, err := suite.service.CloseForAccountOnDate(ctx, card.AccountID, st.ClosingDate)

	suite.Require().NoError(err)
	suite.Equal(domain.StatementClosed, got.Status)
	suite.True(got.Balance.Equal(decimal.NewFromInt(300)))
	suite.mockStmtRepo.AssertNotCalled(suite.T(), "UpdateStatementInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestCloseForAccountOnDate_FreezesSum() {
	ctx := context.Background()
	card := testCard(nil)
	st := testStatement(card.AccountID, domain.StatementOpen, decimal.NewFromInt(100))

	suite.mockAccountRepo.On("FindAccountByID", ctx, card.AccountID).Return(card, nil).Once()
	suite.mockStmtRepo.On("FindStatementByAccountAndClosingDateInTx", ctx, mock.Anything, card.AccountID, st.ClosingDate).
		Return(st, nil).Once()
	suite.mockTxnRepo.On("SumAccountPeriodInTx", ctx, mock.Anything, card.AccountID, mock.Anything, mock.Anything).
		Return(decimal.NewFromInt(275), nil).Once()
	suite.mockStmtRepo.On("UpdateStatementInTx", ctx, mock.Anything,
		mock.MatchedBy(func(updated domain.Statement) bool {
			return updated.Status == domain.StatementClosed &&
				updated.Balance.Equal(decimal.NewFromInt(275)) &&
				updated.DueDate.Equal(billing.Date(2025, time.May, 10))
		})).Return(nil).Once()

	got, err := suite.service.CloseForAccountOnDate(ctx, card.AccountID, st.ClosingDate)

	suite.Require().NoError(err)
	suite.Equal(domain.StatementClosed, got.Status)
	suite.True(got.Balance.Equal(decimal.NewFromInt(275)))
	suite.mockStmtRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestAutopay_FullPaymentMarksPaid() {
	ctx := context.Background()
	sourceID := uuid.NewString()
	card := testCard(&sourceID)
	st := testStatement(card.AccountID, domain.StatementClosed, decimal.NewFromInt(800))
	plannedID := uuid.NewString()
	st.PlannedTransactionID = &plannedID
	today := st.DueDate

	source := domain.Account{
		AccountID:      sourceID,
		AccountType:    domain.Bank,
		CurrencyCode:   "USD",
		CurrentBalance: decimal.NewFromInt(2000),
	}
	planned := &domain.Transaction{
		TransactionID:   plannedID,
		Kind:            domain.Transfer,
		Amount:          decimal.NewFromInt(800),
		Status:          domain.Pending,
		SourceAccountID: &sourceID,
		TargetAccountID: &card.AccountID,
		StatementID:     &st.StatementID,
	}

	suite.mockStmtRepo.On("FindStatementsDueOn", ctx, today, domain.StatementClosed).
		Return([]domain.Statement{*st}, nil).Once()
	suite.mockStmtRepo.On("FindStatementByIDForUpdate", ctx, mock.Anything, st.StatementID).Return(st, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, st.AccountID).Return(card, nil).Once()
	suite.mockTxnRepo.On("CountPostedByStatementInTx", ctx, mock.Anything, st.StatementID).Return(int64(0), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", ctx, mock.Anything, []string{card.AccountID, sourceID}).
		Return(map[string]domain.Account{card.AccountID: *card, sourceID: source}, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalancesInTx", ctx, mock.Anything,
		mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
			return changes[sourceID].Equal(decimal.NewFromInt(-800)) &&
				changes[card.AccountID].Equal(decimal.NewFromInt(800))
		}), mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockTxnRepo.On("FindTransactionByIDForUpdate", ctx, mock.Anything, plannedID).Return(planned, nil).Once()
	suite.mockTxnRepo.On("UpdateTransactionInTx", ctx, mock.Anything,
		mock.MatchedBy(func(txn domain.Transaction) bool {
			return txn.Status == domain.Posted &&
				txn.Amount.Equal(decimal.NewFromInt(800)) &&
				txn.OccurredAt.Equal(today)
		})).Return(nil).Once()
	suite.mockStmtRepo.On("UpdateStatementInTx", ctx, mock.Anything,
		mock.MatchedBy(func(updated domain.Statement) bool {
			return updated.Status == domain.StatementPaid &&
				updated.Balance.IsZero() &&
				updated.PaidTransactionID != nil && *updated.PaidTransactionID == plannedID &&
				updated.PlannedTransactionID == nil
		})).Return(nil).Once()

	err := suite.service.AutopayDueStatements(ctx, today)

	suite.Require().NoError(err)
	suite.mockStmtRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestAutopay_InsufficientFundsPaysWhatItCan() {
	ctx := context.Background()
	sourceID := uuid.NewString()
	card := testCard(&sourceID)
	st := testStatement(card.AccountID, domain.StatementClosed, decimal.NewFromInt(800))
	today := st.DueDate

	source := domain.Account{
		AccountID:      sourceID,
		AccountType:    domain.Bank,
		CurrencyCode:   "USD",
		CurrentBalance: decimal.NewFromInt(300),
	}

	suite.mockStmtRepo.On("FindStatementsDueOn", ctx, today, domain.StatementClosed).
		Return([]domain.Statement{*st}, nil).Once()
	suite.mockStmtRepo.On("FindStatementByIDForUpdate", ctx, mock.Anything, st.StatementID).Return(st, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, st.AccountID).Return(card, nil).Once()
	suite.mockTxnRepo.On("CountPostedByStatementInTx", ctx, mock.Anything, st.StatementID).Return(int64(0), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", ctx, mock.Anything, []string{card.AccountID, sourceID}).
		Return(map[string]domain.Account{card.AccountID: *card, sourceID: source}, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalancesInTx", ctx, mock.Anything,
		mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
			return changes[sourceID].Equal(decimal.NewFromInt(-300))
		}), mock.Anything, mock.Anything).Return(nil).Once()
	// No planned placeholder on this statement: a fresh POSTED entry is written.
	suite.mockTxnRepo.On("SaveTransactionInTx", ctx, mock.Anything,
		mock.MatchedBy(func(txn domain.Transaction) bool {
			return txn.Status == domain.Posted &&
				txn.Kind == domain.Transfer &&
				txn.Amount.Equal(decimal.NewFromInt(300)) &&
				txn.StatementID != nil && *txn.StatementID == st.StatementID
		})).Return(nil).Once()
	suite.mockStmtRepo.On("UpdateStatementInTx", ctx, mock.Anything,
		mock.MatchedBy(func(updated domain.Statement) bool {
			return updated.Status == domain.StatementPartial &&
				updated.Balance.Equal(decimal.NewFromInt(500))
		})).Return(nil).Once()

	err := suite.service.AutopayDueStatements(ctx, today)

	suite.Require().NoError(err)
	suite.mockStmtRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestAutopay_PostedPaymentGuardSkipsRerun() {
	ctx := context.Background()
	sourceID := uuid.NewString()
	card := testCard(&sourceID)
	st := testStatement(card.AccountID, domain.StatementClosed, decimal.NewFromInt(800))
	today := st.DueDate

	suite.mockStmtRepo.On("FindStatementsDueOn", ctx, today, domain.StatementClosed).
		Return([]domain.Statement{*st}, nil).Once()
	suite.mockStmtRepo.On("FindStatementByIDForUpdate", ctx, mock.Anything, st.StatementID).Return(st, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, st.AccountID).Return(card, nil).Once()
	suite.mockTxnRepo.On("CountPostedByStatementInTx", ctx, mock.Anything, st.StatementID).Return(int64(1), nil).Once()

	err := suite.service.AutopayDueStatements(ctx, today)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccountBalancesInTx",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockStmtRepo.AssertNotCalled(suite.T(), "UpdateStatementInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestAutopay_SourceEmptyLeavesStatementClosed() {
	ctx := context.Background()
	sourceID := uuid.NewString()
	card := testCard(&sourceID)
	st := testStatement(card.AccountID, domain.StatementClosed, decimal.NewFromInt(800))
	today := st.DueDate

	broke := domain.Account{
		AccountID:      sourceID,
		AccountType:    domain.Bank,
		CurrencyCode:   "USD",
		CurrentBalance: decimal.Zero,
	}

	suite.mockStmtRepo.On("FindStatementsDueOn", ctx, today, domain.StatementClosed).
		Return([]domain.Statement{*st}, nil).Once()
	suite.mockStmtRepo.On("FindStatementByIDForUpdate", ctx, mock.Anything, st.StatementID).Return(st, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, st.AccountID).Return(card, nil).Once()
	suite.mockTxnRepo.On("CountPostedByStatementInTx", ctx, mock.Anything, st.StatementID).Return(int64(0), nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", ctx, mock.Anything, []string{card.AccountID, sourceID}).
		Return(map[string]domain.Account{card.AccountID: *card, sourceID: broke}, nil).Once()

	err := suite.service.AutopayDueStatements(ctx, today)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccountBalancesInTx",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockStmtRepo.AssertNotCalled(suite.T(), "UpdateStatementInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestAutopay_ZeroBalanceRetiresStatement() {
	ctx := context.Background()
	sourceID := uuid.NewString()
	card := testCard(&sourceID)
	st := testStatement(card.AccountID, domain.StatementClosed, decimal.Zero)
	plannedID := uuid.NewString()
	st.PlannedTransactionID = &plannedID
	today := st.DueDate

	suite.mockStmtRepo.On("FindStatementsDueOn", ctx, today, domain.StatementClosed).
		Return([]domain.Statement{*st}, nil).Once()
	suite.mockStmtRepo.On("FindStatementByIDForUpdate", ctx, mock.Anything, st.StatementID).Return(st, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, st.AccountID).Return(card, nil).Once()
	suite.mockTxnRepo.On("CountPostedByStatementInTx", ctx, mock.Anything, st.StatementID).Return(int64(0), nil).Once()
	suite.mockTxnRepo.On("DeleteTransactionInTx", ctx, mock.Anything, plannedID).Return(nil).Once()
	suite.mockStmtRepo.On("UpdateStatementInTx", ctx, mock.Anything,
		mock.MatchedBy(func(updated domain.Statement) bool {
			return updated.Status == domain.StatementPaid && updated.PlannedTransactionID == nil
		})).Return(nil).Once()

	err := suite.service.AutopayDueStatements(ctx, today)

	suite.Require().NoError(err)
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockStmtRepo.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccountBalancesInTx",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *BillingServiceTestSuite) TestReconcileInTx_UnsettledRefreshesBalance() {
	ctx := context.Background()
	card := testCard(nil)
	st := testStatement(card.AccountID, domain.StatementOpen, decimal.NewFromInt(100))
	occurredAt := billing.Date(2025, time.April, 2)

	suite.mockStmtRepo.On("FindStatementByAccountAndClosingDateInTx", ctx, mock.Anything, card.AccountID, st.ClosingDate).
		Return(st, nil).Once()
	suite.mockTxnRepo.On("SumAccountPeriodInTx", ctx, mock.Anything, card.AccountID, mock.Anything, mock.Anything).
		Return(decimal.NewFromInt(160), nil).Once()
	suite.mockStmtRepo.On("UpdateStatementInTx", ctx, mock.Anything,
		mock.MatchedBy(func(updated domain.Statement) bool {
			return updated.Status == domain.StatementOpen &&
				updated.Balance.Equal(decimal.NewFromInt(160))
		})).Return(nil).Once()

	err := suite.service.ReconcileInTx(ctx, nil, *card, occurredAt)

	suite.Require().NoError(err)
	suite.mockStmtRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestReconcileInTx_SettledRefundsOverpayment() {
	ctx := context.Background()
	sourceID := uuid.NewString()
	card := testCard(&sourceID)
	st := testStatement(card.AccountID, domain.StatementPaid, decimal.Zero)
	paidID := uuid.NewString()
	st.PaidTransactionID = &paidID
	occurredAt := billing.Date(2025, time.April, 2)

	// The executed payment moved 800, but a deleted expense now sums the
	// period at 600; 200 flows back to the source.
	posted := &domain.Transaction{
		TransactionID:   paidID,
		Kind:            domain.Transfer,
		Amount:          decimal.NewFromInt(800),
		Status:          domain.Posted,
		SourceAccountID: &sourceID,
		TargetAccountID: &card.AccountID,
		StatementID:     &st.StatementID,
	}

	suite.mockStmtRepo.On("FindStatementByAccountAndClosingDateInTx", ctx, mock.Anything, card.AccountID, st.ClosingDate).
		Return(st, nil).Once()
	suite.mockTxnRepo.On("SumAccountPeriodInTx", ctx, mock.Anything, card.AccountID, mock.Anything, mock.Anything).
		Return(decimal.NewFromInt(600), nil).Once()
	suite.mockTxnRepo.On("FindTransactionByIDForUpdate", ctx, mock.Anything, paidID).Return(posted, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", ctx, mock.Anything, []string{card.AccountID, sourceID}).
		Return(map[string]domain.Account{}, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalancesInTx", ctx, mock.Anything,
		mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
			return changes[card.AccountID].Equal(decimal.NewFromInt(-200)) &&
				changes[sourceID].Equal(decimal.NewFromInt(200))
		}), mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockTxnRepo.On("UpdateTransactionInTx", ctx, mock.Anything,
		mock.MatchedBy(func(txn domain.Transaction) bool {
			return txn.Amount.Equal(decimal.NewFromInt(600))
		})).Return(nil).Once()
	suite.mockStmtRepo.On("UpdateStatementInTx", ctx, mock.Anything,
		mock.MatchedBy(func(updated domain.Statement) bool {
			return updated.Status == domain.StatementPaid && updated.Balance.IsZero()
		})).Return(nil).Once()

	err := suite.service.ReconcileInTx(ctx, nil, *card, occurredAt)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockStmtRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestReconcileInTx_SettledNewChargesTopUpPayment() {
	ctx := context.Background()
	sourceID := uuid.NewString()
	card := testCard(&sourceID)
	st := testStatement(card.AccountID, domain.StatementPaid, decimal.Zero)
	paidID := uuid.NewString()
	st.PaidTransactionID = &paidID
	occurredAt := billing.Date(2025, time.April, 10)

	// A backdated expense pushes the period to 950 against the 800 already
	// paid; the source covers the 150 difference, so it moves and the
	// statement stays fully paid.
	posted := &domain.Transaction{
		TransactionID:   paidID,
		Kind:            domain.Transfer,
		Amount:          decimal.NewFromInt(800),
		Status:          domain.Posted,
		SourceAccountID: &sourceID,
		TargetAccountID: &card.AccountID,
	}
	source := domain.Account{
		AccountID:      sourceID,
		AccountType:    domain.Bank,
		CurrencyCode:   "USD",
		CurrentBalance: decimal.NewFromInt(500),
	}

	suite.mockStmtRepo.On("FindStatementByAccountAndClosingDateInTx", ctx, mock.Anything, card.AccountID, st.ClosingDate).
		Return(st, nil).Once()
	suite.mockTxnRepo.On("SumAccountPeriodInTx", ctx, mock.Anything, card.AccountID, mock.Anything, mock.Anything).
		Return(decimal.NewFromInt(950), nil).Once()
	suite.mockTxnRepo.On("FindTransactionByIDForUpdate", ctx, mock.Anything, paidID).Return(posted, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", ctx, mock.Anything, []string{card.AccountID, sourceID}).
		Return(map[string]domain.Account{card.AccountID: *card, sourceID: source}, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalancesInTx", ctx, mock.Anything,
		mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
			return changes[sourceID].Equal(decimal.NewFromInt(-150)) &&
				changes[card.AccountID].Equal(decimal.NewFromInt(150))
		}), mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockTxnRepo.On("UpdateTransactionInTx", ctx, mock.Anything,
		mock.MatchedBy(func(txn domain.Transaction) bool {
			return txn.Amount.Equal(decimal.NewFromInt(950))
		})).Return(nil).Once()
	suite.mockStmtRepo.On("UpdateStatementInTx", ctx, mock.Anything,
		mock.MatchedBy(func(updated domain.Statement) bool {
			return updated.Status == domain.StatementPaid && updated.Balance.IsZero()
		})).Return(nil).Once()

	err := suite.service.ReconcileInTx(ctx, nil, *card, occurredAt)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockStmtRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestReconcileInTx_SettledTopUpCappedBySourceFunds() {
	ctx := context.Background()
	sourceID := uuid.NewString()
	card := testCard(&sourceID)
	st := testStatement(card.AccountID, domain.StatementPaid, decimal.Zero)
	paidID := uuid.NewString()
	st.PaidTransactionID = &paidID
	occurredAt := billing.Date(2025, time.April, 10)

	// Period re-sums at 1000 against 800 paid, but the source only holds 120;
	// that much moves and the uncovered 80 stays outstanding.
	posted := &domain.Transaction{
		TransactionID:   paidID,
		Kind:            domain.Transfer,
		Amount:          decimal.NewFromInt(800),
		Status:          domain.Posted,
		SourceAccountID: &sourceID,
		TargetAccountID: &card.AccountID,
	}
	source := domain.Account{
		AccountID:      sourceID,
		AccountType:    domain.Bank,
		CurrencyCode:   "USD",
		CurrentBalance: decimal.NewFromInt(120),
	}

	suite.mockStmtRepo.On("FindStatementByAccountAndClosingDateInTx", ctx, mock.Anything, card.AccountID, st.ClosingDate).
		Return(st, nil).Once()
	suite.mockTxnRepo.On("SumAccountPeriodInTx", ctx, mock.Anything, card.AccountID, mock.Anything, mock.Anything).
		Return(decimal.NewFromInt(1000), nil).Once()
	suite.mockTxnRepo.On("FindTransactionByIDForUpdate", ctx, mock.Anything, paidID).Return(posted, nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDsForUpdate", ctx, mock.Anything, []string{card.AccountID, sourceID}).
		Return(map[string]domain.Account{card.AccountID: *card, sourceID: source}, nil).Once()
	suite.mockAccountRepo.On("UpdateAccountBalancesInTx", ctx, mock.Anything,
		mock.MatchedBy(func(changes map[string]decimal.Decimal) bool {
			return changes[sourceID].Equal(decimal.NewFromInt(-120)) &&
				changes[card.AccountID].Equal(decimal.NewFromInt(120))
		}), mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockTxnRepo.On("UpdateTransactionInTx", ctx, mock.Anything,
		mock.MatchedBy(func(txn domain.Transaction) bool {
			return txn.Amount.Equal(decimal.NewFromInt(920))
		})).Return(nil).Once()
	suite.mockStmtRepo.On("UpdateStatementInTx", ctx, mock.Anything,
		mock.MatchedBy(func(updated domain.Statement) bool {
			return updated.Status == domain.StatementPartial &&
				updated.Balance.Equal(decimal.NewFromInt(80))
		})).Return(nil).Once()

	err := suite.service.ReconcileInTx(ctx, nil, *card, occurredAt)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
	suite.mockStmtRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestAutoCloseForDay_MatchesEffectiveClosingDay() {
	ctx := context.Background()
	// February has no 31st; a card closing on the 31st closes on the 28th.
	today := billing.Date(2025, time.February, 28)
	closingDay := 31
	card := domain.Account{
		AccountID:        uuid.NewString(),
		OwnerID:          testOwnerID,
		AccountType:      domain.CreditCard,
		CurrencyCode:     "USD",
		ClosingDay:       &closingDay,
		DueMonthOffset:   1,
		DueHolidayPolicy: domain.HolidayNone,
	}
	st := &domain.Statement{
		StatementID: uuid.NewString(),
		AccountID:   card.AccountID,
		PeriodStart: billing.Date(2025, time.February, 1),
		PeriodEnd:   today,
		ClosingDate: today,
		DueDate:     billing.Date(2025, time.March, 28),
		Status:      domain.StatementClosed,
		Balance:     decimal.NewFromInt(50),
	}

	suite.mockAccountRepo.On("FindAccountsByType", ctx, testOwnerID, domain.CreditCard).
		Return([]domain.Account{card}, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, card.AccountID).Return(&card, nil).Once()
	suite.mockStmtRepo.On("FindStatementByAccountAndClosingDateInTx", ctx, mock.Anything, card.AccountID, today).
		Return(st, nil).Once()

	err := suite.service.AutoCloseForDay(ctx, today)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockStmtRepo.AssertExpectations(suite.T())
}

func (suite *BillingServiceTestSuite) TestAutoCloseForDay_SkipsArchivedAndUnconfigured() {
	ctx := context.Background()
	today := billing.Date(2025, time.April, 15)
	closingDay := 15

	archived := domain.Account{
		AccountID:   uuid.NewString(),
		AccountType: domain.CreditCard,
		ClosingDay:  &closingDay,
		Archived:    true,
	}
	noClosingDay := domain.Account{
		AccountID:   uuid.NewString(),
		AccountType: domain.CreditCard,
	}

	suite.mockAccountRepo.On("FindAccountsByType", ctx, testOwnerID, domain.CreditCard).
		Return([]domain.Account{archived, noClosingDay}, nil).Once()

	err := suite.service.AutoCloseForDay(ctx, today)

	suite.Require().NoError(err)
	suite.mockStmtRepo.AssertNotCalled(suite.T(), "FindStatementByAccountAndClosingDateInTx",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBillingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BillingServiceTestSuite))
}
