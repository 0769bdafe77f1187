package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitstack/splitledger/internal/apperrors"
	"github.com/splitstack/splitledger/internal/core/domain"
	portsevents "github.com/splitstack/splitledger/internal/core/ports/events"
	portsrepo "github.com/splitstack/splitledger/internal/core/ports/repositories"
	portssvc "github.com/splitstack/splitledger/internal/core/ports/services"
	"github.com/splitstack/splitledger/internal/dto"
	"github.com/splitstack/splitledger/internal/middleware"
)

// expenseService provides the expense ledger operations: creating expenses
// from split maps or budget items and settling debts against them.
type expenseService struct {
	expenseRepo      portsrepo.ExpenseRepository
	userRepo         portsrepo.UserRepository
	groupSvc         portssvc.GroupWriterSvc
	publisher        portsevents.Publisher
	allowOverpayment bool
}

// ExpenseServiceOption configures optional expense service behavior.
type ExpenseServiceOption func(*expenseService)

// WithEventPublisher attaches a broker publisher for ledger events.
func WithEventPublisher(pub portsevents.Publisher) ExpenseServiceOption {
	return func(s *expenseService) {
		s.publisher = pub
	}
}

// WithOverpaymentAllowed lets repayments exceed the outstanding amount on an
// expense. The default policy rejects them.
func WithOverpaymentAllowed() ExpenseServiceOption {
	return func(s *expenseService) {
		s.allowOverpayment = true
	}
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(expenseRepo portsrepo.ExpenseRepository, userRepo portsrepo.UserRepository, groupSvc portssvc.GroupWriterSvc, opts ...ExpenseServiceOption) portssvc.ExpenseSvcFacade {
	s := &expenseService{
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
		groupSvc:    groupSvc,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// sharesToMap converts a share list into an email-keyed amount map. A
// duplicate email within one side of the split is a caller mistake, not map
// overwrite material.
func sharesToMap(shares []dto.ExpenseShare) (map[string]decimal.Decimal, error) {
	amounts := make(map[string]decimal.Decimal, len(shares))
	for _, share := range shares {
		if _, exists := amounts[share.Email]; exists {
			return nil, fmt.Errorf("%w: duplicate participant %s in split", apperrors.ErrValidation, share.Email)
		}
		amounts[share.Email] = share.Amount
	}
	return amounts, nil
}

// standInNames maps each share email to the name supplied for it, for
// labelling participants who turn out to be unregistered.
func standInNames(req dto.CreateExpenseRequest) map[string]string {
	names := make(map[string]string)
	for _, share := range req.Lent {
		if share.Name != "" {
			names[share.Email] = share.Name
		}
	}
	for _, share := range req.Borrowed {
		if share.Name != "" {
			names[share.Email] = share.Name
		}
	}
	return names
}

// CreateExpense builds an expense from the given split maps, validates the
// split sums, and applies every registered participant's balance delta
// exactly once: borrowers owe more, lenders are owed more. The sum of deltas
// across registered participants of a fully registered split is zero.
func (s *expenseService) CreateExpense(ctx context.Context, req dto.CreateExpenseRequest, creatorUserID string) (*domain.Expense, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	creator, err := s.userRepo.FindByID(ctx, creatorUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve expense creator: %w", err)
	}

	if len(req.Lent) == 0 {
		return nil, fmt.Errorf("%w: an expense needs at least one lender", apperrors.ErrValidation)
	}

	lentBy, err := sharesToMap(req.Lent)
	if err != nil {
		return nil, err
	}
	borrowedBy, err := sharesToMap(req.Borrowed)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expense := domain.Expense{
		ExpenseID:    uuid.NewString(),
		Title:        req.Title,
		Amount:       req.Amount,
		LentBy:       lentBy,
		BorrowedBy:   borrowedBy,
		Participants: make(map[string]domain.Person),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creator.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creator.UserID,
		},
	}

	if err := expense.ValidateSplit(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}
	expense.InitOutstanding()

	// One signed delta per participant, regardless of which side(s) of the
	// split they appear on.
	deltas := make(map[string]decimal.Decimal, len(lentBy)+len(borrowedBy))
	for email, amount := range borrowedBy {
		deltas[email] = deltas[email].Add(amount)
	}
	for email, amount := range lentBy {
		deltas[email] = deltas[email].Sub(amount)
	}

	names := standInNames(req)
	for email, delta := range deltas {
		user, err := s.userRepo.FindUserByEmail(ctx, email)
		if errors.Is(err, apperrors.ErrNotFound) {
			// Unregistered participant: record a stand-in on the expense
			// only. Their balance stays zero and no directory entry is made.
			name := names[email]
			if name == "" {
				name = email
			}
			expense.Participants[email] = domain.NewStandIn(name, email)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to resolve participant %s: %w", email, err)
		}

		user.ApplyDelta(delta)
		user.AddExpenseRef(expense.ExpenseID)
		if _, err := s.userRepo.Save(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update balance for %s: %w", email, err)
		}
	}

	// The creator keeps a reference even when recording an expense they have
	// no share in.
	if _, isParticipant := deltas[creator.Email]; !isParticipant {
		creator.AddExpenseRef(expense.ExpenseID)
		if _, err := s.userRepo.Save(ctx, creator); err != nil {
			return nil, fmt.Errorf("failed to record expense reference: %w", err)
		}
	}

	if _, err := s.expenseRepo.Save(ctx, &expense); err != nil {
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	if req.GroupID != "" {
		if err := s.groupSvc.AddExpenseToGroup(ctx, req.GroupID, expense.ExpenseID); err != nil {
			return nil, fmt.Errorf("failed to attach expense to group %s: %w", req.GroupID, err)
		}
	}

	s.publish(ctx, portsevents.TopicExpenseCreated, portsevents.ExpenseCreated{
		ExpenseID: expense.ExpenseID,
		Title:     expense.Title,
		Amount:    expense.Amount.String(),
		CreatedBy: creator.UserID,
	})

	logger.Info("Expense created",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("amount", expense.Amount.String()),
		slog.Int("participants", len(deltas)),
	)
	return &expense, nil
}

// CreateExpenseFromItem converts a budget item into a personal expense record
// for the acting user: amount = cost x quantity, the user is the sole lender
// and there are no borrowers, so nobody's balance moves.
func (s *expenseService) CreateExpenseFromItem(ctx context.Context, item domain.Item, creatorUserID string) (*domain.Expense, error) {
	creator, err := s.userRepo.FindByID(ctx, creatorUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve expense creator: %w", err)
	}

	amount := item.TotalCost()
	now := time.Now().UTC()
	expense := domain.Expense{
		ExpenseID:    uuid.NewString(),
		Title:        item.Name,
		Amount:       amount,
		LentBy:       map[string]decimal.Decimal{},
		BorrowedBy:   map[string]decimal.Decimal{},
		Participants: make(map[string]domain.Person),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creator.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creator.UserID,
		},
	}
	if amount.IsPositive() {
		expense.LentBy[creator.Email] = amount
	}
	if err := expense.ValidateSplit(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}
	expense.InitOutstanding()

	creator.AddExpenseRef(expense.ExpenseID)
	if _, err := s.userRepo.Save(ctx, creator); err != nil {
		return nil, fmt.Errorf("failed to record expense reference: %w", err)
	}
	if _, err := s.expenseRepo.Save(ctx, &expense); err != nil {
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	s.publish(ctx, portsevents.TopicExpenseCreated, portsevents.ExpenseCreated{
		ExpenseID: expense.ExpenseID,
		Title:     expense.Title,
		Amount:    expense.Amount.String(),
		CreatedBy: creator.UserID,
	})

	return &expense, nil
}

// GetExpenseByID retrieves an expense by ID.
func (s *expenseService) GetExpenseByID(ctx context.Context, expenseID string) (*domain.Expense, error) {
	expense, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense %s: %w", expenseID, err)
	}
	return expense, nil
}

// PayDebt applies a repayment by the given user against the given expense.
// The user's outstanding amount on the expense shrinks by the payment, and
// their aggregate balance moves toward zero: a borrower's debt decreases, a
// lender's credit decreases. By default a payment larger than the remaining
// outstanding amount is rejected, which also makes settling a fully paid
// expense a no-op failure rather than a double application.
func (s *expenseService) PayDebt(ctx context.Context, userID string, expenseID string, amount decimal.Decimal, wasBorrower bool) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve payer: %w", err)
	}
	expense, err := s.expenseRepo.FindByID(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("failed to resolve expense %s: %w", expenseID, err)
	}

	outstanding, ok := expense.Outstanding[user.Email]
	if !ok {
		return fmt.Errorf("%w: %s has no stake in expense %s", apperrors.ErrNotFound, user.Email, expenseID)
	}
	if amount.GreaterThan(outstanding) && !s.allowOverpayment {
		return fmt.Errorf("%w: outstanding %s, payment %s", apperrors.ErrOverpayment, outstanding, amount)
	}

	expense.ReduceOutstanding(user.Email, amount)
	if wasBorrower {
		user.ApplyDelta(amount.Neg())
	} else {
		user.ApplyDelta(amount)
	}

	now := time.Now().UTC()
	expense.LastUpdatedAt = now
	expense.LastUpdatedBy = user.UserID

	if _, err := s.expenseRepo.Save(ctx, expense); err != nil {
		return fmt.Errorf("failed to save expense after payment: %w", err)
	}
	if _, err := s.userRepo.Save(ctx, user); err != nil {
		return fmt.Errorf("failed to save payer balance: %w", err)
	}

	s.publish(ctx, portsevents.TopicDebtSettled, portsevents.DebtSettled{
		ExpenseID:   expenseID,
		UserID:      user.UserID,
		Amount:      amount.String(),
		WasBorrower: wasBorrower,
	})

	logger.Info("Debt payment applied",
		slog.String("expense_id", expenseID),
		slog.String("amount", amount.String()),
		slog.Bool("was_borrower", wasBorrower),
	)
	return nil
}

// publish emits a ledger event when a publisher is configured. Broker
// failures are logged, never returned: the ledger write already succeeded.
func (s *expenseService) publish(ctx context.Context, topic string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to publish ledger event",
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)
	}
}
