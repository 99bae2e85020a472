package cashregister

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
	"github.com/comanda-pos/comanda/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, registerID, ownerID string) (Register, error)
	FindOpen(ctx context.Context, ownerID string) (Register, error)
	List(ctx context.Context, ownerID string) ([]Register, error)
	ListTransactions(ctx context.Context, registerID, ownerID string) ([]Transaction, error)
	SumsByOrigin(ctx context.Context, registerID string) (ReportTotals, error)
	Sales(ctx context.Context, registerID, ownerID string) ([]Sale, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages till sessions.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	location *time.Location
}

// NewService builds Service. Close timestamps are taken in the given
// location, since the till day follows the shop's wall clock.
func NewService(repo RepositoryPort, audit AuditPort, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{repo: repo, audit: audit, location: location}
}

// Open starts a till session. The expected amount starts equal to the opened
// amount and is never recomputed afterwards.
func (s *Service) Open(ctx context.Context, req OpenRequest, ownerID string) (Register, error) {
	var register Register
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		open, err := tx.HasOpen(ctx, ownerID)
		if err != nil {
			return err
		}
		if open {
			return fmt.Errorf("%w: a cash register is already open", httpx.ErrInvalidState)
		}
		register, err = tx.Insert(ctx, Register{
			OwnerID:            ownerID,
			OpenedAmount:       req.Amount,
			ExpectedAmount:     req.Amount,
			RegisteredPayments: map[string]decimal.Decimal{},
		})
		return err
	})
	if err != nil {
		return Register{}, err
	}
	s.recordAudit(ctx, ownerID, "cashregister:open", register.ID, nil)
	return register, nil
}

// Current returns the owner's open register.
func (s *Service) Current(ctx context.Context, ownerID string) (Register, error) {
	return s.repo.FindOpen(ctx, ownerID)
}

func (s *Service) Get(ctx context.Context, registerID, ownerID string) (Register, error) {
	return s.repo.Get(ctx, registerID, ownerID)
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Register, error) {
	return s.repo.List(ctx, ownerID)
}

func (s *Service) Transactions(ctx context.Context, registerID, ownerID string) ([]Transaction, error) {
	if _, err := s.repo.Get(ctx, registerID, ownerID); err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, registerID, ownerID)
}

// CreateTransaction posts against the owner's open register. Resolving the
// register inside the transaction keeps postings off closed sessions.
func (s *Service) CreateTransaction(ctx context.Context, req CreateTransactionRequest, ownerID string) (Transaction, error) {
	var transaction Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		register, err := tx.OpenForUpdate(ctx, ownerID)
		if err != nil {
			return err
		}
		transaction, err = tx.InsertTransaction(ctx, Transaction{
			RegisterID:    register.ID,
			OriginType:    req.OriginType,
			Amount:        req.Amount,
			PaymentMethod: req.PaymentMethod,
			Reason:        req.Reason,
		})
		return err
	})
	if err != nil {
		return Transaction{}, err
	}
	s.recordAudit(ctx, ownerID, "cashregister:transaction", transaction.ID, map[string]any{"originType": string(transaction.OriginType)})
	return transaction, nil
}

// PostPaymentTransactions writes one PAYMENT posting per payment inside the
// caller's transaction. Used once per order close.
func (s *Service) PostPaymentTransactions(ctx context.Context, tx TxRepository, ownerID string, postings []PaymentPosting) error {
	register, err := tx.OpenForUpdate(ctx, ownerID)
	if err != nil {
		return err
	}
	for _, posting := range postings {
		paymentID := posting.PaymentID
		method := posting.Method
		if _, err := tx.InsertTransaction(ctx, Transaction{
			RegisterID:    register.ID,
			OriginType:    OriginPayment,
			OriginID:      &paymentID,
			Amount:        posting.Amount,
			PaymentMethod: &method,
		}); err != nil {
			return fmt.Errorf("post payment transaction: %w", err)
		}
	}
	return nil
}

// RegisterPayments stores the counted breakdown by method and the summed
// counted amount, ahead of the final close.
func (s *Service) RegisterPayments(ctx context.Context, registerID string, req RegisterPaymentsRequest, ownerID string) (Register, error) {
	var register Register
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, registerID, ownerID)
		if err != nil {
			return err
		}
		if !current.Open() {
			return fmt.Errorf("%w: cash register already closed", httpx.ErrInvalidState)
		}
		counted := decimal.Zero
		for _, amount := range req.Payments {
			counted = counted.Add(amount)
		}
		if err := tx.SetRegisteredPayments(ctx, registerID, req.Payments, counted); err != nil {
			return err
		}
		current.RegisteredPayments = req.Payments
		current.ClosedAmount = &counted
		register = current
		return nil
	})
	if err != nil {
		return Register{}, err
	}
	return register, nil
}

// Close ends the session. Irreversible.
func (s *Service) Close(ctx context.Context, registerID, ownerID string) (Register, error) {
	var register Register
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, registerID, ownerID)
		if err != nil {
			return err
		}
		if !current.Open() {
			return fmt.Errorf("%w: cash register already closed", httpx.ErrInvalidState)
		}
		closedAt := time.Now().In(s.location)
		if err := tx.SetClosedAt(ctx, registerID, closedAt); err != nil {
			return err
		}
		current.ClosedAt = &closedAt
		register = current
		return nil
	})
	if err != nil {
		return Register{}, err
	}
	s.recordAudit(ctx, ownerID, "cashregister:close", registerID, nil)
	return register, nil
}

// Report reconciles the register. Difference stays null until the session
// closes, even when a counted amount was already registered.
func (s *Service) Report(ctx context.Context, registerID, ownerID string) (Report, error) {
	register, err := s.repo.Get(ctx, registerID, ownerID)
	if err != nil {
		return Report{}, err
	}
	totals, err := s.repo.SumsByOrigin(ctx, registerID)
	if err != nil {
		return Report{}, err
	}
	report := Report{
		OpenedAmount:   register.OpenedAmount,
		ExpectedAmount: register.ExpectedAmount,
		ClosedAmount:   register.ClosedAmount,
		Totals:         totals,
	}
	if !register.Open() && register.ClosedAmount != nil {
		difference := register.ClosedAmount.Sub(register.ExpectedAmount)
		report.Difference = &difference
	}
	return report, nil
}

// Sales lists the orders whose payments were posted to this register.
func (s *Service) Sales(ctx context.Context, registerID, ownerID string) ([]Sale, error) {
	if _, err := s.repo.Get(ctx, registerID, ownerID); err != nil {
		return nil, err
	}
	return s.repo.Sales(ctx, registerID, ownerID)
}

func (s *Service) recordAudit(ctx context.Context, ownerID, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ProfileID: ownerID,
		Action:    action,
		Entity:    "cash_register",
		EntityID:  entityID,
		Meta:      meta,
	})
}
