package bills

import (
	"context"
	"fmt"
	"time"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
	"github.com/comanda-pos/comanda/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id, ownerID string) (Bill, error)
	List(ctx context.Context, ownerID string, filter ListFilter) ([]Bill, error)
	ExpenseExists(ctx context.Context, expenseID, ownerID string) (bool, error)
	Update(ctx context.Context, bill Bill) error
	Delete(ctx context.Context, id, ownerID string) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages payable bills.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	location *time.Location
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{repo: repo, audit: audit, location: location}
}

// Create registers a PENDING bill.
func (s *Service) Create(ctx context.Context, req CreateRequest, ownerID string) (Bill, error) {
	ok, err := s.repo.ExpenseExists(ctx, req.ExpenseID, ownerID)
	if err != nil {
		return Bill{}, fmt.Errorf("bills: verify expense: %w", err)
	}
	if !ok {
		return Bill{}, fmt.Errorf("%w: expense category", httpx.ErrNotFound)
	}

	recurrence := req.Recurrence
	if recurrence == "" {
		recurrence = RecurrenceNone
	}
	var bill Bill
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		bill, err = tx.Insert(ctx, Bill{
			Name:       req.Name,
			Amount:     req.Amount,
			DueDate:    req.DueDate,
			Status:     StatusPending,
			Recurrence: recurrence,
			ExpenseID:  req.ExpenseID,
			OwnerID:    ownerID,
		})
		return err
	})
	if err != nil {
		return Bill{}, err
	}
	return bill, nil
}

// Pay settles a pending bill and, when it recurs, spawns exactly one
// successor with the due date advanced by the recurrence interval. Both
// writes share one transaction.
func (s *Service) Pay(ctx context.Context, id, ownerID string) (Bill, error) {
	var bill Bill
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id, ownerID)
		if err != nil {
			return err
		}
		if current.Status != StatusPending {
			return fmt.Errorf("%w: only pending bills can be paid", httpx.ErrInvalidState)
		}

		paidAt := time.Now().In(s.location)
		if err := tx.MarkPaid(ctx, id, paidAt); err != nil {
			return fmt.Errorf("mark bill paid: %w", err)
		}
		current.Status = StatusPaid
		current.PaidAt = &paidAt
		bill = current

		if current.Recurrence == RecurrenceNone {
			return nil
		}
		parentID := current.ChainParentID()
		_, err = tx.Insert(ctx, Bill{
			Name:               current.Name,
			Amount:             current.Amount,
			DueDate:            current.NextDueDate(),
			Status:             StatusPending,
			Recurrence:         current.Recurrence,
			RecurrenceParentID: &parentID,
			ExpenseID:          current.ExpenseID,
			OwnerID:            current.OwnerID,
		})
		if err != nil {
			return fmt.Errorf("spawn recurring bill: %w", err)
		}
		return nil
	})
	if err != nil {
		return Bill{}, err
	}

	s.recordAudit(ctx, ownerID, "bills:pay", id, map[string]any{"recurrence": string(bill.Recurrence)})
	return bill, nil
}

// Cancel voids a pending bill.
func (s *Service) Cancel(ctx context.Context, id, ownerID string) (Bill, error) {
	var bill Bill
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id, ownerID)
		if err != nil {
			return err
		}
		if current.Status != StatusPending {
			return fmt.Errorf("%w: only pending bills can be cancelled", httpx.ErrInvalidState)
		}
		if err := tx.SetStatus(ctx, id, StatusCancelled); err != nil {
			return err
		}
		current.Status = StatusCancelled
		bill = current
		return nil
	})
	if err != nil {
		return Bill{}, err
	}
	return bill, nil
}

// Update patches a pending bill.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, ownerID string) (Bill, error) {
	current, err := s.repo.Get(ctx, id, ownerID)
	if err != nil {
		return Bill{}, err
	}
	if current.Status != StatusPending {
		return Bill{}, fmt.Errorf("%w: only pending bills can be updated", httpx.ErrInvalidState)
	}
	if req.ExpenseID != nil {
		ok, err := s.repo.ExpenseExists(ctx, *req.ExpenseID, ownerID)
		if err != nil {
			return Bill{}, fmt.Errorf("bills: verify expense: %w", err)
		}
		if !ok {
			return Bill{}, fmt.Errorf("%w: expense category", httpx.ErrNotFound)
		}
		current.ExpenseID = *req.ExpenseID
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Amount != nil {
		current.Amount = *req.Amount
	}
	if req.DueDate != nil {
		current.DueDate = *req.DueDate
	}
	if err := s.repo.Update(ctx, current); err != nil {
		return Bill{}, err
	}
	return current, nil
}

func (s *Service) Get(ctx context.Context, id, ownerID string) (Bill, error) {
	return s.repo.Get(ctx, id, ownerID)
}

func (s *Service) List(ctx context.Context, ownerID string, filter ListFilter) ([]Bill, error) {
	return s.repo.List(ctx, ownerID, filter)
}

func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.repo.Get(ctx, id, ownerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id, ownerID)
}

func (s *Service) recordAudit(ctx context.Context, ownerID, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ProfileID: ownerID,
		Action:    action,
		Entity:    "bill",
		EntityID:  entityID,
		Meta:      meta,
	})
}
