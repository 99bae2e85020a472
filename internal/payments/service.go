package payments

import (
	"context"
	"fmt"

	"github.com/comanda-pos/comanda/internal/orders"
	"github.com/comanda-pos/comanda/internal/platform/httpx"
	"github.com/comanda-pos/comanda/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListByOrder(ctx context.Context, orderID, ownerID string) ([]Payment, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service validates payments against the order balance and keeps order
// status in sync with the paid total.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Create records a COMPLETED payment. The amount may never exceed the unpaid
// remainder of its scope, and the order row is locked so two concurrent
// payments cannot both pass the balance check.
func (s *Service) Create(ctx context.Context, orderID string, req CreateRequest, ownerID string) (Payment, error) {
	if !req.Amount.IsPositive() {
		return Payment{}, fmt.Errorf("%w: amount must be positive", httpx.ErrValidation)
	}

	var payment Payment
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.OrderForUpdate(ctx, orderID, ownerID)
		if err != nil {
			return err
		}
		if order.Status == orders.StatusArchived {
			return fmt.Errorf("%w: archived order does not accept payments", httpx.ErrInvalidState)
		}
		if req.OrderClientID != nil {
			belongs, err := tx.OrderClientBelongs(ctx, orderID, *req.OrderClientID)
			if err != nil {
				return err
			}
			if !belongs {
				return fmt.Errorf("%w: order client", httpx.ErrNotFound)
			}
		}

		existing, err := tx.ListPayments(ctx, orderID)
		if err != nil {
			return err
		}
		scopeTotal := order.Total(req.OrderClientID)
		scopePaid := CompletedTotal(existing, req.OrderClientID)
		if req.Amount.GreaterThan(scopeTotal.Sub(scopePaid)) {
			return fmt.Errorf("%w: amount exceeds remaining balance", httpx.ErrValidation)
		}

		payment, err = tx.InsertPayment(ctx, Payment{
			OrderID:       orderID,
			Amount:        req.Amount,
			Method:        req.Method,
			Status:        StatusCompleted,
			OrderClientID: req.OrderClientID,
			Note:          req.Note,
		})
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		return reconcileOrderStatus(ctx, tx, order, append(existing, payment))
	})
	if err != nil {
		return Payment{}, err
	}

	s.recordAudit(ctx, ownerID, "payments:create", payment.ID, map[string]any{"orderId": orderID, "method": string(payment.Method)})
	return payment, nil
}

// Cancel flips a COMPLETED payment to CANCELLED and re-evaluates the order
// status, reopening the order when the paid total drops below its total.
func (s *Service) Cancel(ctx context.Context, paymentID, ownerID string) (Payment, error) {
	var payment Payment
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.PaymentForUpdate(ctx, paymentID, ownerID)
		if err != nil {
			return err
		}
		if current.Status != StatusCompleted {
			return fmt.Errorf("%w: only completed payments can be cancelled", httpx.ErrInvalidState)
		}

		order, err := tx.OrderForUpdate(ctx, current.OrderID, ownerID)
		if err != nil {
			return err
		}
		if err := tx.SetPaymentStatus(ctx, paymentID, StatusCancelled); err != nil {
			return fmt.Errorf("cancel payment: %w", err)
		}
		current.Status = StatusCancelled
		payment = current

		all, err := tx.ListPayments(ctx, current.OrderID)
		if err != nil {
			return err
		}
		return reconcileOrderStatus(ctx, tx, order, all)
	})
	if err != nil {
		return Payment{}, err
	}

	s.recordAudit(ctx, ownerID, "payments:cancel", paymentID, map[string]any{"orderId": payment.OrderID})
	return payment, nil
}

// ListByOrder returns the payments recorded against an order.
func (s *Service) ListByOrder(ctx context.Context, orderID, ownerID string) ([]Payment, error) {
	return s.repo.ListByOrder(ctx, orderID, ownerID)
}

// reconcileOrderStatus keeps the CLOSED-iff-fully-paid equivalence after
// every payment mutation.
func reconcileOrderStatus(ctx context.Context, tx TxRepository, order OrderSummary, all []Payment) error {
	orderTotal := order.Total(nil)
	totalPaid := CompletedTotal(all, nil)

	switch {
	case totalPaid.GreaterThanOrEqual(orderTotal) && order.Status == orders.StatusOpen:
		return tx.SetOrderStatus(ctx, order.ID, orders.StatusClosed)
	case totalPaid.LessThan(orderTotal) && order.Status == orders.StatusClosed:
		return tx.SetOrderStatus(ctx, order.ID, orders.StatusOpen)
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, ownerID, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ProfileID: ownerID,
		Action:    action,
		Entity:    "payment",
		EntityID:  entityID,
		Meta:      meta,
	})
}
