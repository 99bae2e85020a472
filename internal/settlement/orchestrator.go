package settlement

import (
	"context"
	"fmt"

	"github.com/comanda-pos/comanda/internal/cashregister"
	"github.com/comanda-pos/comanda/internal/orders"
	"github.com/comanda-pos/comanda/internal/payments"
	"github.com/comanda-pos/comanda/internal/platform/httpx"
	"github.com/comanda-pos/comanda/internal/shared"
	"github.com/comanda-pos/comanda/internal/stock"
)

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Orchestrator performs the order close settlement.
type Orchestrator struct {
	uow      UnitOfWork
	register *cashregister.Service
	stock    *stock.Service
	audit    AuditPort
}

// NewOrchestrator builds Orchestrator.
func NewOrchestrator(uow UnitOfWork, register *cashregister.Service, stockSvc *stock.Service, audit AuditPort) *Orchestrator {
	return &Orchestrator{uow: uow, register: register, stock: stockSvc, audit: audit}
}

// CloseOrder settles an open order: flips it to CLOSED, posts one till
// transaction per completed payment, and decrements stock for every item.
// Any failure rolls the whole close back.
func (o *Orchestrator) CloseOrder(ctx context.Context, orderID, ownerID string) (orders.Order, error) {
	var order orders.Order
	err := o.uow.WithUnit(ctx, func(ctx context.Context, unit Unit) error {
		current, err := unit.Orders().GetForUpdate(ctx, orderID, ownerID)
		if err != nil {
			return err
		}
		if current.Status != orders.StatusOpen {
			return fmt.Errorf("%w: only open orders can be closed", httpx.ErrInvalidState)
		}

		if err := unit.Orders().SetStatus(ctx, orderID, orders.StatusClosed); err != nil {
			return fmt.Errorf("set order status: %w", err)
		}

		paid, err := unit.Payments().ListPayments(ctx, orderID)
		if err != nil {
			return fmt.Errorf("list order payments: %w", err)
		}
		postings := make([]cashregister.PaymentPosting, 0, len(paid))
		for _, payment := range paid {
			if payment.Status != payments.StatusCompleted {
				continue
			}
			postings = append(postings, cashregister.PaymentPosting{
				PaymentID: payment.ID,
				Amount:    payment.Amount,
				Method:    string(payment.Method),
			})
		}
		if len(postings) > 0 {
			if err := o.register.PostPaymentTransactions(ctx, unit.Register(), ownerID, postings); err != nil {
				return err
			}
		}

		for _, item := range current.Items {
			if item.ProductID == nil {
				continue
			}
			if err := o.stock.ApplySale(ctx, unit.Stock(), *item.ProductID, item.Quantity, ownerID); err != nil {
				return err
			}
		}

		current.Status = orders.StatusClosed
		order = current
		return nil
	})
	if err != nil {
		return orders.Order{}, err
	}

	if o.audit != nil {
		_ = o.audit.Record(ctx, shared.AuditLog{
			ProfileID: ownerID,
			Action:    "orders:close",
			Entity:    "order",
			EntityID:  orderID,
			Meta:      map[string]any{"items": len(order.Items)},
		})
	}
	return order, nil
}
