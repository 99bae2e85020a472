package stock

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
	"github.com/comanda-pos/comanda/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id, ownerID string) (Item, error)
	List(ctx context.Context, ownerID string) ([]Item, error)
	ListHistory(ctx context.Context, stockID, ownerID string) ([]HistoryEntry, error)
	ExpenseExists(ctx context.Context, expenseID, ownerID string) (bool, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service owns the stock ledger: every quantity mutation is paired with
// exactly one history append inside the same transaction.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Create registers a stock unit and its initial INCOMING movement.
func (s *Service) Create(ctx context.Context, req CreateItemRequest, ownerID string) (Item, error) {
	ok, err := s.repo.ExpenseExists(ctx, req.ExpenseID, ownerID)
	if err != nil {
		return Item{}, fmt.Errorf("stock: verify expense: %w", err)
	}
	if !ok {
		return Item{}, fmt.Errorf("%w: expense category", httpx.ErrNotFound)
	}

	item := Item{
		Name:                   req.Name,
		Quantity:               req.Quantity,
		UnitMeasure:            req.UnitMeasure,
		UnitPrice:              req.UnitPrice,
		TotalAmountSpent:       req.TotalPrice,
		TotalQuantityPurchased: req.Quantity,
		MinStock:               req.MinStock,
		ExpenseID:              req.ExpenseID,
		OwnerID:                ownerID,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		created, err := tx.Insert(ctx, item)
		if err != nil {
			return fmt.Errorf("insert stock item: %w", err)
		}
		item = created
		totalPrice := req.TotalPrice
		unitPrice := req.UnitPrice
		return tx.InsertHistory(ctx, HistoryEntry{
			StockID:         created.ID,
			Type:            HistoryIncoming,
			InitialQuantity: decimal.Zero,
			FinalQuantity:   req.Quantity,
			Description:     "Initial intake",
			TotalPrice:      &totalPrice,
			UnitPrice:       &unitPrice,
		})
	})
	if err != nil {
		return Item{}, err
	}

	s.recordAudit(ctx, ownerID, "stock:create", item.ID, map[string]any{"quantity": item.Quantity})
	return item, nil
}

// Update applies incremental receipt deltas and, when the quantity changed,
// appends an INCOMING movement priced at the recomputed weighted average.
func (s *Service) Update(ctx context.Context, id string, req UpdateItemRequest, ownerID string) (Item, error) {
	if req.ExpenseID != nil {
		ok, err := s.repo.ExpenseExists(ctx, *req.ExpenseID, ownerID)
		if err != nil {
			return Item{}, fmt.Errorf("stock: verify expense: %w", err)
		}
		if !ok {
			return Item{}, fmt.Errorf("%w: expense category", httpx.ErrNotFound)
		}
	}

	var updated Item
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id, ownerID)
		if err != nil {
			return err
		}

		next := current
		if req.Name != nil {
			next.Name = *req.Name
		}
		if req.UnitPrice != nil {
			next.UnitPrice = *req.UnitPrice
		}
		if req.MinStock != nil {
			next.MinStock = req.MinStock
		}
		if req.ExpenseID != nil {
			next.ExpenseID = *req.ExpenseID
		}
		qtyDelta := decimal.Zero
		if req.Quantity != nil {
			qtyDelta = *req.Quantity
			next.Quantity = current.Quantity.Add(qtyDelta)
			next.TotalQuantityPurchased = current.TotalQuantityPurchased.Add(qtyDelta)
		}
		if req.TotalPrice != nil {
			next.TotalAmountSpent = current.TotalAmountSpent.Add(*req.TotalPrice)
		}

		if err := tx.Save(ctx, next); err != nil {
			return fmt.Errorf("update stock item: %w", err)
		}
		updated = next

		if !qtyDelta.IsZero() {
			avg := next.AverageUnitCost()
			entry := HistoryEntry{
				StockID:         id,
				Type:            HistoryIncoming,
				InitialQuantity: current.Quantity,
				FinalQuantity:   next.Quantity,
				Description:     "Manual restock",
				TotalPrice:      req.TotalPrice,
				UnitPrice:       &avg,
			}
			if err := tx.InsertHistory(ctx, entry); err != nil {
				return fmt.Errorf("insert stock history: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Item{}, err
	}
	return updated, nil
}

// UpdateUnitPrice overwrites unit price and lifetime spend, recording an
// ADJUSTMENT movement with unchanged quantity.
func (s *Service) UpdateUnitPrice(ctx context.Context, id string, req UpdateUnitPriceRequest, ownerID string) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id, ownerID)
		if err != nil {
			return err
		}
		current.UnitPrice = req.UnitPrice
		current.TotalAmountSpent = req.TotalPrice
		if err := tx.Save(ctx, current); err != nil {
			return fmt.Errorf("update unit price: %w", err)
		}
		totalPrice := req.TotalPrice
		unitPrice := req.UnitPrice
		return tx.InsertHistory(ctx, HistoryEntry{
			StockID:         id,
			Type:            HistoryAdjustment,
			InitialQuantity: current.Quantity,
			FinalQuantity:   current.Quantity,
			Description:     "Unit price adjustment",
			TotalPrice:      &totalPrice,
			UnitPrice:       &unitPrice,
		})
	})
}

// UpdateByInventory overwrites quantities with physically counted values,
// one INVENTORY movement per item, all inside one transaction.
func (s *Service) UpdateByInventory(ctx context.Context, req UpdateByInventoryRequest, ownerID string) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, count := range req.Items {
			current, err := tx.GetForUpdate(ctx, count.ID, ownerID)
			if err != nil {
				return err
			}
			next := current
			next.Quantity = count.Quantity
			if err := tx.Save(ctx, next); err != nil {
				return fmt.Errorf("apply inventory count: %w", err)
			}
			entry := HistoryEntry{
				StockID:         count.ID,
				Type:            HistoryInventory,
				InitialQuantity: current.Quantity,
				FinalQuantity:   count.Quantity,
				Description:     "Stocktake",
			}
			if err := tx.InsertHistory(ctx, entry); err != nil {
				return fmt.Errorf("insert stock history: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, ownerID, "stock:inventory", "batch", map[string]any{"items": len(req.Items)})
	return nil
}

// ApplySale decrements the stock linked to a sold product inside the caller's
// transaction. Products without a sale link are not inventory-tracked, so a
// missing link is a silent no-op.
func (s *Service) ApplySale(ctx context.Context, tx TxRepository, productID string, soldQuantity int64, ownerID string) error {
	link, found, err := tx.FindSaleLink(ctx, productID, ownerID)
	if err != nil {
		return fmt.Errorf("stock: find sale link: %w", err)
	}
	if !found {
		return nil
	}

	current, err := tx.GetForUpdate(ctx, link.StockID, ownerID)
	if err != nil {
		return err
	}

	consumed := link.Quantity.Mul(decimal.NewFromInt(soldQuantity))
	next := current
	next.Quantity = current.Quantity.Sub(consumed)
	if err := tx.Save(ctx, next); err != nil {
		return fmt.Errorf("stock: apply sale decrement: %w", err)
	}

	productName, err := tx.ProductName(ctx, productID)
	if err != nil {
		return fmt.Errorf("stock: resolve product name: %w", err)
	}
	return tx.InsertHistory(ctx, HistoryEntry{
		StockID:         link.StockID,
		Type:            HistoryOutgoing,
		InitialQuantity: current.Quantity,
		FinalQuantity:   next.Quantity,
		Description:     fmt.Sprintf("Sale - %s", productName),
	})
}

// UpdateBySale runs ApplySale in its own transaction, for callers outside
// the settlement pipeline.
func (s *Service) UpdateBySale(ctx context.Context, productID string, soldQuantity int64, ownerID string) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return s.ApplySale(ctx, tx, productID, soldQuantity, ownerID)
	})
}

// Get returns a stock item owned by the caller.
func (s *Service) Get(ctx context.Context, id, ownerID string) (Item, error) {
	return s.repo.Get(ctx, id, ownerID)
}

// List returns every stock item owned by the caller.
func (s *Service) List(ctx context.Context, ownerID string) ([]Item, error) {
	return s.repo.List(ctx, ownerID)
}

// History returns the movement ledger for one stock item.
func (s *Service) History(ctx context.Context, stockID, ownerID string) ([]HistoryEntry, error) {
	return s.repo.ListHistory(ctx, stockID, ownerID)
}

// Delete removes a stock item.
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
		Entity:    "stock_item",
		EntityID:  entityID,
		Meta:      meta,
	})
}
