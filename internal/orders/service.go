package orders

import (
	"context"
	"fmt"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
	"github.com/comanda-pos/comanda/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, orderID, ownerID string) (Order, error)
	List(ctx context.Context, ownerID string, status *Status) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID, ownerID string, status Status) error
	Delete(ctx context.Context, orderID, ownerID string) error
	DeleteItem(ctx context.Context, orderID, itemID, ownerID string) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Closer settles and closes an order. Implemented by the settlement package.
type Closer interface {
	CloseOrder(ctx context.Context, orderID, ownerID string) (Order, error)
}

// Service manages the order aggregate.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Create opens a tab. Order, client association and item rows are written in
// one transaction.
func (s *Service) Create(ctx context.Context, req CreateRequest, ownerID string) (Order, error) {
	order := Order{
		Note:    req.Note,
		Status:  StatusOpen,
		OwnerID: ownerID,
		Clients: []Client{},
		Items:   []Item{},
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		client, embedded, err := resolveClient(ctx, tx, req.Client)
		if err != nil {
			return err
		}
		order.ClientsData = embedded

		created, err := tx.InsertOrder(ctx, order)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		order = created

		var orderClientID *string
		if client != nil {
			assocID, err := tx.InsertOrderClient(ctx, order.ID, client.ClientID)
			if err != nil {
				return fmt.Errorf("associate client: %w", err)
			}
			client.ID = assocID
			order.Clients = append(order.Clients, *client)
			orderClientID = &client.ID
		}

		for _, input := range req.Items {
			item, err := snapshotItem(ctx, tx, input, ownerID, orderClientID)
			if err != nil {
				return err
			}
			inserted, err := tx.InsertItem(ctx, order.ID, item)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			order.Items = append(order.Items, inserted)
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	s.recordAudit(ctx, ownerID, "orders:create", order.ID, map[string]any{"items": len(order.Items)})
	return order, nil
}

// AddItems appends lines to an open tab. Re-adding a product already on the
// tab increments the existing line instead of duplicating it.
func (s *Service) AddItems(ctx context.Context, orderID string, req AddItemsRequest, ownerID string) (Order, error) {
	var order Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, orderID, ownerID)
		if err != nil {
			return err
		}
		if current.Status != StatusOpen {
			return fmt.Errorf("%w: open order", httpx.ErrNotFound)
		}

		for _, input := range req.Items {
			existing, found, err := tx.FindItemByProduct(ctx, orderID, input.ProductID, req.OrderClientID)
			if err != nil {
				return err
			}
			if found {
				if err := tx.BumpItemQuantity(ctx, existing.ID, input.Quantity, input.Note); err != nil {
					return fmt.Errorf("bump item quantity: %w", err)
				}
				continue
			}
			item, err := snapshotItem(ctx, tx, input, ownerID, req.OrderClientID)
			if err != nil {
				return err
			}
			if _, err := tx.InsertItem(ctx, orderID, item); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}

	order, err = s.repo.Get(ctx, orderID, ownerID)
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

// UpdateStatus archives a tab or restores an archived one. Closing goes
// through the settlement flow.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, req UpdateStatusRequest, ownerID string) (Order, error) {
	current, err := s.repo.Get(ctx, orderID, ownerID)
	if err != nil {
		return Order{}, err
	}
	switch req.Status {
	case StatusArchived:
		if current.Status == StatusArchived {
			return Order{}, fmt.Errorf("%w: order already archived", httpx.ErrInvalidState)
		}
	case StatusOpen:
		if current.Status != StatusArchived {
			return Order{}, fmt.Errorf("%w: only archived orders can be reopened", httpx.ErrInvalidState)
		}
	default:
		return Order{}, fmt.Errorf("%w: unsupported status transition", httpx.ErrInvalidState)
	}
	if err := s.repo.UpdateStatus(ctx, orderID, ownerID, req.Status); err != nil {
		return Order{}, err
	}
	s.recordAudit(ctx, ownerID, "orders:status", orderID, map[string]any{"status": string(req.Status)})
	current.Status = req.Status
	return current, nil
}

func (s *Service) Get(ctx context.Context, orderID, ownerID string) (Order, error) {
	return s.repo.Get(ctx, orderID, ownerID)
}

func (s *Service) List(ctx context.Context, ownerID string, status *Status) ([]Order, error) {
	return s.repo.List(ctx, ownerID, status)
}

func (s *Service) RemoveItem(ctx context.Context, orderID, itemID, ownerID string) error {
	return s.repo.DeleteItem(ctx, orderID, itemID, ownerID)
}

func (s *Service) Delete(ctx context.Context, orderID, ownerID string) error {
	if _, err := s.repo.Get(ctx, orderID, ownerID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, orderID, ownerID); err != nil {
		return err
	}
	s.recordAudit(ctx, ownerID, "orders:delete", orderID, nil)
	return nil
}

func resolveClient(ctx context.Context, tx TxRepository, info *ClientInfo) (*Client, *string, error) {
	if info == nil {
		return nil, nil, nil
	}
	if info.Phone == "" {
		if info.Name == "" {
			return nil, nil, nil
		}
		embedded := info.Name
		return nil, &embedded, nil
	}

	clientID, name, found, err := tx.FindClientByPhone(ctx, info.Phone)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup client: %w", err)
	}
	if !found {
		if info.Name == "" {
			return nil, nil, fmt.Errorf("%w: client with phone %s", httpx.ErrNotFound, info.Phone)
		}
		clientID, err = tx.InsertClient(ctx, info.Name, info.Phone)
		if err != nil {
			return nil, nil, fmt.Errorf("create client: %w", err)
		}
		name = info.Name
	}
	return &Client{ClientID: clientID, Name: name, Phone: info.Phone}, nil, nil
}

func snapshotItem(ctx context.Context, tx TxRepository, input ItemInput, ownerID string, orderClientID *string) (Item, error) {
	item, err := tx.Product(ctx, input.ProductID, ownerID)
	if err != nil {
		return Item{}, err
	}
	item.Quantity = input.Quantity
	item.Note = input.Note
	item.OrderClientID = orderClientID
	return item, nil
}

func (s *Service) recordAudit(ctx context.Context, ownerID, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ProfileID: ownerID,
		Action:    action,
		Entity:    "order",
		EntityID:  entityID,
		Meta:      meta,
	})
}
