package products

import (
	"context"
	"fmt"

	"github.com/comanda-pos/comanda/internal/platform/httpx"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id, ownerID string) (Product, error)
	List(ctx context.Context, ownerID string) ([]Product, error)
	CategoryExists(ctx context.Context, categoryID, ownerID string) (bool, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// Service manages the menu catalog.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create registers a product and its stock links in one transaction.
func (s *Service) Create(ctx context.Context, req CreateRequest, ownerID string) (Product, error) {
	ok, err := s.repo.CategoryExists(ctx, req.CategoryID, ownerID)
	if err != nil {
		return Product{}, fmt.Errorf("products: verify category: %w", err)
	}
	if !ok {
		return Product{}, fmt.Errorf("%w: category", httpx.ErrNotFound)
	}

	product := Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		OwnerID:     ownerID,
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		created, err := tx.Insert(ctx, product)
		if err != nil {
			return err
		}
		links, err := resolveLinks(ctx, tx, req.StockProducts, ownerID)
		if err != nil {
			return err
		}
		if err := tx.ReplaceStockLinks(ctx, created.ID, links); err != nil {
			return fmt.Errorf("link product to stock: %w", err)
		}
		created.StockLinks = links
		product = created
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return product, nil
}

// Update patches a product. When StockProducts is present the link set is
// replaced atomically with the field updates.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, ownerID string) (Product, error) {
	current, err := s.repo.Get(ctx, id, ownerID)
	if err != nil {
		return Product{}, err
	}
	if req.CategoryID != nil {
		ok, err := s.repo.CategoryExists(ctx, *req.CategoryID, ownerID)
		if err != nil {
			return Product{}, fmt.Errorf("products: verify category: %w", err)
		}
		if !ok {
			return Product{}, fmt.Errorf("%w: category", httpx.ErrNotFound)
		}
		current.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Description != nil {
		current.Description = req.Description
	}
	if req.Price != nil {
		current.Price = *req.Price
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.Update(ctx, current); err != nil {
			return err
		}
		if req.StockProducts == nil {
			return nil
		}
		links, err := resolveLinks(ctx, tx, *req.StockProducts, ownerID)
		if err != nil {
			return err
		}
		if err := tx.ReplaceStockLinks(ctx, current.ID, links); err != nil {
			return fmt.Errorf("link product to stock: %w", err)
		}
		current.StockLinks = links
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	return current, nil
}

func (s *Service) Get(ctx context.Context, id, ownerID string) (Product, error) {
	return s.repo.Get(ctx, id, ownerID)
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Product, error) {
	return s.repo.List(ctx, ownerID)
}

func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.repo.Get(ctx, id, ownerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id, ownerID)
}

func resolveLinks(ctx context.Context, tx TxRepository, inputs []StockLinkInput, ownerID string) ([]StockLink, error) {
	links := make([]StockLink, 0, len(inputs))
	for _, input := range inputs {
		ok, err := tx.StockExists(ctx, input.StockID, ownerID)
		if err != nil {
			return nil, fmt.Errorf("products: verify stock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: stock item %s", httpx.ErrNotFound, input.StockID)
		}
		links = append(links, StockLink{StockID: input.StockID, Quantity: input.Quantity})
	}
	return links, nil
}
