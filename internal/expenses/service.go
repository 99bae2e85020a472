package expenses

import "context"

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	Insert(ctx context.Context, expense Expense) (Expense, error)
	Get(ctx context.Context, id, ownerID string) (Expense, error)
	List(ctx context.Context, ownerID string) ([]Expense, error)
	Update(ctx context.Context, expense Expense) error
	Delete(ctx context.Context, id, ownerID string) error
}

// Service manages expense categories.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateRequest, ownerID string) (Expense, error) {
	return s.repo.Insert(ctx, Expense{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     ownerID,
	})
}

func (s *Service) Get(ctx context.Context, id, ownerID string) (Expense, error) {
	return s.repo.Get(ctx, id, ownerID)
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Expense, error) {
	return s.repo.List(ctx, ownerID)
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, ownerID string) (Expense, error) {
	current, err := s.repo.Get(ctx, id, ownerID)
	if err != nil {
		return Expense{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Description != nil {
		current.Description = req.Description
	}
	if err := s.repo.Update(ctx, current); err != nil {
		return Expense{}, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.repo.Get(ctx, id, ownerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id, ownerID)
}
