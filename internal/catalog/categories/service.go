package categories

import "context"

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	Insert(ctx context.Context, category Category) (Category, error)
	Get(ctx context.Context, id, ownerID string) (Category, error)
	List(ctx context.Context, ownerID string) ([]Category, error)
	Update(ctx context.Context, category Category) error
	Delete(ctx context.Context, id, ownerID string) error
}

// Service manages product categories.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateRequest, ownerID string) (Category, error) {
	return s.repo.Insert(ctx, Category{Name: req.Name, OwnerID: ownerID})
}

func (s *Service) Get(ctx context.Context, id, ownerID string) (Category, error) {
	return s.repo.Get(ctx, id, ownerID)
}

func (s *Service) List(ctx context.Context, ownerID string) ([]Category, error) {
	return s.repo.List(ctx, ownerID)
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, ownerID string) (Category, error) {
	current, err := s.repo.Get(ctx, id, ownerID)
	if err != nil {
		return Category{}, err
	}
	current.Name = req.Name
	if err := s.repo.Update(ctx, current); err != nil {
		return Category{}, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	if _, err := s.repo.Get(ctx, id, ownerID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id, ownerID)
}
