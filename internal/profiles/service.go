package profiles

import "context"

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	Insert(ctx context.Context, profile Profile) (Profile, error)
	Get(ctx context.Context, id string) (Profile, error)
	GetByEmail(ctx context.Context, email string) (Profile, error)
	Update(ctx context.Context, profile Profile) error
}

// Service manages profile accounts.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (Profile, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Profile{}, err
	}
	if req.Name != nil {
		current.Name = *req.Name
	}
	if req.Phone != nil {
		current.Phone = req.Phone
	}
	if err := s.repo.Update(ctx, current); err != nil {
		return Profile{}, err
	}
	return current, nil
}
