package directory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/stockroom/stockroom/internal/shared"
)

// Service coordinates recipient directory operations.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, search string, page, limit int) ([]Recipient, int, error) {
	return s.repo.List(ctx, search, page, limit)
}

func (s *Service) Get(ctx context.Context, id string) (Recipient, error) {
	if id == "" {
		return Recipient{}, shared.E(shared.CategoryValidation, "recipient id is required")
	}
	return s.repo.Get(ctx, id)
}

// Lookup exposes the validation view used by the issuance services.
func (s *Service) Lookup(ctx context.Context, id string) (RecipientInfo, error) {
	if id == "" {
		return RecipientInfo{}, shared.E(shared.CategoryValidation, "recipient id is required")
	}
	return s.repo.Lookup(ctx, id)
}

func (s *Service) Create(ctx context.Context, rec Recipient) (Recipient, error) {
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		return Recipient{}, shared.E(shared.CategoryValidation, "recipient name is required")
	}
	if rec.Status == "" {
		rec.Status = StatusActive
	}
	rec.ID = uuid.NewString()
	return s.repo.Create(ctx, rec)
}

func (s *Service) Update(ctx context.Context, id string, rec Recipient) error {
	if id == "" {
		return shared.E(shared.CategoryValidation, "recipient id is required")
	}
	rec.Name = strings.TrimSpace(rec.Name)
	if rec.Name == "" {
		return shared.E(shared.CategoryValidation, "recipient name is required")
	}
	return s.repo.Update(ctx, id, rec)
}
