package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/stockroom/stockroom/internal/shared"
)

// Service coordinates item catalog operations.
type Service struct {
	repo  Repository
	title cases.Caser
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, title: cases.Title(language.English)}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id string) (Item, error) {
	if id == "" {
		return Item{}, shared.E(shared.CategoryValidation, "item id is required")
	}
	return s.repo.Get(ctx, id)
}

// Lookup exposes the validation view used by the ledger services.
func (s *Service) Lookup(ctx context.Context, id string) (ItemInfo, error) {
	if id == "" {
		return ItemInfo{}, shared.E(shared.CategoryValidation, "item id is required")
	}
	return s.repo.Lookup(ctx, id)
}

func (s *Service) Create(ctx context.Context, item Item, actor string) (Item, error) {
	item = s.normalise(item)
	if err := s.validate(item); err != nil {
		return Item{}, err
	}
	item.ID = uuid.NewString()
	item.Active = true
	item.CreatedBy = actor
	item.UpdatedBy = actor
	return s.repo.Create(ctx, item)
}

func (s *Service) Update(ctx context.Context, id string, item Item, actor string) error {
	if id == "" {
		return shared.E(shared.CategoryValidation, "item id is required")
	}
	item = s.normalise(item)
	if err := s.validate(item); err != nil {
		return err
	}
	item.UpdatedBy = actor
	return s.repo.Update(ctx, id, item)
}

// Deactivate flips the active flag instead of deleting history-bearing items.
func (s *Service) Deactivate(ctx context.Context, id string, actor string) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	current.Active = false
	current.UpdatedBy = actor
	return s.repo.Update(ctx, id, current)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return shared.E(shared.CategoryValidation, "item id is required")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) normalise(item Item) Item {
	item.Code = strings.ToUpper(strings.TrimSpace(item.Code))
	item.Name = s.title.String(strings.TrimSpace(item.Name))
	item.Category = strings.TrimSpace(item.Category)
	return item
}
