package catalog

import "github.com/stockroom/stockroom/internal/shared"

func (s *Service) validate(item Item) error {
	if item.Code == "" {
		return shared.E(shared.CategoryValidation, "item code is required")
	}
	if item.Name == "" {
		return shared.E(shared.CategoryValidation, "item name is required")
	}
	if item.LifeQty <= 0 {
		return shared.E(shared.CategoryValidation, "item service life must be positive")
	}
	if !item.LifeUnit.Valid() {
		return shared.E(shared.CategoryValidation, "item service life unit must be week, month or year")
	}
	return nil
}
