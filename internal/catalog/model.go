package catalog

import "time"

// LifeUnit enumerates supported service-life units.
type LifeUnit string

const (
	// LifeUnitWeek counts service life in weeks.
	LifeUnitWeek LifeUnit = "week"
	// LifeUnitMonth counts service life in calendar months.
	LifeUnitMonth LifeUnit = "month"
	// LifeUnitYear counts service life in calendar years.
	LifeUnitYear LifeUnit = "year"
)

// Valid reports whether the unit is one of the supported values.
func (u LifeUnit) Valid() bool {
	switch u {
	case LifeUnitWeek, LifeUnitMonth, LifeUnitYear:
		return true
	}
	return false
}

// Item represents a stocked item definition.
type Item struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	LifeQty   int       `json:"life_qty"`
	LifeUnit  LifeUnit  `json:"life_unit"`
	Active    bool      `json:"active"`
	CreatedBy string    `json:"created_by"`
	UpdatedBy string    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ItemInfo is the lookup view consumed by the ledger services.
type ItemInfo struct {
	Name     string
	Active   bool
	LifeQty  int
	LifeUnit LifeUnit
}

// ListFilters narrows List results.
type ListFilters struct {
	Search     string
	Category   string
	ActiveOnly bool
	Page       int
	Limit      int
}
