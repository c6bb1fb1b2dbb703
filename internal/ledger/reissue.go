package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stockroom/stockroom/internal/catalog"
)

// DueEntry reports one (recipient, item) pair whose last issue has exceeded
// the item's service life.
type DueEntry struct {
	RecipientID   string    `json:"recipient_id"`
	RecipientName string    `json:"recipient_name"`
	ItemID        string    `json:"item_id"`
	ItemName      string    `json:"item_name"`
	IssuedOn      time.Time `json:"issued_on"`
	DueOn         time.Time `json:"due_on"`
	DaysOverdue   int       `json:"days_overdue"`
}

// Calculator derives the due-for-reissue report. Pure read; no atomic scope.
type Calculator struct {
	repo    RepositoryPort
	catalog CatalogPort
}

// NewCalculator builds Calculator.
func NewCalculator(repo RepositoryPort, cat CatalogPort) *Calculator {
	return &Calculator{repo: repo, catalog: cat}
}

// DueForReissue lists pairs at least thresholdDays overdue as of asOf,
// sorted most-overdue first. Only the latest issue per (recipient, item)
// pair counts.
func (c *Calculator) DueForReissue(ctx context.Context, asOf time.Time, thresholdDays int) ([]DueEntry, error) {
	issues, err := c.repo.LatestIssues(ctx)
	if err != nil {
		return nil, err
	}

	itemIDs := map[string]struct{}{}
	for _, issue := range issues {
		itemIDs[issue.ItemID] = struct{}{}
	}

	infos := make(map[string]catalog.ItemInfo, len(itemIDs))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for itemID := range itemIDs {
		itemID := itemID
		g.Go(func() error {
			info, err := c.catalog.Lookup(gctx, itemID)
			if err != nil {
				return err
			}
			mu.Lock()
			infos[itemID] = info
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	due := []DueEntry{}
	for _, issue := range issues {
		info, ok := infos[issue.ItemID]
		if !ok || info.LifeQty <= 0 || !info.LifeUnit.Valid() {
			continue
		}
		dueOn := addServiceLife(issue.IssuedOn, info.LifeQty, info.LifeUnit)
		overdue := daysBetween(dueOn, asOf)
		if overdue < thresholdDays {
			continue
		}
		due = append(due, DueEntry{
			RecipientID:   issue.RecipientID,
			RecipientName: issue.RecipientName,
			ItemID:        issue.ItemID,
			ItemName:      issue.ItemName,
			IssuedOn:      issue.IssuedOn,
			DueOn:         dueOn,
			DaysOverdue:   overdue,
		})
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].DaysOverdue > due[j].DaysOverdue
	})
	return due, nil
}

// addServiceLife advances a date by the item's service life: weeks count as
// seven days, months and years follow the calendar.
func addServiceLife(issued time.Time, qty int, unit catalog.LifeUnit) time.Time {
	switch unit {
	case catalog.LifeUnitWeek:
		return issued.AddDate(0, 0, 7*qty)
	case catalog.LifeUnitMonth:
		return issued.AddDate(0, qty, 0)
	case catalog.LifeUnitYear:
		return issued.AddDate(qty, 0, 0)
	}
	return issued
}

// daysBetween counts whole calendar days in UTC. Negative when from is
// still in the future, so a time-of-day on asOf never rounds an upcoming
// due date into today.
func daysBetween(from, to time.Time) int {
	return int(truncateDay(to).Sub(truncateDay(from)).Hours() / 24)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
