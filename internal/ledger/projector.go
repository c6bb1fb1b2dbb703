package ledger

import (
	"context"
	"errors"
	"time"
)

// Projector maintains the materialized balance for each item. It is the sole
// writer of stock_balances; services never touch the balance rows directly.
type Projector struct{}

// Read returns the current balance inside an atomic scope, holding the row
// lock until commit. A missing row is treated as zero stock.
func (Projector) Read(ctx context.Context, tx TxRepository, itemID string) (Balance, error) {
	bal, err := tx.GetBalanceForUpdate(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrBalanceNotFound) {
			return Balance{ItemID: itemID}, nil
		}
		return Balance{}, err
	}
	return bal, nil
}

// Apply adds delta to the item's balance and replaces the balance row,
// recording the entry that produced the new value. Must only be called
// inside an active atomic scope.
func (Projector) Apply(ctx context.Context, tx TxRepository, itemID string, delta int64, causingEntryID string, now time.Time) (Balance, error) {
	bal, err := tx.GetBalanceForUpdate(ctx, itemID)
	if err != nil && !errors.Is(err, ErrBalanceNotFound) {
		return Balance{}, err
	}
	bal.ItemID = itemID
	bal.Quantity += delta
	bal.LastEntryID = causingEntryID
	bal.UpdatedAt = now
	if err := tx.UpsertBalance(ctx, bal); err != nil {
		return Balance{}, err
	}
	return bal, nil
}
