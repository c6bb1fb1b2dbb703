package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stockroom/stockroom/internal/shared"
)

// ReceiptInput describes incoming stock for an item.
type ReceiptInput struct {
	ItemID         string
	ReceivedOn     time.Time
	Quantity       int64
	Remark         string
	Actor          string
	IdempotencyKey string
}

// PostReceipt records incoming stock. The first receipt for an item creates
// its balance row and is recorded with kind "initial".
func (s *Service) PostReceipt(ctx context.Context, input ReceiptInput) (ReceiptRecord, error) {
	if input.ItemID == "" {
		return ReceiptRecord{}, shared.E(shared.CategoryValidation, "item id is required")
	}
	if input.ReceivedOn.IsZero() {
		return ReceiptRecord{}, shared.E(shared.CategoryValidation, "receipt date is required")
	}
	if input.Quantity <= 0 {
		return ReceiptRecord{}, shared.E(shared.CategoryValidation, "quantity must be positive")
	}
	if input.Actor == "" {
		return ReceiptRecord{}, shared.E(shared.CategoryValidation, "actor identity is required")
	}
	item, err := s.lookupActiveItem(ctx, input.ItemID)
	if err != nil {
		return ReceiptRecord{}, err
	}

	insertedKey, err := s.checkIdempotency(ctx, input.IdempotencyKey)
	if err != nil {
		return ReceiptRecord{}, err
	}

	record := ReceiptRecord{
		ID:         uuid.NewString(),
		ItemID:     input.ItemID,
		ItemName:   item.Name,
		ReceivedOn: input.ReceivedOn,
		Quantity:   input.Quantity,
		Remark:     input.Remark,
		ReceivedBy: input.Actor,
		CreatedAt:  time.Now().UTC(),
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		_, _, err := s.postMovement(ctx, tx, movementParams{
			itemID:         input.ItemID,
			delta:          input.Quantity,
			kind:           KindReceipt,
			refID:          record.ID,
			remark:         input.Remark,
			actor:          input.Actor,
			occurredAt:     input.ReceivedOn,
			initialWhenNew: true,
		})
		if err != nil {
			return err
		}
		return tx.InsertReceipt(ctx, record)
	})
	if err != nil {
		s.rollbackIdempotency(ctx, input.IdempotencyKey, insertedKey)
		return ReceiptRecord{}, err
	}

	s.recordAudit(ctx, input.Actor, "ledger:receipt", "receipt_record", record.ID, map[string]any{
		"item_id":  input.ItemID,
		"quantity": input.Quantity,
	})
	return record, nil
}
