package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stockroom/stockroom/internal/shared"
)

// BulkIssueInput describes an issue against a department or project.
type BulkIssueInput struct {
	Department     string
	Location       string
	ItemID         string
	RecipientID    string
	IssuedOn       time.Time
	Quantity       int64
	Remark         string
	Actor          string
	IdempotencyKey string
}

// PostBulkIssue issues stock against a department or project. Unlike the
// individual path it always refuses to drive the balance negative.
func (s *Service) PostBulkIssue(ctx context.Context, input BulkIssueInput) (BulkIssueRecord, error) {
	if input.Department == "" {
		return BulkIssueRecord{}, shared.E(shared.CategoryValidation, "department or project is required")
	}
	if err := validateIssueInput(input.RecipientID, input.ItemID, input.IssuedOn, input.Quantity, input.Actor); err != nil {
		return BulkIssueRecord{}, err
	}
	item, err := s.lookupActiveItem(ctx, input.ItemID)
	if err != nil {
		return BulkIssueRecord{}, err
	}
	if _, err := s.lookupActiveRecipient(ctx, input.RecipientID); err != nil {
		return BulkIssueRecord{}, err
	}

	insertedKey, err := s.checkIdempotency(ctx, input.IdempotencyKey)
	if err != nil {
		return BulkIssueRecord{}, err
	}

	record := BulkIssueRecord{
		ID:          uuid.NewString(),
		Department:  input.Department,
		Location:    input.Location,
		ItemID:      input.ItemID,
		ItemName:    item.Name,
		RecipientID: input.RecipientID,
		IssuedOn:    input.IssuedOn,
		Quantity:    input.Quantity,
		Remark:      input.Remark,
		IssuedBy:    input.Actor,
		CreatedAt:   time.Now().UTC(),
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		_, _, err := s.postMovement(ctx, tx, movementParams{
			itemID:     input.ItemID,
			delta:      -input.Quantity,
			kind:       KindBulkIssue,
			refID:      record.ID,
			remark:     input.Remark,
			actor:      input.Actor,
			occurredAt: input.IssuedOn,
			guard:      true,
		})
		if err != nil {
			return err
		}
		return tx.InsertBulkIssue(ctx, record)
	})
	if err != nil {
		s.rollbackIdempotency(ctx, input.IdempotencyKey, insertedKey)
		return BulkIssueRecord{}, err
	}

	s.recordAudit(ctx, input.Actor, "ledger:bulk_issue", "bulk_issue_record", record.ID, map[string]any{
		"item_id":    input.ItemID,
		"department": input.Department,
		"quantity":   input.Quantity,
	})
	return record, nil
}
