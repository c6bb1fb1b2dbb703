package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stockroom/stockroom/internal/shared"
)

// IssueInput describes an individual issue to one recipient.
type IssueInput struct {
	RecipientID    string
	ItemID         string
	IssuedOn       time.Time
	Quantity       int64
	FirstIssue     bool
	AgainstDue     bool
	Remark         string
	Actor          string
	IdempotencyKey string
}

// PostIssue issues stock to an individual recipient. The baseline path may
// drive the balance negative; ServiceConfig.AllowNegativeIssue=false turns
// on the same guard used by bulk issues.
func (s *Service) PostIssue(ctx context.Context, input IssueInput) (IssueRecord, error) {
	if err := validateIssueInput(input.RecipientID, input.ItemID, input.IssuedOn, input.Quantity, input.Actor); err != nil {
		return IssueRecord{}, err
	}
	item, err := s.lookupActiveItem(ctx, input.ItemID)
	if err != nil {
		return IssueRecord{}, err
	}
	recipient, err := s.lookupActiveRecipient(ctx, input.RecipientID)
	if err != nil {
		return IssueRecord{}, err
	}

	insertedKey, err := s.checkIdempotency(ctx, input.IdempotencyKey)
	if err != nil {
		return IssueRecord{}, err
	}

	now := time.Now().UTC()
	record := IssueRecord{
		ID:            uuid.NewString(),
		RecipientID:   input.RecipientID,
		RecipientName: recipient.Name,
		ItemID:        input.ItemID,
		ItemName:      item.Name,
		IssuedOn:      input.IssuedOn,
		Quantity:      input.Quantity,
		FirstIssue:    input.FirstIssue,
		AgainstDue:    input.AgainstDue,
		Remark:        input.Remark,
		IssuedBy:      input.Actor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		_, _, err := s.postMovement(ctx, tx, movementParams{
			itemID:     input.ItemID,
			delta:      -input.Quantity,
			kind:       KindIssue,
			refID:      record.ID,
			remark:     input.Remark,
			actor:      input.Actor,
			occurredAt: input.IssuedOn,
			guard:      !s.allowNeg,
		})
		if err != nil {
			return err
		}
		return tx.InsertIssue(ctx, record)
	})
	if err != nil {
		s.rollbackIdempotency(ctx, input.IdempotencyKey, insertedKey)
		return IssueRecord{}, err
	}

	s.recordAudit(ctx, input.Actor, "ledger:issue", "issue_record", record.ID, map[string]any{
		"item_id":      input.ItemID,
		"recipient_id": input.RecipientID,
		"quantity":     input.Quantity,
	})
	return record, nil
}

func validateIssueInput(recipientID, itemID string, issuedOn time.Time, quantity int64, actor string) error {
	if recipientID == "" {
		return shared.E(shared.CategoryValidation, "recipient id is required")
	}
	if itemID == "" {
		return shared.E(shared.CategoryValidation, "item id is required")
	}
	if issuedOn.IsZero() {
		return shared.E(shared.CategoryValidation, "issue date is required")
	}
	if quantity <= 0 {
		return shared.E(shared.CategoryValidation, "quantity must be positive")
	}
	if actor == "" {
		return shared.E(shared.CategoryValidation, "actor identity is required")
	}
	return nil
}

func (s *Service) checkIdempotency(ctx context.Context, key string) (bool, error) {
	if s.idempotency == nil || key == "" {
		return false, nil
	}
	if err := s.idempotency.CheckAndInsert(ctx, key, "ledger"); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) rollbackIdempotency(ctx context.Context, key string, inserted bool) {
	if inserted {
		_ = s.idempotency.Delete(ctx, key)
	}
}
