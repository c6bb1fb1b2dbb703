package ledger

import (
	"context"
	"time"

	"github.com/stockroom/stockroom/internal/shared"
)

// EditIssueInput describes a retroactive change to an issue record. The
// record keeps its identity; item, quantity, date, flags and remark may all
// change.
type EditIssueInput struct {
	RecordID   string
	ItemID     string
	Quantity   int64
	IssuedOn   time.Time
	FirstIssue bool
	AgainstDue bool
	Remark     string
	Actor      string
}

// EditIssue mutates a previously recorded issue, writing the compensating
// ledger entries needed to keep every touched balance equal to the sum of
// its entries. History is never rewritten; corrections are new entries.
func (s *Service) EditIssue(ctx context.Context, input EditIssueInput) (IssueRecord, error) {
	if input.RecordID == "" {
		return IssueRecord{}, shared.E(shared.CategoryValidation, "issue record id is required")
	}
	if input.ItemID == "" {
		return IssueRecord{}, shared.E(shared.CategoryValidation, "item id is required")
	}
	if input.Quantity <= 0 {
		return IssueRecord{}, shared.E(shared.CategoryValidation, "quantity must be positive")
	}
	if input.Actor == "" {
		return IssueRecord{}, shared.E(shared.CategoryValidation, "actor identity is required")
	}

	newItem, err := s.lookupActiveItem(ctx, input.ItemID)
	if err != nil {
		return IssueRecord{}, err
	}

	var updated IssueRecord
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		record, err := tx.GetIssueForUpdate(ctx, input.RecordID)
		if err != nil {
			return err
		}
		if input.IssuedOn.IsZero() {
			input.IssuedOn = record.IssuedOn
		}

		if record.ItemID == input.ItemID {
			if err := s.adjustSameItem(ctx, tx, record, input); err != nil {
				return err
			}
		} else {
			if err := s.adjustItemChange(ctx, tx, record, input); err != nil {
				return err
			}
		}

		updated = record
		updated.ItemID = input.ItemID
		updated.ItemName = newItem.Name
		updated.Quantity = input.Quantity
		updated.IssuedOn = input.IssuedOn
		updated.FirstIssue = input.FirstIssue
		updated.AgainstDue = input.AgainstDue
		updated.Remark = input.Remark
		updated.UpdatedAt = time.Now().UTC()
		return tx.UpdateIssue(ctx, updated)
	})
	if err != nil {
		return IssueRecord{}, err
	}

	s.recordAudit(ctx, input.Actor, "ledger:edit_issue", "issue_record", input.RecordID, map[string]any{
		"item_id":  input.ItemID,
		"quantity": input.Quantity,
	})
	return updated, nil
}

// adjustSameItem writes at most one compensating entry cancelling the
// difference between the old and new quantity.
func (s *Service) adjustSameItem(ctx context.Context, tx TxRepository, record IssueRecord, input EditIssueInput) error {
	delta := input.Quantity - record.Quantity
	if delta == 0 {
		return nil
	}
	_, _, err := s.postMovement(ctx, tx, movementParams{
		itemID:     record.ItemID,
		delta:      -delta,
		kind:       KindIssue,
		refID:      record.ID,
		remark:     "adjustment",
		actor:      input.Actor,
		occurredAt: record.IssuedOn,
		guard:      true,
	})
	return err
}

// adjustItemChange treats the edit as delete-from-old-item plus
// create-on-new-item inside the same atomic scope. The old and new balances
// are independent rows, so the guard on the new item checks its current
// balance directly; if it fails the old item's revert rolls back with the
// rest of the scope.
func (s *Service) adjustItemChange(ctx context.Context, tx TxRepository, record IssueRecord, input EditIssueInput) error {
	_, _, err := s.postMovement(ctx, tx, movementParams{
		itemID:     record.ItemID,
		delta:      record.Quantity,
		kind:       KindAdjustment,
		refID:      record.ID,
		remark:     "revert on item change",
		actor:      input.Actor,
		occurredAt: record.IssuedOn,
	})
	if err != nil {
		return err
	}
	_, _, err = s.postMovement(ctx, tx, movementParams{
		itemID:     input.ItemID,
		delta:      -input.Quantity,
		kind:       KindAdjustment,
		refID:      record.ID,
		remark:     "apply on item change",
		actor:      input.Actor,
		occurredAt: input.IssuedOn,
		guard:      true,
	})
	return err
}

// DeleteIssue removes an issue record after writing the compensating entry
// that reverts its effect on the balance. All writes share one atomic scope.
func (s *Service) DeleteIssue(ctx context.Context, recordID, actor string) error {
	if recordID == "" {
		return shared.E(shared.CategoryValidation, "issue record id is required")
	}
	if actor == "" {
		return shared.E(shared.CategoryValidation, "actor identity is required")
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		record, err := tx.GetIssueForUpdate(ctx, recordID)
		if err != nil {
			return err
		}
		_, _, err = s.postMovement(ctx, tx, movementParams{
			itemID:     record.ItemID,
			delta:      record.Quantity,
			kind:       KindIssue,
			refID:      record.ID,
			remark:     "revert on delete",
			actor:      actor,
			occurredAt: record.IssuedOn,
		})
		if err != nil {
			return err
		}
		return tx.DeleteIssue(ctx, recordID)
	})
	if err != nil {
		return err
	}

	s.recordAudit(ctx, actor, "ledger:delete_issue", "issue_record", recordID, nil)
	return nil
}
