package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/stockroom/stockroom/internal/catalog"
	"github.com/stockroom/stockroom/internal/directory"
	"github.com/stockroom/stockroom/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetBalance(ctx context.Context, itemID string) (Balance, error)
	ListEntries(ctx context.Context, filter EntryFilter) ([]Entry, error)
	GetIssue(ctx context.Context, id string) (IssueRecord, error)
	LatestIssues(ctx context.Context) ([]IssueRecord, error)
}

// CatalogPort validates items and supplies display names and service life.
type CatalogPort interface {
	Lookup(ctx context.Context, itemID string) (catalog.ItemInfo, error)
}

// DirectoryPort validates recipients.
type DirectoryPort interface {
	Lookup(ctx context.Context, recipientID string) (directory.RecipientInfo, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates stock movements and keeps the materialized balance
// consistent with the ledger.
type Service struct {
	repo        RepositoryPort
	catalog     CatalogPort
	directory   DirectoryPort
	audit       AuditPort
	idempotency *shared.IdempotencyStore
	projector   Projector
	allowNeg    bool
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	// AllowNegativeIssue keeps the historical behaviour where an individual
	// issue may drive stock negative. Bulk issues and adjustments always
	// guard regardless of this flag.
	AllowNegativeIssue bool
}

// NewService builds Service.
func NewService(repo RepositoryPort, cat CatalogPort, dir DirectoryPort, audit AuditPort, idem *shared.IdempotencyStore, cfg ServiceConfig) *Service {
	return &Service{
		repo:        repo,
		catalog:     cat,
		directory:   dir,
		audit:       audit,
		idempotency: idem,
		allowNeg:    cfg.AllowNegativeIssue,
	}
}

// Balance returns the current quantity for an item; a missing row reads as zero.
func (s *Service) Balance(ctx context.Context, itemID string) (Balance, error) {
	if itemID == "" {
		return Balance{}, shared.E(shared.CategoryValidation, "item id is required")
	}
	bal, err := s.repo.GetBalance(ctx, itemID)
	if err != nil {
		if errors.Is(err, ErrBalanceNotFound) {
			return Balance{ItemID: itemID}, nil
		}
		return Balance{}, err
	}
	return bal, nil
}

// Entries returns movement history for an item.
func (s *Service) Entries(ctx context.Context, filter EntryFilter) ([]Entry, error) {
	if filter.ItemID == "" {
		return nil, shared.E(shared.CategoryValidation, "item id is required")
	}
	return s.repo.ListEntries(ctx, filter)
}

// Issue returns one issue record.
func (s *Service) Issue(ctx context.Context, id string) (IssueRecord, error) {
	if id == "" {
		return IssueRecord{}, shared.E(shared.CategoryValidation, "issue record id is required")
	}
	return s.repo.GetIssue(ctx, id)
}

// movementParams describes one signed quantity change inside an atomic scope.
type movementParams struct {
	itemID     string
	delta      int64
	kind       MovementKind
	refID      string
	remark     string
	actor      string
	occurredAt time.Time
	guard      bool
	// initialWhenNew records the entry as kind "initial" when it creates
	// the item's first balance row.
	initialWhenNew bool
}

// postMovement is the single primitive behind every balance change: read the
// locked balance, guard, append the ledger entry, replace the balance. The
// adjustment paths reuse it as their compensate operation.
func (s *Service) postMovement(ctx context.Context, tx TxRepository, p movementParams) (Entry, Balance, error) {
	if p.delta == 0 {
		return Entry{}, Balance{}, shared.E(shared.CategoryValidation, "movement quantity must be non zero")
	}
	current, err := s.projector.Read(ctx, tx, p.itemID)
	if err != nil {
		return Entry{}, Balance{}, err
	}
	after := current.Quantity + p.delta
	if p.guard && after < 0 {
		return Entry{}, Balance{}, errInsufficientStock(current.Quantity, -p.delta)
	}

	kind := p.kind
	if p.initialWhenNew && current.LastEntryID == "" {
		kind = KindInitial
	}
	now := time.Now().UTC()
	entry := Entry{
		ID:           uuid.NewString(),
		ItemID:       p.itemID,
		OccurredAt:   p.occurredAt,
		RefID:        p.refID,
		RefKind:      kind,
		Delta:        p.delta,
		ResultingQty: after,
		Remark:       p.remark,
		CreatedBy:    p.actor,
		CreatedAt:    now,
	}
	if err := tx.InsertEntry(ctx, entry); err != nil {
		return Entry{}, Balance{}, err
	}
	bal, err := s.projector.Apply(ctx, tx, p.itemID, p.delta, entry.ID, now)
	if err != nil {
		return Entry{}, Balance{}, err
	}
	return entry, bal, nil
}

func (s *Service) recordAudit(ctx context.Context, actor, action, entity, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Actor:    actor,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Meta:     meta,
	})
}

// lookupActiveItem validates existence and the active flag.
func (s *Service) lookupActiveItem(ctx context.Context, itemID string) (catalog.ItemInfo, error) {
	info, err := s.catalog.Lookup(ctx, itemID)
	if err != nil {
		return catalog.ItemInfo{}, err
	}
	if !info.Active {
		return catalog.ItemInfo{}, shared.E(shared.CategoryInactive, "item %s is inactive", itemID)
	}
	return info, nil
}

// lookupActiveRecipient validates existence and employment state.
func (s *Service) lookupActiveRecipient(ctx context.Context, recipientID string) (directory.RecipientInfo, error) {
	info, err := s.directory.Lookup(ctx, recipientID)
	if err != nil {
		return directory.RecipientInfo{}, err
	}
	if !info.Active {
		return directory.RecipientInfo{}, shared.E(shared.CategoryInactive, "recipient %s is not in active employment", recipientID)
	}
	return info, nil
}
