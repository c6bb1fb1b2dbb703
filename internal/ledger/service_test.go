package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stockroom/stockroom/internal/catalog"
	"github.com/stockroom/stockroom/internal/directory"
	"github.com/stockroom/stockroom/internal/shared"
)

type memoryState struct {
	balances map[string]Balance
	entries  []Entry
	issues   map[string]IssueRecord
	bulks    map[string]BulkIssueRecord
	receipts map[string]ReceiptRecord
}

func (s *memoryState) clone() *memoryState {
	out := &memoryState{
		balances: make(map[string]Balance, len(s.balances)),
		entries:  append([]Entry(nil), s.entries...),
		issues:   make(map[string]IssueRecord, len(s.issues)),
		bulks:    make(map[string]BulkIssueRecord, len(s.bulks)),
		receipts: make(map[string]ReceiptRecord, len(s.receipts)),
	}
	for k, v := range s.balances {
		out.balances[k] = v
	}
	for k, v := range s.issues {
		out.issues[k] = v
	}
	for k, v := range s.bulks {
		out.bulks[k] = v
	}
	for k, v := range s.receipts {
		out.receipts[k] = v
	}
	return out
}

// memoryRepo mimics the atomic scope: a failing callback restores the
// pre-transaction snapshot so nothing is persisted.
type memoryRepo struct {
	state *memoryState
}

type memoryTx struct {
	state *memoryState
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{state: &memoryState{
		balances: make(map[string]Balance),
		issues:   make(map[string]IssueRecord),
		bulks:    make(map[string]BulkIssueRecord),
		receipts: make(map[string]ReceiptRecord),
	}}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := r.state.clone()
	if err := fn(ctx, &memoryTx{state: r.state}); err != nil {
		r.state = snapshot
		return err
	}
	return nil
}

func (r *memoryRepo) GetBalance(ctx context.Context, itemID string) (Balance, error) {
	if bal, ok := r.state.balances[itemID]; ok {
		return bal, nil
	}
	return Balance{ItemID: itemID}, ErrBalanceNotFound
}

func (r *memoryRepo) ListEntries(ctx context.Context, filter EntryFilter) ([]Entry, error) {
	out := []Entry{}
	for _, e := range r.state.entries {
		if filter.ItemID != "" && e.ItemID != filter.ItemID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *memoryRepo) GetIssue(ctx context.Context, id string) (IssueRecord, error) {
	if rec, ok := r.state.issues[id]; ok {
		return rec, nil
	}
	return IssueRecord{}, shared.E(shared.CategoryNotFound, "issue record %s not found", id)
}

func (r *memoryRepo) LatestIssues(ctx context.Context) ([]IssueRecord, error) {
	latest := map[string]IssueRecord{}
	for _, rec := range r.state.issues {
		key := rec.RecipientID + ":" + rec.ItemID
		prev, ok := latest[key]
		if !ok || rec.IssuedOn.After(prev.IssuedOn) {
			latest[key] = rec
		}
	}
	out := []IssueRecord{}
	for _, rec := range latest {
		out = append(out, rec)
	}
	return out, nil
}

func (tx *memoryTx) InsertEntry(ctx context.Context, entry Entry) error {
	tx.state.entries = append(tx.state.entries, entry)
	return nil
}

func (tx *memoryTx) GetBalanceForUpdate(ctx context.Context, itemID string) (Balance, error) {
	if bal, ok := tx.state.balances[itemID]; ok {
		return bal, nil
	}
	return Balance{ItemID: itemID}, ErrBalanceNotFound
}

func (tx *memoryTx) UpsertBalance(ctx context.Context, balance Balance) error {
	tx.state.balances[balance.ItemID] = balance
	return nil
}

func (tx *memoryTx) InsertIssue(ctx context.Context, rec IssueRecord) error {
	tx.state.issues[rec.ID] = rec
	return nil
}

func (tx *memoryTx) GetIssueForUpdate(ctx context.Context, id string) (IssueRecord, error) {
	if rec, ok := tx.state.issues[id]; ok {
		return rec, nil
	}
	return IssueRecord{}, shared.E(shared.CategoryNotFound, "issue record %s not found", id)
}

func (tx *memoryTx) UpdateIssue(ctx context.Context, rec IssueRecord) error {
	if _, ok := tx.state.issues[rec.ID]; !ok {
		return shared.E(shared.CategoryNotFound, "issue record %s not found", rec.ID)
	}
	tx.state.issues[rec.ID] = rec
	return nil
}

func (tx *memoryTx) DeleteIssue(ctx context.Context, id string) error {
	if _, ok := tx.state.issues[id]; !ok {
		return shared.E(shared.CategoryNotFound, "issue record %s not found", id)
	}
	delete(tx.state.issues, id)
	return nil
}

func (tx *memoryTx) InsertBulkIssue(ctx context.Context, rec BulkIssueRecord) error {
	tx.state.bulks[rec.ID] = rec
	return nil
}

func (tx *memoryTx) InsertReceipt(ctx context.Context, rec ReceiptRecord) error {
	tx.state.receipts[rec.ID] = rec
	return nil
}

type stubCatalog map[string]catalog.ItemInfo

func (s stubCatalog) Lookup(ctx context.Context, itemID string) (catalog.ItemInfo, error) {
	if info, ok := s[itemID]; ok {
		return info, nil
	}
	return catalog.ItemInfo{}, shared.E(shared.CategoryNotFound, "item %s not found", itemID)
}

type stubDirectory map[string]directory.RecipientInfo

func (s stubDirectory) Lookup(ctx context.Context, recipientID string) (directory.RecipientInfo, error) {
	if info, ok := s[recipientID]; ok {
		return info, nil
	}
	return directory.RecipientInfo{}, shared.E(shared.CategoryNotFound, "recipient %s not found", recipientID)
}

func defaultCatalog() stubCatalog {
	return stubCatalog{
		"helmet": {Name: "Safety Helmet", Active: true, LifeQty: 6, LifeUnit: catalog.LifeUnitMonth},
		"boots":  {Name: "Safety Boots", Active: true, LifeQty: 1, LifeUnit: catalog.LifeUnitYear},
		"gloves": {Name: "Work Gloves", Active: false, LifeQty: 2, LifeUnit: catalog.LifeUnitWeek},
	}
}

func defaultDirectory() stubDirectory {
	return stubDirectory{
		"emp-1": {Name: "Asha Varma", Active: true},
		"emp-2": {Name: "Jonas Berg", Active: false},
	}
}

func newTestService(t *testing.T, cfg ServiceConfig) (*Service, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	svc := NewService(repo, defaultCatalog(), defaultDirectory(), nil, nil, cfg)
	return svc, repo
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func requireInvariant(t *testing.T, repo *memoryRepo, itemID string) {
	t.Helper()
	var sum int64
	for _, e := range repo.state.entries {
		if e.ItemID == itemID {
			sum += e.Delta
		}
	}
	bal := repo.state.balances[itemID]
	require.Equal(t, sum, bal.Quantity, "balance must equal the sum of ledger deltas for %s", itemID)
}

func TestReceiptThenIssueRoundTrip(t *testing.T) {
	svc, repo := newTestService(t, ServiceConfig{AllowNegativeIssue: true})
	ctx := context.Background()

	_, err := svc.PostReceipt(ctx, ReceiptInput{ItemID: "helmet", ReceivedOn: date(2025, 3, 1), Quantity: 10, Actor: "store-keeper"})
	require.NoError(t, err)

	_, err = svc.PostIssue(ctx, IssueInput{RecipientID: "emp-1", ItemID: "helmet", IssuedOn: date(2025, 3, 2), Quantity: 4, Actor: "store-keeper"})
	require.NoError(t, err)

	bal, err := svc.Balance(ctx, "helmet")
	require.NoError(t, err)
	require.Equal(t, int64(6), bal.Quantity)

	entries, err := svc.Entries(ctx, EntryFilter{ItemID: "helmet"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, int64(10), entries[0].Delta)
	require.Equal(t, KindInitial, entries[0].RefKind)
	require.Equal(t, int64(10), entries[0].ResultingQty)
	require.Equal(t, int64(-4), entries[1].Delta)
	require.Equal(t, KindIssue, entries[1].RefKind)
	require.Equal(t, int64(6), entries[1].ResultingQty)

	requireInvariant(t, repo, "helmet")
}

func TestSecondReceiptIsNotInitial(t *testing.T) {
	svc, _ := newTestService(t, ServiceConfig{AllowNegativeIssue: true})
	ctx := context.Background()

	_, err := svc.PostReceipt(ctx, ReceiptInput{ItemID: "helmet", ReceivedOn: date(2025, 3, 1), Quantity: 5, Actor: "store-keeper"})
	require.NoError(t, err)
	_, err = svc.PostReceipt(ctx, ReceiptInput{ItemID: "helmet", ReceivedOn: date(2025, 3, 8), Quantity: 5, Actor: "store-keeper"})
	require.NoError(t, err)

	entries, err := svc.Entries(ctx, EntryFilter{ItemID: "helmet"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, KindInitial, entries[0].RefKind)
	require.Equal(t, KindReceipt, entries[1].RefKind)
}

func TestIssueMayRunNegativeByDefault(t *testing.T) {
	svc, repo := newTestService(t, ServiceConfig{AllowNegativeIssue: true})
	ctx := context.Background()

	record, err := svc.PostIssue(ctx, IssueInput{RecipientID: "emp-1", ItemID: "helmet", IssuedOn: date(2025, 3, 2), Quantity: 4, Actor: "store-keeper"})
	require.NoError(t, err)
	require.Equal(t, "Asha Varma", record.RecipientName)

	bal, err := svc.Balance(ctx, "helmet")
	require.NoError(t, err)
	require.Equal(t, int64(-4), bal.Quantity)
	requireInvariant(t, repo, "helmet")
}

func TestIssueGuardWhenConfigured(t *testing.T) {
	svc, repo := newTestService(t, ServiceConfig{AllowNegativeIssue: false})
	ctx := context.Background()

	_, err := svc.PostIssue(ctx, IssueInput{RecipientID: "emp-1", ItemID: "helmet", IssuedOn: date(2025, 3, 2), Quantity: 4, Actor: "store-keeper"})
	require.Error(t, err)
	require.Equal(t, shared.CategoryInsufficientStock, shared.CategoryOf(err))
	require.Empty(t, repo.state.entries)
	require.Empty(t, repo.state.issues)
}

func TestBulkIssueInsufficientStockAborts(t *testing.T) {
	svc, repo := newTestService(t, ServiceConfig{AllowNegativeIssue: true})
	ctx := context.Background()

	_, err := svc.PostReceipt(ctx, ReceiptInput{ItemID: "helmet", ReceivedOn: date(2025, 3, 1), Quantity: 5, Actor: "store-keeper"})
	require.NoError(t, err)

	_, err = svc.PostBulkIssue(ctx, BulkIssueInput{
		Department:  "Maintenance",
		Location:    "Plant 2",
		ItemID:      "helmet",
		RecipientID: "emp-1",
		IssuedOn:    date(2025, 3, 2),
		Quantity:    7,
		Actor:       "store-keeper",
	})
	require.Error(t, err)
	require.Equal(t, shared.CategoryInsufficientStock, shared.CategoryOf(err))
	require.EqualError(t, err, "Insufficient stock. Available: 5, Requested: 7")

	bal, err := svc.Balance(ctx, "helmet")
	require.NoError(t, err)
	require.Equal(t, int64(5), bal.Quantity)
	require.Len(t, repo.state.entries, 1)
	require.Empty(t, repo.state.bulks)
	requireInvariant(t, repo, "helmet")
}

func TestBulkIssueDecrementsBalance(t *testing.T) {
	svc, repo := newTestService(t, ServiceConfig{AllowNegativeIssue: true})
	ctx := context.Background()

	_, err := svc.PostReceipt(ctx, ReceiptInput{ItemID: "helmet", ReceivedOn: date(2025, 3, 1), Quantity: 10, Actor: "store-keeper"})
	require.NoError(t, err)

	record, err := svc.PostBulkIssue(ctx, BulkIssueInput{
		Department:  "Maintenance",
		ItemID:      "helmet",
		RecipientID: "emp-1",
		IssuedOn:    date(2025, 3, 2),
		Quantity:    7,
		Actor:       "store-keeper",
	})
	require.NoError(t, err)
	require.Equal(t, "Safety Helmet", record.ItemName)

	bal, err := svc.Balance(ctx, "helmet")
	require.NoError(t, err)
	require.Equal(t, int64(3), bal.Quantity)

	entries, err := svc.Entries(ctx, EntryFilter{ItemID: "helmet"})
	require.NoError(t, err)
	require.Equal(t, KindBulkIssue, entries[1].RefKind)
	requireInvariant(t, repo, "helmet")
}

func TestInactiveItemAndRecipientRejected(t *testing.T) {
	svc, _ := newTestService(t, ServiceConfig{AllowNegativeIssue: true})
	ctx := context.Background()

	_, err := svc.PostIssue(ctx, IssueInput{RecipientID: "emp-1", ItemID: "gloves", IssuedOn: date(2025, 3, 2), Quantity: 1, Actor: "store-keeper"})
	require.Equal(t, shared.CategoryInactive, shared.CategoryOf(err))

	_, err = svc.PostIssue(ctx, IssueInput{RecipientID: "emp-2", ItemID: "helmet", IssuedOn: date(2025, 3, 2), Quantity: 1, Actor: "store-keeper"})
	require.Equal(t, shared.CategoryInactive, shared.CategoryOf(err))

	_, err = svc.PostIssue(ctx, IssueInput{RecipientID: "emp-1", ItemID: "missing", IssuedOn: date(2025, 3, 2), Quantity: 1, Actor: "store-keeper"})
	require.Equal(t, shared.CategoryNotFound, shared.CategoryOf(err))
}

func TestValidationRejectedBeforeStoreAccess(t *testing.T) {
	svc, repo := newTestService(t, ServiceConfig{AllowNegativeIssue: true})
	ctx := context.Background()

	_, err := svc.PostIssue(ctx, IssueInput{RecipientID: "emp-1", ItemID: "helmet", IssuedOn: date(2025, 3, 2), Quantity: 0, Actor: "store-keeper"})
	require.Equal(t, shared.CategoryValidation, shared.CategoryOf(err))

	_, err = svc.PostIssue(ctx, IssueInput{RecipientID: "emp-1", ItemID: "helmet", IssuedOn: date(2025, 3, 2), Quantity: 1, Actor: ""})
	require.Equal(t, shared.CategoryValidation, shared.CategoryOf(err))

	require.Empty(t, repo.state.entries)
}

func TestBalanceInvariantAcrossMovements(t *testing.T) {
	svc, repo := newTestService(t, ServiceConfig{AllowNegativeIssue: true})
	ctx := context.Background()

	_, err := svc.PostReceipt(ctx, ReceiptInput{ItemID: "boots", ReceivedOn: date(2025, 1, 1), Quantity: 20, Actor: "store-keeper"})
	require.NoError(t, err)
	_, err = svc.PostIssue(ctx, IssueInput{RecipientID: "emp-1", ItemID: "boots", IssuedOn: date(2025, 1, 2), Quantity: 3, Actor: "store-keeper"})
	require.NoError(t, err)
	_, err = svc.PostBulkIssue(ctx, BulkIssueInput{Department: "Stores", ItemID: "boots", RecipientID: "emp-1", IssuedOn: date(2025, 1, 3), Quantity: 5, Actor: "store-keeper"})
	require.NoError(t, err)
	_, err = svc.PostReceipt(ctx, ReceiptInput{ItemID: "boots", ReceivedOn: date(2025, 1, 4), Quantity: 2, Actor: "store-keeper"})
	require.NoError(t, err)

	bal, err := svc.Balance(ctx, "boots")
	require.NoError(t, err)
	require.Equal(t, int64(14), bal.Quantity)
	requireInvariant(t, repo, "boots")
}
