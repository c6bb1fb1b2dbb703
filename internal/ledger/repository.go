package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom/stockroom/internal/platform/db"
	"github.com/stockroom/stockroom/internal/shared"
)

// Repository persists ledger data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations available inside an atomic scope.
type TxRepository interface {
	InsertEntry(ctx context.Context, entry Entry) error
	GetBalanceForUpdate(ctx context.Context, itemID string) (Balance, error)
	UpsertBalance(ctx context.Context, balance Balance) error
	InsertIssue(ctx context.Context, rec IssueRecord) error
	GetIssueForUpdate(ctx context.Context, id string) (IssueRecord, error)
	UpdateIssue(ctx context.Context, rec IssueRecord) error
	DeleteIssue(ctx context.Context, id string) error
	InsertBulkIssue(ctx context.Context, rec BulkIssueRecord) error
	InsertReceipt(ctx context.Context, rec ReceiptRecord) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction. Either
// every write in the callback commits or none are persisted.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("ledger repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// GetBalance reads the materialized balance outside a transaction scope.
func (r *Repository) GetBalance(ctx context.Context, itemID string) (Balance, error) {
	var bal Balance
	err := r.pool.QueryRow(ctx, `SELECT item_id, quantity, last_entry_id, updated_at FROM stock_balances WHERE item_id=$1`, itemID).
		Scan(&bal.ItemID, &bal.Quantity, &bal.LastEntryID, &bal.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Balance{ItemID: itemID}, ErrBalanceNotFound
		}
		return Balance{}, err
	}
	return bal, nil
}

// ListEntries returns movement history for an item, oldest first.
func (r *Repository) ListEntries(ctx context.Context, filter EntryFilter) ([]Entry, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `SELECT id, item_id, occurred_at, ref_id, ref_kind, delta, resulting_qty, remark, created_by, created_at
FROM stock_ledger
WHERE item_id=$1 AND occurred_at >= COALESCE($2::timestamptz, '-infinity'::timestamptz) AND occurred_at <= COALESCE($3::timestamptz, 'infinity'::timestamptz)
ORDER BY occurred_at ASC, created_at ASC
LIMIT $4`, filter.ItemID, nullTime(filter.From), nullTime(filter.To), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ItemID, &e.OccurredAt, &e.RefID, &e.RefKind, &e.Delta, &e.ResultingQty, &e.Remark, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetIssue reads one issue record.
func (r *Repository) GetIssue(ctx context.Context, id string) (IssueRecord, error) {
	return scanIssue(r.pool.QueryRow(ctx, issueSelect+` WHERE id=$1`, id), id)
}

// LatestIssues returns, for every (recipient, item) pair, the most recent
// issue record by issue date.
func (r *Repository) LatestIssues(ctx context.Context) ([]IssueRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT ON (recipient_id, item_id)
id, recipient_id, recipient_name, item_id, item_name, issued_on, quantity, first_issue, against_due, remark, issued_by, created_at, updated_at
FROM issue_records
ORDER BY recipient_id, item_id, issued_on DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := []IssueRecord{}
	for rows.Next() {
		var rec IssueRecord
		if err := rows.Scan(&rec.ID, &rec.RecipientID, &rec.RecipientName, &rec.ItemID, &rec.ItemName, &rec.IssuedOn, &rec.Quantity, &rec.FirstIssue, &rec.AgainstDue, &rec.Remark, &rec.IssuedBy, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

const issueSelect = `SELECT id, recipient_id, recipient_name, item_id, item_name, issued_on, quantity, first_issue, against_due, remark, issued_by, created_at, updated_at FROM issue_records`

func scanIssue(row pgx.Row, id string) (IssueRecord, error) {
	var rec IssueRecord
	err := row.Scan(&rec.ID, &rec.RecipientID, &rec.RecipientName, &rec.ItemID, &rec.ItemName, &rec.IssuedOn, &rec.Quantity, &rec.FirstIssue, &rec.AgainstDue, &rec.Remark, &rec.IssuedBy, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return IssueRecord{}, shared.E(shared.CategoryNotFound, "issue record %s not found", id)
		}
		return IssueRecord{}, err
	}
	return rec, nil
}

func (r *txRepository) InsertEntry(ctx context.Context, entry Entry) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO stock_ledger (id, item_id, occurred_at, ref_id, ref_kind, delta, resulting_qty, remark, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		entry.ID, entry.ItemID, entry.OccurredAt, entry.RefID, string(entry.RefKind), entry.Delta, entry.ResultingQty, entry.Remark, entry.CreatedBy, entry.CreatedAt)
	return err
}

// GetBalanceForUpdate locks the balance row for the duration of the
// read-modify-write so concurrent movements on the same item serialize.
func (r *txRepository) GetBalanceForUpdate(ctx context.Context, itemID string) (Balance, error) {
	var bal Balance
	err := r.tx.QueryRow(ctx, `SELECT item_id, quantity, last_entry_id, updated_at FROM stock_balances WHERE item_id=$1 FOR UPDATE`, itemID).
		Scan(&bal.ItemID, &bal.Quantity, &bal.LastEntryID, &bal.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Balance{ItemID: itemID}, ErrBalanceNotFound
		}
		return Balance{}, err
	}
	return bal, nil
}

func (r *txRepository) UpsertBalance(ctx context.Context, balance Balance) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO stock_balances (item_id, quantity, last_entry_id, updated_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (item_id) DO UPDATE SET quantity=EXCLUDED.quantity, last_entry_id=EXCLUDED.last_entry_id, updated_at=EXCLUDED.updated_at`,
		balance.ItemID, balance.Quantity, balance.LastEntryID, balance.UpdatedAt)
	return err
}

func (r *txRepository) InsertIssue(ctx context.Context, rec IssueRecord) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO issue_records (id, recipient_id, recipient_name, item_id, item_name, issued_on, quantity, first_issue, against_due, remark, issued_by, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		rec.ID, rec.RecipientID, rec.RecipientName, rec.ItemID, rec.ItemName, rec.IssuedOn, rec.Quantity, rec.FirstIssue, rec.AgainstDue, rec.Remark, rec.IssuedBy, rec.CreatedAt, rec.UpdatedAt)
	return err
}

func (r *txRepository) GetIssueForUpdate(ctx context.Context, id string) (IssueRecord, error) {
	return scanIssue(r.tx.QueryRow(ctx, issueSelect+` WHERE id=$1 FOR UPDATE`, id), id)
}

func (r *txRepository) UpdateIssue(ctx context.Context, rec IssueRecord) error {
	tag, err := r.tx.Exec(ctx, `UPDATE issue_records SET recipient_id=$1, recipient_name=$2, item_id=$3, item_name=$4, issued_on=$5, quantity=$6, first_issue=$7, against_due=$8, remark=$9, updated_at=$10 WHERE id=$11`,
		rec.RecipientID, rec.RecipientName, rec.ItemID, rec.ItemName, rec.IssuedOn, rec.Quantity, rec.FirstIssue, rec.AgainstDue, rec.Remark, rec.UpdatedAt, rec.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.E(shared.CategoryNotFound, "issue record %s not found", rec.ID)
	}
	return nil
}

func (r *txRepository) DeleteIssue(ctx context.Context, id string) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM issue_records WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.E(shared.CategoryNotFound, "issue record %s not found", id)
	}
	return nil
}

func (r *txRepository) InsertBulkIssue(ctx context.Context, rec BulkIssueRecord) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO bulk_issue_records (id, department, location, item_id, item_name, recipient_id, issued_on, quantity, remark, issued_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		rec.ID, rec.Department, rec.Location, rec.ItemID, rec.ItemName, rec.RecipientID, rec.IssuedOn, rec.Quantity, rec.Remark, rec.IssuedBy, rec.CreatedAt)
	return err
}

func (r *txRepository) InsertReceipt(ctx context.Context, rec ReceiptRecord) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO receipt_records (id, item_id, item_name, received_on, quantity, remark, received_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.ID, rec.ItemID, rec.ItemName, rec.ReceivedOn, rec.Quantity, rec.Remark, rec.ReceivedBy, rec.CreatedAt)
	return err
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
