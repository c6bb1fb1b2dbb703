package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	pgxconn "github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom/stockroom/internal/shared"
)

// Repository abstracts item persistence.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Item, int, error)
	Get(ctx context.Context, id string) (Item, error)
	Lookup(ctx context.Context, id string) (ItemInfo, error)
	Create(ctx context.Context, item Item) (Item, error)
	Update(ctx context.Context, id string, item Item) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// List uses a dynamic query due to filter combinations.
func (r *repository) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	query := `SELECT id, code, name, category, life_qty, life_unit, active, created_by, updated_by, created_at, updated_at FROM stocked_items WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM stocked_items WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.Category != "" {
		argCount++
		clause := ` AND category = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Category)
	}
	if filters.ActiveOnly {
		query += ` AND active`
		countQuery += ` AND active`
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Code, &it.Name, &it.Category, &it.LifeQty, &it.LifeUnit, &it.Active, &it.CreatedBy, &it.UpdatedBy, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Item, error) {
	var it Item
	err := r.pool.QueryRow(ctx, `SELECT id, code, name, category, life_qty, life_unit, active, created_by, updated_by, created_at, updated_at
FROM stocked_items WHERE id=$1`, id).
		Scan(&it.ID, &it.Code, &it.Name, &it.Category, &it.LifeQty, &it.LifeUnit, &it.Active, &it.CreatedBy, &it.UpdatedBy, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.E(shared.CategoryNotFound, "item %s not found", id)
		}
		return Item{}, err
	}
	return it, nil
}

func (r *repository) Lookup(ctx context.Context, id string) (ItemInfo, error) {
	var info ItemInfo
	err := r.pool.QueryRow(ctx, `SELECT name, active, life_qty, life_unit FROM stocked_items WHERE id=$1`, id).
		Scan(&info.Name, &info.Active, &info.LifeQty, &info.LifeUnit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ItemInfo{}, shared.E(shared.CategoryNotFound, "item %s not found", id)
		}
		return ItemInfo{}, err
	}
	return info, nil
}

func (r *repository) Create(ctx context.Context, item Item) (Item, error) {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `INSERT INTO stocked_items (id, code, name, category, life_qty, life_unit, active, created_by, updated_by, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		item.ID, item.Code, item.Name, item.Category, item.LifeQty, string(item.LifeUnit), item.Active, item.CreatedBy, item.UpdatedBy, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return Item{}, shared.E(shared.CategoryConflict, "item code %s already exists", item.Code)
		}
		return Item{}, err
	}
	return item, nil
}

func (r *repository) Update(ctx context.Context, id string, item Item) error {
	tag, err := r.pool.Exec(ctx, `UPDATE stocked_items SET code=$1, name=$2, category=$3, life_qty=$4, life_unit=$5, active=$6, updated_by=$7, updated_at=$8 WHERE id=$9`,
		item.Code, item.Name, item.Category, item.LifeQty, string(item.LifeUnit), item.Active, item.UpdatedBy, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.E(shared.CategoryNotFound, "item %s not found", id)
	}
	return nil
}

// Delete refuses to remove an item with movement history.
func (r *repository) Delete(ctx context.Context, id string) error {
	var referenced bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM stock_ledger WHERE item_id=$1)`, id).Scan(&referenced); err != nil {
		return err
	}
	if referenced {
		return shared.E(shared.CategoryReferentialIntegrity, "item %s has movement history and cannot be deleted", id)
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM stocked_items WHERE id=$1`, id)
	if err != nil {
		return deleteError(id, err)
	}
	if tag.RowsAffected() == 0 {
		return shared.E(shared.CategoryNotFound, "item %s not found", id)
	}
	return nil
}

// deleteError maps a foreign key violation to the referential-integrity
// category. A movement committed between the existence check and the
// delete surfaces here rather than in the check.
func deleteError(id string, err error) error {
	var pgErr *pgxconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return shared.E(shared.CategoryReferentialIntegrity, "item %s has movement history and cannot be deleted", id)
	}
	return err
}
