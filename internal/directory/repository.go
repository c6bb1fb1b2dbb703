package directory

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockroom/stockroom/internal/shared"
)

// Repository abstracts recipient persistence.
type Repository interface {
	List(ctx context.Context, search string, page, limit int) ([]Recipient, int, error)
	Get(ctx context.Context, id string) (Recipient, error)
	Lookup(ctx context.Context, id string) (RecipientInfo, error)
	Create(ctx context.Context, rec Recipient) (Recipient, error)
	Update(ctx context.Context, id string, rec Recipient) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, search string, page, limit int) ([]Recipient, int, error) {
	query := `SELECT id, name, department, status, created_at, updated_at FROM recipients WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM recipients WHERE 1=1`
	args := []any{}
	argCount := 0

	if search != "" {
		argCount++
		clause := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR department ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`
	if limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (page - 1) * limit
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

	var recs []Recipient
	for rows.Next() {
		var rec Recipient
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Department, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, 0, err
		}
		recs = append(recs, rec)
	}
	return recs, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id string) (Recipient, error) {
	var rec Recipient
	err := r.pool.QueryRow(ctx, `SELECT id, name, department, status, created_at, updated_at FROM recipients WHERE id=$1`, id).
		Scan(&rec.ID, &rec.Name, &rec.Department, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Recipient{}, shared.E(shared.CategoryNotFound, "recipient %s not found", id)
		}
		return Recipient{}, err
	}
	return rec, nil
}

func (r *repository) Lookup(ctx context.Context, id string) (RecipientInfo, error) {
	var name string
	var status EmploymentStatus
	err := r.pool.QueryRow(ctx, `SELECT name, status FROM recipients WHERE id=$1`, id).Scan(&name, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RecipientInfo{}, shared.E(shared.CategoryNotFound, "recipient %s not found", id)
		}
		return RecipientInfo{}, err
	}
	return RecipientInfo{Name: name, Active: status == StatusActive}, nil
}

func (r *repository) Create(ctx context.Context, rec Recipient) (Recipient, error) {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `INSERT INTO recipients (id, name, department, status, created_at, updated_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		rec.ID, rec.Name, rec.Department, string(rec.Status), rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return Recipient{}, err
	}
	return rec, nil
}

func (r *repository) Update(ctx context.Context, id string, rec Recipient) error {
	tag, err := r.pool.Exec(ctx, `UPDATE recipients SET name=$1, department=$2, status=$3, updated_at=$4 WHERE id=$5`,
		rec.Name, rec.Department, string(rec.Status), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.E(shared.CategoryNotFound, "recipient %s not found", id)
	}
	return nil
}
