package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listSupplementsByCategory = `-- name: ListSupplementsByCategory :many
SELECT id, category_id, name, price, is_active, created_at
FROM supplements
WHERE category_id = $1 AND is_active = TRUE
ORDER BY name
`

func (q *Queries) ListSupplementsByCategory(ctx context.Context, categoryID int64) ([]Supplement, error) {
	rows, err := q.db.Query(ctx, listSupplementsByCategory, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Supplement
	for rows.Next() {
		var i Supplement
		if err := rows.Scan(
			&i.ID,
			&i.CategoryID,
			&i.Name,
			&i.Price,
			&i.IsActive,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getSupplement = `-- name: GetSupplement :one
SELECT id, category_id, name, price, is_active, created_at
FROM supplements
WHERE id = $1 AND is_active = TRUE
`

func (q *Queries) GetSupplement(ctx context.Context, id int64) (Supplement, error) {
	row := q.db.QueryRow(ctx, getSupplement, id)
	var i Supplement
	err := row.Scan(
		&i.ID,
		&i.CategoryID,
		&i.Name,
		&i.Price,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const createSupplement = `-- name: CreateSupplement :one
INSERT INTO supplements (category_id, name, price)
VALUES ($1, $2, $3)
RETURNING id, category_id, name, price, is_active, created_at
`

type CreateSupplementParams struct {
	CategoryID int64
	Name       string
	Price      pgtype.Numeric
}

func (q *Queries) CreateSupplement(ctx context.Context, arg CreateSupplementParams) (Supplement, error) {
	row := q.db.QueryRow(ctx, createSupplement, arg.CategoryID, arg.Name, arg.Price)
	var i Supplement
	err := row.Scan(
		&i.ID,
		&i.CategoryID,
		&i.Name,
		&i.Price,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const updateSupplement = `-- name: UpdateSupplement :one
UPDATE supplements
SET category_id = $2, name = $3, price = $4
WHERE id = $1 AND is_active = TRUE
RETURNING id, category_id, name, price, is_active, created_at
`

type UpdateSupplementParams struct {
	ID         int64
	CategoryID int64
	Name       string
	Price      pgtype.Numeric
}

func (q *Queries) UpdateSupplement(ctx context.Context, arg UpdateSupplementParams) (Supplement, error) {
	row := q.db.QueryRow(ctx, updateSupplement,
		arg.ID,
		arg.CategoryID,
		arg.Name,
		arg.Price,
	)
	var i Supplement
	err := row.Scan(
		&i.ID,
		&i.CategoryID,
		&i.Name,
		&i.Price,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const softDeleteSupplement = `-- name: SoftDeleteSupplement :one
UPDATE supplements
SET is_active = FALSE
WHERE id = $1 AND is_active = TRUE
RETURNING id
`

func (q *Queries) SoftDeleteSupplement(ctx context.Context, id int64) (int64, error) {
	row := q.db.QueryRow(ctx, softDeleteSupplement, id)
	var out int64
	err := row.Scan(&out)
	return out, err
}
