package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listCategories = `-- name: ListCategories :many
SELECT id, name, image_url, sort_order, is_active, created_at
FROM categories
WHERE is_active = TRUE
ORDER BY sort_order, name
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.ImageUrl,
			&i.SortOrder,
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

const getCategory = `-- name: GetCategory :one
SELECT id, name, image_url, sort_order, is_active, created_at
FROM categories
WHERE id = $1 AND is_active = TRUE
`

func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	row := q.db.QueryRow(ctx, getCategory, id)
	var i Category
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.ImageUrl,
		&i.SortOrder,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (name, image_url, sort_order)
VALUES ($1, $2, $3)
RETURNING id, name, image_url, sort_order, is_active, created_at
`

type CreateCategoryParams struct {
	Name      string
	ImageUrl  pgtype.Text
	SortOrder int32
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, createCategory, arg.Name, arg.ImageUrl, arg.SortOrder)
	var i Category
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.ImageUrl,
		&i.SortOrder,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const updateCategory = `-- name: UpdateCategory :one
UPDATE categories
SET name = $2, image_url = $3, sort_order = $4
WHERE id = $1 AND is_active = TRUE
RETURNING id, name, image_url, sort_order, is_active, created_at
`

type UpdateCategoryParams struct {
	ID        int64
	Name      string
	ImageUrl  pgtype.Text
	SortOrder int32
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, updateCategory,
		arg.ID,
		arg.Name,
		arg.ImageUrl,
		arg.SortOrder,
	)
	var i Category
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.ImageUrl,
		&i.SortOrder,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const softDeleteCategory = `-- name: SoftDeleteCategory :one
UPDATE categories
SET is_active = FALSE
WHERE id = $1 AND is_active = TRUE
RETURNING id
`

func (q *Queries) SoftDeleteCategory(ctx context.Context, id int64) (int64, error) {
	row := q.db.QueryRow(ctx, softDeleteCategory, id)
	var out int64
	err := row.Scan(&out)
	return out, err
}
