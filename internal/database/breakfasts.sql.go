package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listBreakfasts = `-- name: ListBreakfasts :many
SELECT id, name, description, price, image_url, in_stock, is_active, created_at, updated_at
FROM breakfasts
WHERE is_active = TRUE
ORDER BY name
`

func (q *Queries) ListBreakfasts(ctx context.Context) ([]Breakfast, error) {
	rows, err := q.db.Query(ctx, listBreakfasts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Breakfast
	for rows.Next() {
		var i Breakfast
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.Price,
			&i.ImageUrl,
			&i.InStock,
			&i.IsActive,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const getBreakfast = `-- name: GetBreakfast :one
SELECT id, name, description, price, image_url, in_stock, is_active, created_at, updated_at
FROM breakfasts
WHERE id = $1 AND is_active = TRUE
`

func (q *Queries) GetBreakfast(ctx context.Context, id int64) (Breakfast, error) {
	row := q.db.QueryRow(ctx, getBreakfast, id)
	var i Breakfast
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.ImageUrl,
		&i.InStock,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createBreakfast = `-- name: CreateBreakfast :one
INSERT INTO breakfasts (name, description, price, image_url)
VALUES ($1, $2, $3, $4)
RETURNING id, name, description, price, image_url, in_stock, is_active, created_at, updated_at
`

type CreateBreakfastParams struct {
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	ImageUrl    pgtype.Text
}

func (q *Queries) CreateBreakfast(ctx context.Context, arg CreateBreakfastParams) (Breakfast, error) {
	row := q.db.QueryRow(ctx, createBreakfast,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.ImageUrl,
	)
	var i Breakfast
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.ImageUrl,
		&i.InStock,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateBreakfast = `-- name: UpdateBreakfast :one
UPDATE breakfasts
SET name = $2, description = $3, price = $4, image_url = $5, updated_at = now()
WHERE id = $1 AND is_active = TRUE
RETURNING id, name, description, price, image_url, in_stock, is_active, created_at, updated_at
`

type UpdateBreakfastParams struct {
	ID          int64
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	ImageUrl    pgtype.Text
}

func (q *Queries) UpdateBreakfast(ctx context.Context, arg UpdateBreakfastParams) (Breakfast, error) {
	row := q.db.QueryRow(ctx, updateBreakfast,
		arg.ID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.ImageUrl,
	)
	var i Breakfast
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.ImageUrl,
		&i.InStock,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const setBreakfastStock = `-- name: SetBreakfastStock :one
UPDATE breakfasts
SET in_stock = $2, updated_at = now()
WHERE id = $1 AND is_active = TRUE
RETURNING id, name, description, price, image_url, in_stock, is_active, created_at, updated_at
`

type SetBreakfastStockParams struct {
	ID      int64
	InStock bool
}

func (q *Queries) SetBreakfastStock(ctx context.Context, arg SetBreakfastStockParams) (Breakfast, error) {
	row := q.db.QueryRow(ctx, setBreakfastStock, arg.ID, arg.InStock)
	var i Breakfast
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Price,
		&i.ImageUrl,
		&i.InStock,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const softDeleteBreakfast = `-- name: SoftDeleteBreakfast :one
UPDATE breakfasts
SET is_active = FALSE, updated_at = now()
WHERE id = $1 AND is_active = TRUE
RETURNING id
`

func (q *Queries) SoftDeleteBreakfast(ctx context.Context, id int64) (int64, error) {
	row := q.db.QueryRow(ctx, softDeleteBreakfast, id)
	var out int64
	err := row.Scan(&out)
	return out, err
}

const listBreakfastOptions = `-- name: ListBreakfastOptions :many
SELECT id, breakfast_id, group_name, name, price, is_active, created_at
FROM breakfast_options
WHERE breakfast_id = $1 AND is_active = TRUE
ORDER BY group_name, name
`

func (q *Queries) ListBreakfastOptions(ctx context.Context, breakfastID int64) ([]BreakfastOption, error) {
	rows, err := q.db.Query(ctx, listBreakfastOptions, breakfastID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BreakfastOption
	for rows.Next() {
		var i BreakfastOption
		if err := rows.Scan(
			&i.ID,
			&i.BreakfastID,
			&i.GroupName,
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

const getBreakfastOption = `-- name: GetBreakfastOption :one
SELECT id, breakfast_id, group_name, name, price, is_active, created_at
FROM breakfast_options
WHERE id = $1 AND is_active = TRUE
`

func (q *Queries) GetBreakfastOption(ctx context.Context, id int64) (BreakfastOption, error) {
	row := q.db.QueryRow(ctx, getBreakfastOption, id)
	var i BreakfastOption
	err := row.Scan(
		&i.ID,
		&i.BreakfastID,
		&i.GroupName,
		&i.Name,
		&i.Price,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const createBreakfastOption = `-- name: CreateBreakfastOption :one
INSERT INTO breakfast_options (breakfast_id, group_name, name, price)
VALUES ($1, $2, $3, $4)
RETURNING id, breakfast_id, group_name, name, price, is_active, created_at
`

type CreateBreakfastOptionParams struct {
	BreakfastID int64
	GroupName   pgtype.Text
	Name        string
	Price       pgtype.Numeric
}

func (q *Queries) CreateBreakfastOption(ctx context.Context, arg CreateBreakfastOptionParams) (BreakfastOption, error) {
	row := q.db.QueryRow(ctx, createBreakfastOption,
		arg.BreakfastID,
		arg.GroupName,
		arg.Name,
		arg.Price,
	)
	var i BreakfastOption
	err := row.Scan(
		&i.ID,
		&i.BreakfastID,
		&i.GroupName,
		&i.Name,
		&i.Price,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const updateBreakfastOption = `-- name: UpdateBreakfastOption :one
UPDATE breakfast_options
SET group_name = $2, name = $3, price = $4
WHERE id = $1 AND is_active = TRUE
RETURNING id, breakfast_id, group_name, name, price, is_active, created_at
`

type UpdateBreakfastOptionParams struct {
	ID        int64
	GroupName pgtype.Text
	Name      string
	Price     pgtype.Numeric
}

func (q *Queries) UpdateBreakfastOption(ctx context.Context, arg UpdateBreakfastOptionParams) (BreakfastOption, error) {
	row := q.db.QueryRow(ctx, updateBreakfastOption,
		arg.ID,
		arg.GroupName,
		arg.Name,
		arg.Price,
	)
	var i BreakfastOption
	err := row.Scan(
		&i.ID,
		&i.BreakfastID,
		&i.GroupName,
		&i.Name,
		&i.Price,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const softDeleteBreakfastOption = `-- name: SoftDeleteBreakfastOption :one
UPDATE breakfast_options
SET is_active = FALSE
WHERE id = $1 AND is_active = TRUE
RETURNING id
`

func (q *Queries) SoftDeleteBreakfastOption(ctx context.Context, id int64) (int64, error) {
	row := q.db.QueryRow(ctx, softDeleteBreakfastOption, id)
	var out int64
	err := row.Scan(&out)
	return out, err
}
