package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const listMenuItemsByCategory = `-- name: ListMenuItemsByCategory :many
SELECT mi.id, mi.category_id, mi.name, mi.description, mi.price, mi.image_url,
       mi.in_stock, mi.is_active, mi.created_at, mi.updated_at,
       p.promo_price
FROM menu_items mi
LEFT JOIN promotions p
  ON p.menu_item_id = mi.id
 AND p.is_active = TRUE
 AND now() >= COALESCE(p.starts_at, now())
 AND now() <= COALESCE(p.ends_at, now())
WHERE mi.category_id = $1 AND mi.is_active = TRUE
ORDER BY mi.name
`

type ListMenuItemsByCategoryRow struct {
	ID          int64
	CategoryID  int64
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	ImageUrl    pgtype.Text
	InStock     bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PromoPrice  pgtype.Numeric
}

func (q *Queries) ListMenuItemsByCategory(ctx context.Context, categoryID int64) ([]ListMenuItemsByCategoryRow, error) {
	rows, err := q.db.Query(ctx, listMenuItemsByCategory, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListMenuItemsByCategoryRow
	for rows.Next() {
		var i ListMenuItemsByCategoryRow
		if err := rows.Scan(
			&i.ID,
			&i.CategoryID,
			&i.Name,
			&i.Description,
			&i.Price,
			&i.ImageUrl,
			&i.InStock,
			&i.IsActive,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.PromoPrice,
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

const getMenuItem = `-- name: GetMenuItem :one
SELECT id, category_id, name, description, price, image_url, in_stock, is_active, created_at, updated_at
FROM menu_items
WHERE id = $1 AND is_active = TRUE
`

func (q *Queries) GetMenuItem(ctx context.Context, id int64) (MenuItem, error) {
	row := q.db.QueryRow(ctx, getMenuItem, id)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.CategoryID,
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

const getMenuItemForCart = `-- name: GetMenuItemForCart :one
SELECT mi.id, mi.category_id, mi.name, mi.price, mi.image_url, mi.in_stock,
       p.promo_price
FROM menu_items mi
LEFT JOIN promotions p
  ON p.menu_item_id = mi.id
 AND p.is_active = TRUE
 AND now() >= COALESCE(p.starts_at, now())
 AND now() <= COALESCE(p.ends_at, now())
WHERE mi.id = $1 AND mi.is_active = TRUE
`

type GetMenuItemForCartRow struct {
	ID         int64
	CategoryID int64
	Name       string
	Price      pgtype.Numeric
	ImageUrl   pgtype.Text
	InStock    bool
	PromoPrice pgtype.Numeric
}

func (q *Queries) GetMenuItemForCart(ctx context.Context, id int64) (GetMenuItemForCartRow, error) {
	row := q.db.QueryRow(ctx, getMenuItemForCart, id)
	var i GetMenuItemForCartRow
	err := row.Scan(
		&i.ID,
		&i.CategoryID,
		&i.Name,
		&i.Price,
		&i.ImageUrl,
		&i.InStock,
		&i.PromoPrice,
	)
	return i, err
}

const createMenuItem = `-- name: CreateMenuItem :one
INSERT INTO menu_items (category_id, name, description, price, image_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, category_id, name, description, price, image_url, in_stock, is_active, created_at, updated_at
`

type CreateMenuItemParams struct {
	CategoryID  int64
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	ImageUrl    pgtype.Text
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.CategoryID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.ImageUrl,
	)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.CategoryID,
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

const updateMenuItem = `-- name: UpdateMenuItem :one
UPDATE menu_items
SET category_id = $2, name = $3, description = $4, price = $5, image_url = $6, updated_at = now()
WHERE id = $1 AND is_active = TRUE
RETURNING id, category_id, name, description, price, image_url, in_stock, is_active, created_at, updated_at
`

type UpdateMenuItemParams struct {
	ID          int64
	CategoryID  int64
	Name        string
	Description pgtype.Text
	Price       pgtype.Numeric
	ImageUrl    pgtype.Text
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem,
		arg.ID,
		arg.CategoryID,
		arg.Name,
		arg.Description,
		arg.Price,
		arg.ImageUrl,
	)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.CategoryID,
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

const setMenuItemStock = `-- name: SetMenuItemStock :one
UPDATE menu_items
SET in_stock = $2, updated_at = now()
WHERE id = $1 AND is_active = TRUE
RETURNING id, category_id, name, description, price, image_url, in_stock, is_active, created_at, updated_at
`

type SetMenuItemStockParams struct {
	ID      int64
	InStock bool
}

func (q *Queries) SetMenuItemStock(ctx context.Context, arg SetMenuItemStockParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, setMenuItemStock, arg.ID, arg.InStock)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.CategoryID,
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

const softDeleteMenuItem = `-- name: SoftDeleteMenuItem :one
UPDATE menu_items
SET is_active = FALSE, updated_at = now()
WHERE id = $1 AND is_active = TRUE
RETURNING id
`

func (q *Queries) SoftDeleteMenuItem(ctx context.Context, id int64) (int64, error) {
	row := q.db.QueryRow(ctx, softDeleteMenuItem, id)
	var out int64
	err := row.Scan(&out)
	return out, err
}

const listMenuItemStock = `-- name: ListMenuItemStock :many
SELECT mi.id, mi.name, mi.in_stock, c.name AS category_name
FROM menu_items mi
JOIN categories c ON c.id = mi.category_id
WHERE mi.is_active = TRUE
ORDER BY c.sort_order, mi.name
`

type ListMenuItemStockRow struct {
	ID           int64
	Name         string
	InStock      bool
	CategoryName string
}

func (q *Queries) ListMenuItemStock(ctx context.Context) ([]ListMenuItemStockRow, error) {
	rows, err := q.db.Query(ctx, listMenuItemStock)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListMenuItemStockRow
	for rows.Next() {
		var i ListMenuItemStockRow
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.InStock,
			&i.CategoryName,
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
