package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const listPromotions = `-- name: ListPromotions :many
SELECT p.id, p.menu_item_id, p.name, p.promo_price, p.starts_at, p.ends_at, p.is_active, p.created_at,
       mi.name AS menu_item_name, mi.price AS menu_item_price
FROM promotions p
JOIN menu_items mi ON mi.id = p.menu_item_id
WHERE p.is_active = TRUE
ORDER BY p.created_at DESC
`

type ListPromotionsRow struct {
	ID            int64
	MenuItemID    int64
	Name          string
	PromoPrice    pgtype.Numeric
	StartsAt      pgtype.Timestamptz
	EndsAt        pgtype.Timestamptz
	IsActive      bool
	CreatedAt     time.Time
	MenuItemName  string
	MenuItemPrice pgtype.Numeric
}

func (q *Queries) ListPromotions(ctx context.Context) ([]ListPromotionsRow, error) {
	rows, err := q.db.Query(ctx, listPromotions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListPromotionsRow
	for rows.Next() {
		var i ListPromotionsRow
		if err := rows.Scan(
			&i.ID,
			&i.MenuItemID,
			&i.Name,
			&i.PromoPrice,
			&i.StartsAt,
			&i.EndsAt,
			&i.IsActive,
			&i.CreatedAt,
			&i.MenuItemName,
			&i.MenuItemPrice,
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

const createPromotion = `-- name: CreatePromotion :one
INSERT INTO promotions (menu_item_id, name, promo_price, starts_at, ends_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, menu_item_id, name, promo_price, starts_at, ends_at, is_active, created_at
`

type CreatePromotionParams struct {
	MenuItemID int64
	Name       string
	PromoPrice pgtype.Numeric
	StartsAt   pgtype.Timestamptz
	EndsAt     pgtype.Timestamptz
}

func (q *Queries) CreatePromotion(ctx context.Context, arg CreatePromotionParams) (Promotion, error) {
	row := q.db.QueryRow(ctx, createPromotion,
		arg.MenuItemID,
		arg.Name,
		arg.PromoPrice,
		arg.StartsAt,
		arg.EndsAt,
	)
	var i Promotion
	err := row.Scan(
		&i.ID,
		&i.MenuItemID,
		&i.Name,
		&i.PromoPrice,
		&i.StartsAt,
		&i.EndsAt,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const updatePromotion = `-- name: UpdatePromotion :one
UPDATE promotions
SET menu_item_id = $2, name = $3, promo_price = $4, starts_at = $5, ends_at = $6
WHERE id = $1 AND is_active = TRUE
RETURNING id, menu_item_id, name, promo_price, starts_at, ends_at, is_active, created_at
`

type UpdatePromotionParams struct {
	ID         int64
	MenuItemID int64
	Name       string
	PromoPrice pgtype.Numeric
	StartsAt   pgtype.Timestamptz
	EndsAt     pgtype.Timestamptz
}

func (q *Queries) UpdatePromotion(ctx context.Context, arg UpdatePromotionParams) (Promotion, error) {
	row := q.db.QueryRow(ctx, updatePromotion,
		arg.ID,
		arg.MenuItemID,
		arg.Name,
		arg.PromoPrice,
		arg.StartsAt,
		arg.EndsAt,
	)
	var i Promotion
	err := row.Scan(
		&i.ID,
		&i.MenuItemID,
		&i.Name,
		&i.PromoPrice,
		&i.StartsAt,
		&i.EndsAt,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const softDeletePromotion = `-- name: SoftDeletePromotion :one
UPDATE promotions
SET is_active = FALSE
WHERE id = $1 AND is_active = TRUE
RETURNING id
`

func (q *Queries) SoftDeletePromotion(ctx context.Context, id int64) (int64, error) {
	row := q.db.QueryRow(ctx, softDeletePromotion, id)
	var out int64
	err := row.Scan(&out)
	return out, err
}
