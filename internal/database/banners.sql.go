package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listActiveBanners = `-- name: ListActiveBanners :many
SELECT id, title, image_url, link_url, sort_order, starts_at, ends_at, is_active, created_at
FROM banners
WHERE is_active = TRUE
  AND now() >= COALESCE(starts_at, now())
  AND now() <= COALESCE(ends_at, now())
ORDER BY sort_order, id
`

func (q *Queries) ListActiveBanners(ctx context.Context) ([]Banner, error) {
	rows, err := q.db.Query(ctx, listActiveBanners)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Banner
	for rows.Next() {
		var i Banner
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.ImageUrl,
			&i.LinkUrl,
			&i.SortOrder,
			&i.StartsAt,
			&i.EndsAt,
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

const listBanners = `-- name: ListBanners :many
SELECT id, title, image_url, link_url, sort_order, starts_at, ends_at, is_active, created_at
FROM banners
WHERE is_active = TRUE
ORDER BY sort_order, id
`

func (q *Queries) ListBanners(ctx context.Context) ([]Banner, error) {
	rows, err := q.db.Query(ctx, listBanners)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Banner
	for rows.Next() {
		var i Banner
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.ImageUrl,
			&i.LinkUrl,
			&i.SortOrder,
			&i.StartsAt,
			&i.EndsAt,
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

const createBanner = `-- name: CreateBanner :one
INSERT INTO banners (title, image_url, link_url, sort_order, starts_at, ends_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, title, image_url, link_url, sort_order, starts_at, ends_at, is_active, created_at
`

type CreateBannerParams struct {
	Title     pgtype.Text
	ImageUrl  string
	LinkUrl   pgtype.Text
	SortOrder int32
	StartsAt  pgtype.Timestamptz
	EndsAt    pgtype.Timestamptz
}

func (q *Queries) CreateBanner(ctx context.Context, arg CreateBannerParams) (Banner, error) {
	row := q.db.QueryRow(ctx, createBanner,
		arg.Title,
		arg.ImageUrl,
		arg.LinkUrl,
		arg.SortOrder,
		arg.StartsAt,
		arg.EndsAt,
	)
	var i Banner
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.ImageUrl,
		&i.LinkUrl,
		&i.SortOrder,
		&i.StartsAt,
		&i.EndsAt,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const updateBanner = `-- name: UpdateBanner :one
UPDATE banners
SET title = $2, image_url = $3, link_url = $4, sort_order = $5, starts_at = $6, ends_at = $7
WHERE id = $1 AND is_active = TRUE
RETURNING id, title, image_url, link_url, sort_order, starts_at, ends_at, is_active, created_at
`

type UpdateBannerParams struct {
	ID        int64
	Title     pgtype.Text
	ImageUrl  string
	LinkUrl   pgtype.Text
	SortOrder int32
	StartsAt  pgtype.Timestamptz
	EndsAt    pgtype.Timestamptz
}

func (q *Queries) UpdateBanner(ctx context.Context, arg UpdateBannerParams) (Banner, error) {
	row := q.db.QueryRow(ctx, updateBanner,
		arg.ID,
		arg.Title,
		arg.ImageUrl,
		arg.LinkUrl,
		arg.SortOrder,
		arg.StartsAt,
		arg.EndsAt,
	)
	var i Banner
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.ImageUrl,
		&i.LinkUrl,
		&i.SortOrder,
		&i.StartsAt,
		&i.EndsAt,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const softDeleteBanner = `-- name: SoftDeleteBanner :one
UPDATE banners
SET is_active = FALSE
WHERE id = $1 AND is_active = TRUE
RETURNING id
`

func (q *Queries) SoftDeleteBanner(ctx context.Context, id int64) (int64, error) {
	row := q.db.QueryRow(ctx, softDeleteBanner, id)
	var out int64
	err := row.Scan(&out)
	return out, err
}
