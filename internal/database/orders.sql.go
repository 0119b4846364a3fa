package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getNextOrderSeq = `-- name: GetNextOrderSeq :one
SELECT COALESCE(MAX(order_seq), 0) + 1
FROM orders
`

func (q *Queries) GetNextOrderSeq(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, getNextOrderSeq)
	var seq int64
	err := row.Scan(&seq)
	return seq, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (order_number, order_seq, session_id, customer_name, order_type, table_number, notes, status, total_amount)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, order_number, order_seq, session_id, customer_name, order_type, table_number, notes, status, total_amount, created_at, updated_at
`

type CreateOrderParams struct {
	OrderNumber  string
	OrderSeq     int64
	SessionID    pgtype.Text
	CustomerName pgtype.Text
	OrderType    string
	TableNumber  pgtype.Text
	Notes        pgtype.Text
	Status       string
	TotalAmount  pgtype.Numeric
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OrderNumber,
		arg.OrderSeq,
		arg.SessionID,
		arg.CustomerName,
		arg.OrderType,
		arg.TableNumber,
		arg.Notes,
		arg.Status,
		arg.TotalAmount,
	)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.OrderSeq,
		&i.SessionID,
		&i.CustomerName,
		&i.OrderType,
		&i.TableNumber,
		&i.Notes,
		&i.Status,
		&i.TotalAmount,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (order_id, menu_item_id, item_name, unit_price, quantity, supplement_id, supplement_name, supplement_price, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, order_id, menu_item_id, item_name, unit_price, quantity, supplement_id, supplement_name, supplement_price, image_url, created_at
`

type CreateOrderItemParams struct {
	OrderID         uuid.UUID
	MenuItemID      int64
	ItemName        string
	UnitPrice       pgtype.Numeric
	Quantity        int32
	SupplementID    pgtype.Int8
	SupplementName  pgtype.Text
	SupplementPrice pgtype.Numeric
	ImageUrl        pgtype.Text
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.MenuItemID,
		arg.ItemName,
		arg.UnitPrice,
		arg.Quantity,
		arg.SupplementID,
		arg.SupplementName,
		arg.SupplementPrice,
		arg.ImageUrl,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.MenuItemID,
		&i.ItemName,
		&i.UnitPrice,
		&i.Quantity,
		&i.SupplementID,
		&i.SupplementName,
		&i.SupplementPrice,
		&i.ImageUrl,
		&i.CreatedAt,
	)
	return i, err
}

const createOrderBreakfast = `-- name: CreateOrderBreakfast :one
INSERT INTO order_breakfasts (order_id, breakfast_id, breakfast_name, unit_price, quantity, image_url)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, order_id, breakfast_id, breakfast_name, unit_price, quantity, image_url, created_at
`

type CreateOrderBreakfastParams struct {
	OrderID       uuid.UUID
	BreakfastID   int64
	BreakfastName string
	UnitPrice     pgtype.Numeric
	Quantity      int32
	ImageUrl      pgtype.Text
}

func (q *Queries) CreateOrderBreakfast(ctx context.Context, arg CreateOrderBreakfastParams) (OrderBreakfast, error) {
	row := q.db.QueryRow(ctx, createOrderBreakfast,
		arg.OrderID,
		arg.BreakfastID,
		arg.BreakfastName,
		arg.UnitPrice,
		arg.Quantity,
		arg.ImageUrl,
	)
	var i OrderBreakfast
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.BreakfastID,
		&i.BreakfastName,
		&i.UnitPrice,
		&i.Quantity,
		&i.ImageUrl,
		&i.CreatedAt,
	)
	return i, err
}

const createOrderBreakfastOption = `-- name: CreateOrderBreakfastOption :one
INSERT INTO order_breakfast_options (order_breakfast_id, option_id, option_name, option_price)
VALUES ($1, $2, $3, $4)
RETURNING id, order_breakfast_id, option_id, option_name, option_price, created_at
`

type CreateOrderBreakfastOptionParams struct {
	OrderBreakfastID uuid.UUID
	OptionID         int64
	OptionName       string
	OptionPrice      pgtype.Numeric
}

func (q *Queries) CreateOrderBreakfastOption(ctx context.Context, arg CreateOrderBreakfastOptionParams) (OrderBreakfastOption, error) {
	row := q.db.QueryRow(ctx, createOrderBreakfastOption,
		arg.OrderBreakfastID,
		arg.OptionID,
		arg.OptionName,
		arg.OptionPrice,
	)
	var i OrderBreakfastOption
	err := row.Scan(
		&i.ID,
		&i.OrderBreakfastID,
		&i.OptionID,
		&i.OptionName,
		&i.OptionPrice,
		&i.CreatedAt,
	)
	return i, err
}

const getOrder = `-- name: GetOrder :one
SELECT id, order_number, order_seq, session_id, customer_name, order_type, table_number, notes, status, total_amount, created_at, updated_at
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.OrderSeq,
		&i.SessionID,
		&i.CustomerName,
		&i.OrderType,
		&i.TableNumber,
		&i.Notes,
		&i.Status,
		&i.TotalAmount,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateOrderStatus = `-- name: UpdateOrderStatus :one
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1
RETURNING id, order_number, order_seq, session_id, customer_name, order_type, table_number, notes, status, total_amount, created_at, updated_at
`

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status string
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.OrderSeq,
		&i.SessionID,
		&i.CustomerName,
		&i.OrderType,
		&i.TableNumber,
		&i.Notes,
		&i.Status,
		&i.TotalAmount,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listOrderStatusUpdatesSince = `-- name: ListOrderStatusUpdatesSince :many
SELECT id, order_number, status, updated_at
FROM orders
WHERE updated_at > $1
ORDER BY updated_at
`

type ListOrderStatusUpdatesSinceRow struct {
	ID          uuid.UUID
	OrderNumber string
	Status      string
	UpdatedAt   time.Time
}

func (q *Queries) ListOrderStatusUpdatesSince(ctx context.Context, updatedAt time.Time) ([]ListOrderStatusUpdatesSinceRow, error) {
	rows, err := q.db.Query(ctx, listOrderStatusUpdatesSince, updatedAt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListOrderStatusUpdatesSinceRow
	for rows.Next() {
		var i ListOrderStatusUpdatesSinceRow
		if err := rows.Scan(
			&i.ID,
			&i.OrderNumber,
			&i.Status,
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

// orderRecordColumns is the legacy denormalized read model: one row per
// order, line values comma-joined into parallel string fields with 'NULL'
// standing in for absent values. Option tokens are flattened across all
// breakfast lines in insertion order.
const orderRecordColumns = `
o.id, o.order_number, o.status, o.order_type, o.table_number, o.customer_name, o.notes, o.total_amount, o.created_at, o.updated_at,
COALESCE((SELECT string_agg(oi.menu_item_id::text, ',' ORDER BY oi.created_at, oi.id) FROM order_items oi WHERE oi.order_id = o.id), '') AS item_ids,
COALESCE((SELECT string_agg(oi.item_name, ',' ORDER BY oi.created_at, oi.id) FROM order_items oi WHERE oi.order_id = o.id), '') AS item_names,
COALESCE((SELECT string_agg(oi.unit_price::text, ',' ORDER BY oi.created_at, oi.id) FROM order_items oi WHERE oi.order_id = o.id), '') AS unit_prices,
COALESCE((SELECT string_agg(oi.quantity::text, ',' ORDER BY oi.created_at, oi.id) FROM order_items oi WHERE oi.order_id = o.id), '') AS menu_quantities,
COALESCE((SELECT string_agg(COALESCE(oi.supplement_id::text, 'NULL'), ',' ORDER BY oi.created_at, oi.id) FROM order_items oi WHERE oi.order_id = o.id), '') AS supplement_ids,
COALESCE((SELECT string_agg(COALESCE(oi.supplement_name, 'NULL'), ',' ORDER BY oi.created_at, oi.id) FROM order_items oi WHERE oi.order_id = o.id), '') AS supplement_names,
COALESCE((SELECT string_agg(COALESCE(oi.supplement_price::text, 'NULL'), ',' ORDER BY oi.created_at, oi.id) FROM order_items oi WHERE oi.order_id = o.id), '') AS supplement_prices,
COALESCE((SELECT string_agg(COALESCE(oi.image_url, 'NULL'), ',' ORDER BY oi.created_at, oi.id) FROM order_items oi WHERE oi.order_id = o.id), '') AS item_images,
COALESCE((SELECT string_agg(ob.breakfast_id::text, ',' ORDER BY ob.created_at, ob.id) FROM order_breakfasts ob WHERE ob.order_id = o.id), '') AS breakfast_ids,
COALESCE((SELECT string_agg(ob.breakfast_name, ',' ORDER BY ob.created_at, ob.id) FROM order_breakfasts ob WHERE ob.order_id = o.id), '') AS breakfast_names,
COALESCE((SELECT string_agg(ob.unit_price::text, ',' ORDER BY ob.created_at, ob.id) FROM order_breakfasts ob WHERE ob.order_id = o.id), '') AS breakfast_prices,
COALESCE((SELECT string_agg(ob.quantity::text, ',' ORDER BY ob.created_at, ob.id) FROM order_breakfasts ob WHERE ob.order_id = o.id), '') AS breakfast_quantities,
COALESCE((SELECT string_agg(obo.option_id::text, ',' ORDER BY ob.created_at, ob.id, obo.id) FROM order_breakfast_options obo JOIN order_breakfasts ob ON ob.id = obo.order_breakfast_id WHERE ob.order_id = o.id), '') AS breakfast_option_ids,
COALESCE((SELECT string_agg(obo.option_name, ',' ORDER BY ob.created_at, ob.id, obo.id) FROM order_breakfast_options obo JOIN order_breakfasts ob ON ob.id = obo.order_breakfast_id WHERE ob.order_id = o.id), '') AS breakfast_option_names,
COALESCE((SELECT string_agg(obo.option_price::text, ',' ORDER BY ob.created_at, ob.id, obo.id) FROM order_breakfast_options obo JOIN order_breakfasts ob ON ob.id = obo.order_breakfast_id WHERE ob.order_id = o.id), '') AS breakfast_option_prices,
COALESCE((SELECT string_agg(COALESCE(ob.image_url, 'NULL'), ',' ORDER BY ob.created_at, ob.id) FROM order_breakfasts ob WHERE ob.order_id = o.id), '') AS breakfast_images
`

type OrderRecordRow struct {
	ID           uuid.UUID
	OrderNumber  string
	Status       string
	OrderType    string
	TableNumber  pgtype.Text
	CustomerName pgtype.Text
	Notes        pgtype.Text
	TotalAmount  pgtype.Numeric
	CreatedAt    time.Time
	UpdatedAt    time.Time

	ItemIds          string
	ItemNames        string
	UnitPrices       string
	MenuQuantities   string
	SupplementIds    string
	SupplementNames  string
	SupplementPrices string
	ItemImages       string

	BreakfastIds          string
	BreakfastNames        string
	BreakfastPrices       string
	BreakfastQuantities   string
	BreakfastOptionIds    string
	BreakfastOptionNames  string
	BreakfastOptionPrices string
	BreakfastImages       string
}

func scanOrderRecordRow(row interface{ Scan(dest ...any) error }) (OrderRecordRow, error) {
	var i OrderRecordRow
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.Status,
		&i.OrderType,
		&i.TableNumber,
		&i.CustomerName,
		&i.Notes,
		&i.TotalAmount,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.ItemIds,
		&i.ItemNames,
		&i.UnitPrices,
		&i.MenuQuantities,
		&i.SupplementIds,
		&i.SupplementNames,
		&i.SupplementPrices,
		&i.ItemImages,
		&i.BreakfastIds,
		&i.BreakfastNames,
		&i.BreakfastPrices,
		&i.BreakfastQuantities,
		&i.BreakfastOptionIds,
		&i.BreakfastOptionNames,
		&i.BreakfastOptionPrices,
		&i.BreakfastImages,
	)
	return i, err
}

const getOrderRecord = `-- name: GetOrderRecord :one
SELECT` + orderRecordColumns + `
FROM orders o
WHERE o.id = $1
`

func (q *Queries) GetOrderRecord(ctx context.Context, id uuid.UUID) (OrderRecordRow, error) {
	return scanOrderRecordRow(q.db.QueryRow(ctx, getOrderRecord, id))
}

const listActiveOrderRecords = `-- name: ListActiveOrderRecords :many
SELECT` + orderRecordColumns + `
FROM orders o
WHERE o.status IN ('NEW', 'PREPARING', 'READY')
ORDER BY o.created_at
`

func (q *Queries) ListActiveOrderRecords(ctx context.Context) ([]OrderRecordRow, error) {
	rows, err := q.db.Query(ctx, listActiveOrderRecords)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderRecordRow
	for rows.Next() {
		i, err := scanOrderRecordRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderRecords = `-- name: ListOrderRecords :many
SELECT` + orderRecordColumns + `
FROM orders o
ORDER BY o.created_at DESC
LIMIT $1 OFFSET $2
`

type ListOrderRecordsParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListOrderRecords(ctx context.Context, arg ListOrderRecordsParams) ([]OrderRecordRow, error) {
	rows, err := q.db.Query(ctx, listOrderRecords, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderRecordRow
	for rows.Next() {
		i, err := scanOrderRecordRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
