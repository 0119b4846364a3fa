package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/brioche-cafe/api/internal/cart"
	"github.com/brioche-cafe/api/internal/database"
	"github.com/brioche-cafe/api/internal/enum"
)

const maxOrderNumberRetries = 3

// Errors returned by the order service.
var (
	ErrEmptyItems         = errors.New("items are required")
	ErrInvalidOrderType   = errors.New("invalid order_type")
	ErrInvalidQuantity    = errors.New("quantity must be > 0")
	ErrMenuItemNotFound   = errors.New("menu item not found")
	ErrItemUnavailable    = errors.New("item is out of stock")
	ErrSupplementNotFound = errors.New("supplement not found")
	ErrSupplementMismatch = errors.New("supplement does not belong to the item's category")
	ErrBreakfastNotFound  = errors.New("breakfast not found")
	ErrOptionNotFound     = errors.New("breakfast option not found")
	ErrOptionMismatch     = errors.New("option does not belong to breakfast")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed to create orders.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetNextOrderSeq(ctx context.Context) (int64, error)
	GetMenuItemForCart(ctx context.Context, id int64) (database.GetMenuItemForCartRow, error)
	GetSupplement(ctx context.Context, id int64) (database.Supplement, error)
	GetBreakfast(ctx context.Context, id int64) (database.Breakfast, error)
	GetBreakfastOption(ctx context.Context, id int64) (database.BreakfastOption, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	CreateOrderBreakfast(ctx context.Context, arg database.CreateOrderBreakfastParams) (database.OrderBreakfast, error)
	CreateOrderBreakfastOption(ctx context.Context, arg database.CreateOrderBreakfastOptionParams) (database.OrderBreakfastOption, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// OrderService turns submitted cart drafts into persisted orders. It
// satisfies cart.OrderPlacer.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// menuLine is a validated, repriced menu entry ready to insert.
type menuLine struct {
	params database.CreateOrderItemParams
}

// breakfastLine is a validated breakfast entry with its option rows.
type breakfastLine struct {
	params  database.CreateOrderBreakfastParams
	options []database.CreateOrderBreakfastOptionParams
}

// PlaceOrder validates the submitted entries against the current catalog,
// reprices them server side, and creates the order atomically. Prices sent
// by the client are never trusted; the catalog row at submission time wins,
// including any promotion in effect. Retries up to maxOrderNumberRetries
// times on order_number unique constraint violations (concurrent
// transactions racing for the same MAX sequence).
func (s *OrderService) PlaceOrder(ctx context.Context, req cart.PlaceOrderRequest) (cart.OrderRef, error) {
	orderType, err := validateOrderType(req.Meta.OrderType)
	if err != nil {
		return cart.OrderRef{}, err
	}

	if len(req.Items) == 0 {
		return cart.OrderRef{}, ErrEmptyItems
	}

	// Retry loop: handles order_number unique constraint race condition.
	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		ref, err := s.placeOrderTx(ctx, req, orderType)
		if err == nil {
			return ref, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return cart.OrderRef{}, err
	}
	return cart.OrderRef{}, lastErr
}

// isOrderNumberConflict checks if the error is a unique constraint violation
// on the order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key"
	}
	return false
}

// placeOrderTx executes the full order creation in a single transaction.
func (s *OrderService) placeOrderTx(ctx context.Context, req cart.PlaceOrderRequest, orderType string) (cart.OrderRef, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return cart.OrderRef{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	seq, err := store.GetNextOrderSeq(ctx)
	if err != nil {
		return cart.OrderRef{}, fmt.Errorf("get next order seq: %w", err)
	}
	orderNumber := fmt.Sprintf("BRC-%03d", seq)

	total := decimal.Zero
	var menuLines []menuLine
	var breakfastLines []breakfastLine

	for i, e := range req.Items {
		if e.Quantity <= 0 {
			return cart.OrderRef{}, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}

		switch e.Kind {
		case enum.ItemKindBreakfast:
			line, lineTotal, err := s.processBreakfast(ctx, store, i, e)
			if err != nil {
				return cart.OrderRef{}, err
			}
			breakfastLines = append(breakfastLines, line)
			total = total.Add(lineTotal)
		default:
			line, lineTotal, err := s.processMenuItem(ctx, store, i, e)
			if err != nil {
				return cart.OrderRef{}, err
			}
			menuLines = append(menuLines, line)
			total = total.Add(lineTotal)
		}
	}

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber:  orderNumber,
		OrderSeq:     seq,
		SessionID:    textOrNull(req.Meta.SessionID),
		CustomerName: textOrNull(req.Meta.CustomerName),
		OrderType:    orderType,
		TableNumber:  textOrNull(req.Meta.TableNumber),
		Notes:        textOrNull(req.Meta.Notes),
		Status:       enum.OrderStatusNew,
		TotalAmount:  decimalToNumeric(total),
	})
	if err != nil {
		return cart.OrderRef{}, fmt.Errorf("create order: %w", err)
	}

	for _, line := range menuLines {
		line.params.OrderID = order.ID
		if _, err := store.CreateOrderItem(ctx, line.params); err != nil {
			return cart.OrderRef{}, fmt.Errorf("create order item: %w", err)
		}
	}

	for _, line := range breakfastLines {
		line.params.OrderID = order.ID
		ob, err := store.CreateOrderBreakfast(ctx, line.params)
		if err != nil {
			return cart.OrderRef{}, fmt.Errorf("create order breakfast: %w", err)
		}
		for _, opt := range line.options {
			opt.OrderBreakfastID = ob.ID
			if _, err := store.CreateOrderBreakfastOption(ctx, opt); err != nil {
				return cart.OrderRef{}, fmt.Errorf("create order breakfast option: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return cart.OrderRef{}, fmt.Errorf("commit tx: %w", err)
	}

	return cart.OrderRef{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Total:       numericToDecimal(order.TotalAmount),
	}, nil
}

// processMenuItem validates one menu entry against the catalog and builds
// its insert params. The stored unit_price embeds the supplement surcharge,
// matching what the legacy read model reports for historical lines; the
// supplement columns carry the breakdown so the base can be recovered.
func (s *OrderService) processMenuItem(ctx context.Context, store OrderStore, i int, e cart.Entry) (menuLine, decimal.Decimal, error) {
	item, err := store.GetMenuItemForCart(ctx, e.ItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return menuLine{}, decimal.Zero, fmt.Errorf("item[%d]: %w", i, ErrMenuItemNotFound)
		}
		return menuLine{}, decimal.Zero, fmt.Errorf("item[%d]: get menu item: %w", i, err)
	}
	if !item.InStock {
		return menuLine{}, decimal.Zero, fmt.Errorf("item[%d] %s: %w", i, item.Name, ErrItemUnavailable)
	}

	basePrice := numericToDecimal(item.Price)
	if item.PromoPrice.Valid {
		basePrice = numericToDecimal(item.PromoPrice)
	}

	params := database.CreateOrderItemParams{
		MenuItemID: item.ID,
		ItemName:   item.Name,
		Quantity:   int32(e.Quantity),
		ImageUrl:   item.ImageUrl,
	}

	lineUnit := basePrice
	if e.Supplement != nil {
		supp, err := store.GetSupplement(ctx, e.Supplement.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return menuLine{}, decimal.Zero, fmt.Errorf("item[%d]: %w", i, ErrSupplementNotFound)
			}
			return menuLine{}, decimal.Zero, fmt.Errorf("item[%d]: get supplement: %w", i, err)
		}
		if supp.CategoryID != item.CategoryID {
			return menuLine{}, decimal.Zero, fmt.Errorf("item[%d]: %w", i, ErrSupplementMismatch)
		}
		suppPrice := numericToDecimal(supp.Price)
		params.SupplementID = pgtype.Int8{Int64: supp.ID, Valid: true}
		params.SupplementName = textOrNull(supp.Name)
		params.SupplementPrice = decimalToNumeric(suppPrice)
		lineUnit = lineUnit.Add(suppPrice)
	}
	params.UnitPrice = decimalToNumeric(lineUnit)

	return menuLine{params: params}, lineUnit.Mul(decimal.NewFromInt(e.Quantity)), nil
}

// processBreakfast validates one breakfast entry and its options. The
// stored unit_price embeds the option surcharges, matching what the legacy
// read model reports for breakfast lines.
func (s *OrderService) processBreakfast(ctx context.Context, store OrderStore, i int, e cart.Entry) (breakfastLine, decimal.Decimal, error) {
	bk, err := store.GetBreakfast(ctx, e.ItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return breakfastLine{}, decimal.Zero, fmt.Errorf("item[%d]: %w", i, ErrBreakfastNotFound)
		}
		return breakfastLine{}, decimal.Zero, fmt.Errorf("item[%d]: get breakfast: %w", i, err)
	}
	if !bk.InStock {
		return breakfastLine{}, decimal.Zero, fmt.Errorf("item[%d] %s: %w", i, bk.Name, ErrItemUnavailable)
	}

	unitPrice := numericToDecimal(bk.Price)
	var options []database.CreateOrderBreakfastOptionParams
	for j, sel := range e.Options {
		opt, err := store.GetBreakfastOption(ctx, sel.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return breakfastLine{}, decimal.Zero, fmt.Errorf("item[%d].options[%d]: %w", i, j, ErrOptionNotFound)
			}
			return breakfastLine{}, decimal.Zero, fmt.Errorf("item[%d].options[%d]: get option: %w", i, j, err)
		}
		if opt.BreakfastID != bk.ID {
			return breakfastLine{}, decimal.Zero, fmt.Errorf("item[%d].options[%d]: %w", i, j, ErrOptionMismatch)
		}
		optPrice := numericToDecimal(opt.Price)
		unitPrice = unitPrice.Add(optPrice)
		options = append(options, database.CreateOrderBreakfastOptionParams{
			OptionID:    opt.ID,
			OptionName:  opt.Name,
			OptionPrice: decimalToNumeric(optPrice),
		})
	}

	line := breakfastLine{
		params: database.CreateOrderBreakfastParams{
			BreakfastID:   bk.ID,
			BreakfastName: bk.Name,
			UnitPrice:     decimalToNumeric(unitPrice),
			Quantity:      int32(e.Quantity),
			ImageUrl:      bk.ImageUrl,
		},
		options: options,
	}
	return line, unitPrice.Mul(decimal.NewFromInt(e.Quantity)), nil
}

// --- Helpers ---

func validateOrderType(s string) (string, error) {
	switch s {
	case enum.OrderTypeDineIn, enum.OrderTypeTakeaway, enum.OrderTypeDelivery:
		return s, nil
	}
	return "", ErrInvalidOrderType
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
