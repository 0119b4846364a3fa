package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/brioche-cafe/api/internal/cart"
	"github.com/brioche-cafe/api/internal/database"
	"github.com/brioche-cafe/api/internal/handler"
	"github.com/brioche-cafe/api/internal/middleware"
	"github.com/brioche-cafe/api/internal/service"
)

// --- Mock catalog ---

type mockCartCatalog struct {
	menuItems  map[int64]database.GetMenuItemForCartRow
	supplement map[int64]database.Supplement
	breakfasts map[int64]database.Breakfast
	options    map[int64]database.BreakfastOption
}

func newMockCartCatalog() *mockCartCatalog {
	c := &mockCartCatalog{
		menuItems:  make(map[int64]database.GetMenuItemForCartRow),
		supplement: make(map[int64]database.Supplement),
		breakfasts: make(map[int64]database.Breakfast),
		options:    make(map[int64]database.BreakfastOption),
	}
	c.menuItems[5] = database.GetMenuItemForCartRow{
		ID: 5, CategoryID: 1, Name: "Croissant",
		Price: testNumeric("4.50"), InStock: true,
	}
	c.supplement[3] = database.Supplement{
		ID: 3, CategoryID: 1, Name: "Cheese", Price: testNumeric("1.20"), IsActive: true,
	}
	c.breakfasts[9] = database.Breakfast{
		ID: 9, Name: "Full Breakfast", Price: testNumeric("7.00"), InStock: true,
	}
	c.options[1] = database.BreakfastOption{
		ID: 1, BreakfastID: 9, Name: "Orange Juice", Price: testNumeric("1.00"), IsActive: true,
	}
	c.options[2] = database.BreakfastOption{
		ID: 2, BreakfastID: 9, Name: "Espresso", Price: testNumeric("2.00"), IsActive: true,
	}
	return c
}

func (m *mockCartCatalog) GetMenuItemForCart(_ context.Context, id int64) (database.GetMenuItemForCartRow, error) {
	item, ok := m.menuItems[id]
	if !ok {
		return database.GetMenuItemForCartRow{}, pgx.ErrNoRows
	}
	return item, nil
}

func (m *mockCartCatalog) GetSupplement(_ context.Context, id int64) (database.Supplement, error) {
	s, ok := m.supplement[id]
	if !ok {
		return database.Supplement{}, pgx.ErrNoRows
	}
	return s, nil
}

func (m *mockCartCatalog) GetBreakfast(_ context.Context, id int64) (database.Breakfast, error) {
	b, ok := m.breakfasts[id]
	if !ok {
		return database.Breakfast{}, pgx.ErrNoRows
	}
	return b, nil
}

func (m *mockCartCatalog) GetBreakfastOption(_ context.Context, id int64) (database.BreakfastOption, error) {
	o, ok := m.options[id]
	if !ok {
		return database.BreakfastOption{}, pgx.ErrNoRows
	}
	return o, nil
}

func testNumeric(s string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(s)
	return n
}

// --- Mock placer ---

type mockPlacer struct {
	placeFn func(ctx context.Context, req cart.PlaceOrderRequest) (cart.OrderRef, error)
	calls   int
}

func (m *mockPlacer) PlaceOrder(ctx context.Context, req cart.PlaceOrderRequest) (cart.OrderRef, error) {
	m.calls++
	if m.placeFn != nil {
		return m.placeFn(ctx, req)
	}
	return cart.OrderRef{
		OrderID:     uuid.New(),
		OrderNumber: "BRC-001",
		Total:       decimal.RequireFromString("9.00"),
	}, nil
}

// --- Helpers ---

func setupCartRouter(catalog *mockCartCatalog, placer cart.OrderPlacer) *chi.Mux {
	h := handler.NewCartHandler(cart.NewStore(), catalog, placer, "https://img.test")
	r := chi.NewRouter()
	r.Route("/cart", func(r chi.Router) {
		r.Use(middleware.Session)
		h.RegisterRoutes(r)
	})
	return r
}

// doCartRequest pins every request to one session so all calls in a test
// hit the same draft.
func doCartRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "test-session"})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// --- View tests ---

func TestCartView_EmptyCart(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	rr := doCartRequest(t, router, "GET", "/cart", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeObjectResponse(t, rr)
	if resp["state"] != "EMPTY" {
		t.Errorf("state: got %v, want EMPTY", resp["state"])
	}
	if resp["total"] != "0.00" {
		t.Errorf("total: got %v, want 0.00", resp["total"])
	}
}

// --- AddItem tests ---

func TestCartAddItem_MenuItem(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 2,
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeObjectResponse(t, rr)
	if resp["cart_item_id"] == nil || resp["cart_item_id"] == "" {
		t.Error("expected cart_item_id in response")
	}
	if resp["state"] != "POPULATED" {
		t.Errorf("state: got %v, want POPULATED", resp["state"])
	}
	if resp["total"] != "9.00" {
		t.Errorf("total: got %v, want 9.00", resp["total"])
	}
}

func TestCartAddItem_PromoPriceWins(t *testing.T) {
	catalog := newMockCartCatalog()
	item := catalog.menuItems[5]
	item.PromoPrice = testNumeric("3.00")
	catalog.menuItems[5] = item

	router := setupCartRouter(catalog, &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 1,
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeObjectResponse(t, rr)
	if resp["total"] != "3.00" {
		t.Errorf("total: got %v, want 3.00", resp["total"])
	}
}

func TestCartAddItem_WithSupplement(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 1, "supplement_id": 3,
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeObjectResponse(t, rr)
	// 4.50 + 1.20
	if resp["total"] != "5.70" {
		t.Errorf("total: got %v, want 5.70", resp["total"])
	}
}

func TestCartAddItem_BreakfastWithOptions(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "breakfast", "item_id": 9, "quantity": 1, "option_ids": []int64{1, 2},
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeObjectResponse(t, rr)
	// 7.00 + 1.00 + 2.00
	if resp["total"] != "10.00" {
		t.Errorf("total: got %v, want 10.00", resp["total"])
	}
}

func TestCartAddItem_MergesIdenticalLines(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 1,
	})
	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 2,
	})

	resp := decodeObjectResponse(t, rr)
	entries := resp["entries"].([]interface{})
	lines := resp["lines"].([]interface{})
	if len(entries) != 2 {
		t.Errorf("entries: got %d, want 2", len(entries))
	}
	// Same identity merges into one display line with summed quantity.
	if len(lines) != 1 {
		t.Fatalf("lines: got %d, want 1", len(lines))
	}
	line := lines[0].(map[string]interface{})
	if line["quantity"] != float64(3) {
		t.Errorf("merged quantity: got %v, want 3", line["quantity"])
	}
	if resp["total"] != "13.50" {
		t.Errorf("total: got %v, want 13.50", resp["total"])
	}
}

func TestCartAddItem_UnknownItem(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 404, "quantity": 1,
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestCartAddItem_OutOfStock(t *testing.T) {
	catalog := newMockCartCatalog()
	item := catalog.menuItems[5]
	item.InStock = false
	catalog.menuItems[5] = item

	router := setupCartRouter(catalog, &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 1,
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestCartAddItem_SupplementFromOtherCategory(t *testing.T) {
	catalog := newMockCartCatalog()
	catalog.supplement[8] = database.Supplement{
		ID: 8, CategoryID: 99, Name: "Syrup", Price: testNumeric("0.80"), IsActive: true,
	}

	router := setupCartRouter(catalog, &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 1, "supplement_id": 8,
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestCartAddItem_OptionFromOtherBreakfast(t *testing.T) {
	catalog := newMockCartCatalog()
	catalog.options[7] = database.BreakfastOption{
		ID: 7, BreakfastID: 42, Name: "Pancakes", Price: testNumeric("2.50"), IsActive: true,
	}

	router := setupCartRouter(catalog, &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "breakfast", "item_id": 9, "quantity": 1, "option_ids": []int64{7},
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestCartAddItem_InvalidKind(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "dessert", "item_id": 5, "quantity": 1,
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

// --- SetQuantity tests ---

func TestCartSetQuantity_UpdatesLine(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 1,
	})
	cartItemID := decodeObjectResponse(t, rr)["cart_item_id"].(string)

	rr = doCartRequest(t, router, "PATCH", "/cart/items/"+cartItemID, map[string]interface{}{
		"quantity": 4,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeObjectResponse(t, rr)
	if resp["total"] != "18.00" {
		t.Errorf("total: got %v, want 18.00", resp["total"])
	}
}

func TestCartSetQuantity_ZeroRemovesEntry(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 1,
	})
	cartItemID := decodeObjectResponse(t, rr)["cart_item_id"].(string)

	rr = doCartRequest(t, router, "PATCH", "/cart/items/"+cartItemID, map[string]interface{}{
		"quantity": 0,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeObjectResponse(t, rr)
	if resp["state"] != "EMPTY" {
		t.Errorf("state: got %v, want EMPTY", resp["state"])
	}
}

func TestCartSetQuantity_NegativeRejected(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 1,
	})
	cartItemID := decodeObjectResponse(t, rr)["cart_item_id"].(string)

	rr = doCartRequest(t, router, "PATCH", "/cart/items/"+cartItemID, map[string]interface{}{
		"quantity": -1,
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCartSetQuantity_UnknownEntry(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	rr := doCartRequest(t, router, "PATCH", "/cart/items/"+uuid.New().String(), map[string]interface{}{
		"quantity": 2,
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// --- RemoveItem tests ---

func TestCartRemoveItem(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 2,
	})
	cartItemID := decodeObjectResponse(t, rr)["cart_item_id"].(string)

	rr = doCartRequest(t, router, "DELETE", "/cart/items/"+cartItemID, nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeObjectResponse(t, rr)
	if resp["state"] != "EMPTY" {
		t.Errorf("state: got %v, want EMPTY", resp["state"])
	}
}

func TestCartRemoveItem_UnknownEntry(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	rr := doCartRequest(t, router, "DELETE", "/cart/items/"+uuid.New().String(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

// --- SetSupplement tests ---

func TestCartSetSupplement_AddsSurcharge(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 2,
	})
	cartItemID := decodeObjectResponse(t, rr)["cart_item_id"].(string)

	rr = doCartRequest(t, router, "PUT", "/cart/items/"+cartItemID+"/supplement", map[string]interface{}{
		"supplement_id": 3,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeObjectResponse(t, rr)
	// (4.50 + 1.20) * 2
	if resp["total"] != "11.40" {
		t.Errorf("total: got %v, want 11.40", resp["total"])
	}

	// Quantity must be untouched by the supplement change.
	entries := resp["entries"].([]interface{})
	entry := entries[0].(map[string]interface{})
	if entry["quantity"] != float64(2) {
		t.Errorf("quantity: got %v, want 2", entry["quantity"])
	}
}

func TestCartSetSupplement_ZeroClears(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 1, "supplement_id": 3,
	})
	cartItemID := decodeObjectResponse(t, rr)["cart_item_id"].(string)

	rr = doCartRequest(t, router, "PUT", "/cart/items/"+cartItemID+"/supplement", map[string]interface{}{
		"supplement_id": 0,
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeObjectResponse(t, rr)
	if resp["total"] != "4.50" {
		t.Errorf("total: got %v, want 4.50", resp["total"])
	}
}

func TestCartSetSupplement_BreakfastRejected(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "breakfast", "item_id": 9, "quantity": 1,
	})
	cartItemID := decodeObjectResponse(t, rr)["cart_item_id"].(string)

	rr = doCartRequest(t, router, "PUT", "/cart/items/"+cartItemID+"/supplement", map[string]interface{}{
		"supplement_id": 3,
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

// --- Submit tests ---

func TestCartSubmit_Success(t *testing.T) {
	placer := &mockPlacer{}
	router := setupCartRouter(newMockCartCatalog(), placer)

	doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 2,
	})

	rr := doCartRequest(t, router, "POST", "/cart/submit", map[string]interface{}{
		"order_type": "DINE_IN", "table_number": "4",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeObjectResponse(t, rr)
	if resp["order_number"] != "BRC-001" {
		t.Errorf("order_number: got %v, want BRC-001", resp["order_number"])
	}
	if placer.calls != 1 {
		t.Errorf("placer calls: got %d, want 1", placer.calls)
	}

	// A successful submission clears the cart.
	rr = doCartRequest(t, router, "GET", "/cart", nil)
	view := decodeObjectResponse(t, rr)
	if view["state"] != "SUBMITTED" {
		t.Errorf("state after submit: got %v, want SUBMITTED", view["state"])
	}
	if len(view["entries"].([]interface{})) != 0 {
		t.Error("expected empty cart after successful submission")
	}
}

func TestCartSubmit_PassesSessionAndMeta(t *testing.T) {
	var got cart.PlaceOrderRequest
	placer := &mockPlacer{placeFn: func(_ context.Context, req cart.PlaceOrderRequest) (cart.OrderRef, error) {
		got = req
		return cart.OrderRef{OrderID: uuid.New(), OrderNumber: "BRC-002", Total: decimal.Zero}, nil
	}}
	router := setupCartRouter(newMockCartCatalog(), placer)

	doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 1,
	})
	rr := doCartRequest(t, router, "POST", "/cart/submit", map[string]interface{}{
		"order_type": "TAKEAWAY", "customer_name": "Ana",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	if got.Meta.SessionID != "test-session" {
		t.Errorf("session: got %q, want test-session", got.Meta.SessionID)
	}
	if got.Meta.OrderType != "TAKEAWAY" || got.Meta.CustomerName != "Ana" {
		t.Errorf("meta: got %+v", got.Meta)
	}
	if len(got.Items) != 1 {
		t.Errorf("items: got %d, want 1", len(got.Items))
	}
}

func TestCartSubmit_EmptyCart(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	rr := doCartRequest(t, router, "POST", "/cart/submit", map[string]interface{}{
		"order_type": "DINE_IN",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCartSubmit_ValidationErrorKeepsEntries(t *testing.T) {
	placer := &mockPlacer{placeFn: func(_ context.Context, _ cart.PlaceOrderRequest) (cart.OrderRef, error) {
		return cart.OrderRef{}, service.ErrItemUnavailable
	}}
	router := setupCartRouter(newMockCartCatalog(), placer)

	doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 1,
	})
	rr := doCartRequest(t, router, "POST", "/cart/submit", map[string]interface{}{
		"order_type": "DINE_IN",
	})

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusUnprocessableEntity, rr.Body.String())
	}

	// Failed submission keeps the entries for retry.
	rr = doCartRequest(t, router, "GET", "/cart", nil)
	view := decodeObjectResponse(t, rr)
	if view["state"] != "SUBMISSION_FAILED" {
		t.Errorf("state: got %v, want SUBMISSION_FAILED", view["state"])
	}
	if len(view["entries"].([]interface{})) != 1 {
		t.Error("expected entries to survive a failed submission")
	}
}

func TestCartSubmit_InvalidPriceNamesItem(t *testing.T) {
	catalog := newMockCartCatalog()
	catalog.menuItems[6] = database.GetMenuItemForCartRow{
		ID: 6, CategoryID: 1, Name: "Mystery Special",
		Price: testNumeric("0.00"), InStock: true,
	}

	placer := &mockPlacer{}
	router := setupCartRouter(catalog, placer)

	doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 6, "quantity": 1,
	})
	rr := doCartRequest(t, router, "POST", "/cart/submit", map[string]interface{}{
		"order_type": "DINE_IN",
	})

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusUnprocessableEntity, rr.Body.String())
	}

	resp := decodeObjectResponse(t, rr)
	errMsg, _ := resp["error"].(string)
	if !bytes.Contains([]byte(errMsg), []byte("Mystery Special")) {
		t.Errorf("error should name the offending item, got %q", errMsg)
	}
	if placer.calls != 0 {
		t.Errorf("placer must not be called for an invalid cart, got %d calls", placer.calls)
	}
}

// --- Clear tests ---

func TestCartClear(t *testing.T) {
	router := setupCartRouter(newMockCartCatalog(), &mockPlacer{})

	doCartRequest(t, router, "POST", "/cart/items", map[string]interface{}{
		"kind": "menu", "item_id": 5, "quantity": 1,
	})

	rr := doCartRequest(t, router, "DELETE", "/cart", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}

	rr = doCartRequest(t, router, "GET", "/cart", nil)
	view := decodeObjectResponse(t, rr)
	if view["state"] != "EMPTY" {
		t.Errorf("state: got %v, want EMPTY", view["state"])
	}
}
