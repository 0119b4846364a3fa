package cart

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brioche-cafe/api/internal/enum"
	"github.com/brioche-cafe/api/internal/lineitem"
)

// mockPlacer implements OrderPlacer with configurable behavior.
type mockPlacer struct {
	placeFn func(ctx context.Context, req PlaceOrderRequest) (OrderRef, error)
	calls   atomic.Int64
}

func (m *mockPlacer) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (OrderRef, error) {
	m.calls.Add(1)
	if m.placeFn != nil {
		return m.placeFn(ctx, req)
	}
	return OrderRef{OrderID: uuid.New(), OrderNumber: "BRC-001"}, nil
}

func latteEntry(qty int64) Entry {
	return Entry{
		Kind:      enum.ItemKindMenu,
		ItemID:    5,
		Name:      "Latte",
		BasePrice: decimal.RequireFromString("4.50"),
		Quantity:  qty,
	}
}

// --- State machine ---

func TestDraftStates(t *testing.T) {
	d := NewDraft()
	if d.State() != enum.CartStateEmpty {
		t.Fatalf("new draft state: got %s, want EMPTY", d.State())
	}

	id := d.AddItem(latteEntry(1))
	if d.State() != enum.CartStatePopulated {
		t.Fatalf("after add: got %s, want POPULATED", d.State())
	}

	if err := d.SetQuantity(id, 0); err != nil {
		t.Fatalf("remove entry: %v", err)
	}
	if d.State() != enum.CartStateEmpty {
		t.Errorf("after removing last entry: got %s, want EMPTY", d.State())
	}
}

func TestDraftSubmittedState(t *testing.T) {
	d := NewDraft()
	d.AddItem(latteEntry(1))

	placer := &mockPlacer{}
	if _, err := d.Submit(context.Background(), placer, OrderMeta{OrderType: enum.OrderTypeTakeaway}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if d.State() != enum.CartStateSubmitted {
		t.Errorf("after success: got %s, want SUBMITTED", d.State())
	}
	if len(d.Entries()) != 0 {
		t.Errorf("entries after success: got %d, want 0", len(d.Entries()))
	}
	if _, ok := d.LastOrder(); !ok {
		t.Error("expected last order recorded after success")
	}

	// Adding again returns the cart to the normal populated flow.
	d.AddItem(latteEntry(2))
	if d.State() != enum.CartStatePopulated {
		t.Errorf("after re-add: got %s, want POPULATED", d.State())
	}
}

func TestDraftSubmissionFailedState(t *testing.T) {
	d := NewDraft()
	d.AddItem(latteEntry(2))
	before := d.Entries()

	placer := &mockPlacer{placeFn: func(ctx context.Context, req PlaceOrderRequest) (OrderRef, error) {
		return OrderRef{}, errors.New("backend unavailable")
	}}

	if _, err := d.Submit(context.Background(), placer, OrderMeta{}); err == nil {
		t.Fatal("expected submit error")
	}

	if d.State() != enum.CartStateSubmissionFailed {
		t.Errorf("after failure: got %s, want SUBMISSION_FAILED", d.State())
	}
	after := d.Entries()
	if len(after) != len(before) || after[0].Quantity != before[0].Quantity {
		t.Errorf("entries changed on failed submission: before %+v, after %+v", before, after)
	}

	// A retry path exists: the draft is still submittable.
	ok := &mockPlacer{}
	if _, err := d.Submit(context.Background(), ok, OrderMeta{}); err != nil {
		t.Errorf("retry submit: %v", err)
	}
}

// --- Entry operations ---

func TestAddItemAssignsUniqueIDs(t *testing.T) {
	d := NewDraft()
	a := d.AddItem(latteEntry(1))
	b := d.AddItem(latteEntry(1))
	if a == b {
		t.Error("cartItemIDs must be unique per entry")
	}
}

func TestSetQuantity(t *testing.T) {
	d := NewDraft()
	id := d.AddItem(latteEntry(1))

	if err := d.SetQuantity(id, 4); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if got := d.Entries()[0].Quantity; got != 4 {
		t.Errorf("quantity: got %d, want 4", got)
	}

	if err := d.SetQuantity(id, -1); !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("negative quantity: got %v, want ErrInvalidQuantity", err)
	}
	if err := d.SetQuantity(uuid.New(), 2); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("unknown entry: got %v, want ErrEntryNotFound", err)
	}
}

func TestRemove(t *testing.T) {
	d := NewDraft()
	id := d.AddItem(latteEntry(2))

	if err := d.Remove(id); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(d.Entries()) != 0 {
		t.Fatal("entry should be removed")
	}
	if err := d.Remove(uuid.New()); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("unknown entry: got %v, want ErrEntryNotFound", err)
	}
}

func TestSetQuantityZeroDropsSupplementSelection(t *testing.T) {
	d := NewDraft()
	e := latteEntry(1)
	e.Supplement = &lineitem.Selection{ID: 3, Name: "Oat milk", Price: decimal.RequireFromString("0.60")}
	id := d.AddItem(e)

	if err := d.SetQuantity(id, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(d.Entries()) != 0 {
		t.Fatal("entry should be removed")
	}
	// The supplement selection died with the entry; re-adding starts clean.
	fresh := d.AddItem(latteEntry(1))
	for _, e := range d.Entries() {
		if e.CartItemID == fresh && e.Supplement != nil {
			t.Error("fresh entry inherited a supplement selection")
		}
	}
}

func TestSetSupplement(t *testing.T) {
	d := NewDraft()
	id := d.AddItem(latteEntry(2))

	sel := &lineitem.Selection{ID: 3, Name: "Oat milk", Price: decimal.RequireFromString("0.60")}
	if err := d.SetSupplement(id, sel); err != nil {
		t.Fatalf("set supplement: %v", err)
	}

	got := d.Entries()[0]
	if got.Supplement == nil || got.Supplement.Name != "Oat milk" {
		t.Errorf("supplement: got %+v", got.Supplement)
	}
	if got.Quantity != 2 {
		t.Errorf("quantity must be untouched: got %d, want 2", got.Quantity)
	}

	bk := Entry{Kind: enum.ItemKindBreakfast, ItemID: 9, Name: "Full Breakfast", BasePrice: decimal.NewFromInt(7), Quantity: 1}
	bkID := d.AddItem(bk)
	if err := d.SetSupplement(bkID, sel); !errors.Is(err, ErrWrongKind) {
		t.Errorf("supplement on breakfast: got %v, want ErrWrongKind", err)
	}
}

// --- Display projection ---

func TestLinesMergeSameIdentity(t *testing.T) {
	d := NewDraft()
	d.AddItem(latteEntry(2))
	d.AddItem(latteEntry(3)) // same identity, separate cart entry

	other := latteEntry(1)
	other.Supplement = &lineitem.Selection{ID: 3, Name: "Oat milk", Price: decimal.RequireFromString("0.60")}
	d.AddItem(other)

	items, totals := d.Lines()
	if len(items) != 2 {
		t.Fatalf("lines: got %d, want 2", len(items))
	}

	merged := items["5-no-supplement"]
	if merged == nil {
		t.Fatal("missing merged line 5-no-supplement")
	}
	if merged.Quantity != 5 {
		t.Errorf("merged quantity: got %d, want 5 (2+3, no loss or double count)", merged.Quantity)
	}

	// (4.50 × 5) + (5.10 × 1)
	want := decimal.RequireFromString("27.60")
	if !totals.OrderTotal.Equal(want) {
		t.Errorf("order total: got %s, want %s", totals.OrderTotal, want)
	}
}

func TestLinesSurchargeAddedExplicitly(t *testing.T) {
	d := NewDraft()
	e := Entry{
		Kind:      enum.ItemKindBreakfast,
		ItemID:    9,
		Name:      "Full Breakfast",
		BasePrice: decimal.RequireFromString("7.00"),
		Quantity:  1,
		Options: []lineitem.Selection{
			{ID: 1, Name: "Eggs", Price: decimal.RequireFromString("1.00")},
			{ID: 2, Name: "Juice", Price: decimal.RequireFromString("2.00")},
		},
	}
	d.AddItem(e)

	items, totals := d.Lines()
	li := items["9-1-2"]
	if li == nil {
		t.Fatal("missing line 9-1-2")
	}
	if !li.UnitPrice.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("unit price: got %s, want 10.00 (7.00 + 1.00 + 2.00)", li.UnitPrice)
	}
	if !totals.OrderTotal.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("order total: got %s, want 10.00", totals.OrderTotal)
	}
}

// --- Submission guard ---

// Two Submit calls issued before the first resolves must produce exactly
// one order-creation call; the loser is a silent no-op.
func TestSubmitLock(t *testing.T) {
	d := NewDraft()
	d.AddItem(latteEntry(1))

	started := make(chan struct{})
	release := make(chan struct{})
	placer := &mockPlacer{placeFn: func(ctx context.Context, req PlaceOrderRequest) (OrderRef, error) {
		close(started)
		<-release
		return OrderRef{OrderID: uuid.New()}, nil
	}}

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = d.Submit(context.Background(), placer, OrderMeta{})
	}()

	<-started
	_, secondErr := d.Submit(context.Background(), placer, OrderMeta{})
	if !errors.Is(secondErr, ErrSubmitInProgress) {
		t.Errorf("concurrent submit: got %v, want ErrSubmitInProgress", secondErr)
	}

	close(release)
	wg.Wait()

	if firstErr != nil {
		t.Errorf("first submit: %v", firstErr)
	}
	if got := placer.calls.Load(); got != 1 {
		t.Errorf("placer calls: got %d, want exactly 1", got)
	}
}

func TestSubmitLockReleasedAfterFailure(t *testing.T) {
	d := NewDraft()
	d.AddItem(latteEntry(1))

	failing := &mockPlacer{placeFn: func(ctx context.Context, req PlaceOrderRequest) (OrderRef, error) {
		return OrderRef{}, errors.New("timeout")
	}}
	if _, err := d.Submit(context.Background(), failing, OrderMeta{}); err == nil {
		t.Fatal("expected failure")
	}

	// The lock must not stay held after a failed attempt.
	ok := &mockPlacer{}
	if _, err := d.Submit(context.Background(), ok, OrderMeta{}); err != nil {
		t.Errorf("submit after failure: %v", err)
	}
}

// --- Validation ---

func TestSubmitEmptyCart(t *testing.T) {
	d := NewDraft()
	if _, err := d.Submit(context.Background(), &mockPlacer{}, OrderMeta{}); !errors.Is(err, ErrEmptyCart) {
		t.Errorf("empty submit: got %v, want ErrEmptyCart", err)
	}
}

// An entry with a non-positive base price must be rejected at submission
// with an error naming the item, without mutating the draft.
func TestSubmitRejectsInvalidPrice(t *testing.T) {
	d := NewDraft()
	d.AddItem(latteEntry(1))
	bad := Entry{
		Kind:      enum.ItemKindMenu,
		ItemID:    13,
		Name:      "Mystery Special",
		BasePrice: decimal.NewFromInt(-1),
		Quantity:  1,
	}
	d.AddItem(bad)

	placer := &mockPlacer{}
	_, err := d.Submit(context.Background(), placer, OrderMeta{})
	if !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("got %v, want ErrInvalidPrice", err)
	}
	if !strings.Contains(err.Error(), "Mystery Special") {
		t.Errorf("error should name the offending item: %v", err)
	}
	if placer.calls.Load() != 0 {
		t.Errorf("placer must not be called: got %d calls", placer.calls.Load())
	}
	if len(d.Entries()) != 2 {
		t.Errorf("draft mutated by rejected submission: %d entries", len(d.Entries()))
	}
}

// --- Store ---

func TestStoreSessionIsolation(t *testing.T) {
	s := NewStore()
	a := s.Get("session-a")
	b := s.Get("session-b")
	if a == b {
		t.Fatal("sessions must get distinct drafts")
	}
	a.AddItem(latteEntry(1))
	if len(b.Entries()) != 0 {
		t.Error("draft state leaked across sessions")
	}
	if s.Get("session-a") != a {
		t.Error("Get must return the same draft for a session")
	}

	s.Drop("session-a")
	if s.Get("session-a") == a {
		t.Error("dropped session should start fresh")
	}
}
