package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brioche-cafe/api/internal/enum"
	"github.com/brioche-cafe/api/internal/lineitem"
)

// Errors returned by draft operations.
var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrEntryNotFound    = errors.New("cart entry not found")
	ErrInvalidQuantity  = errors.New("quantity must be >= 0")
	ErrInvalidPrice     = errors.New("item has an invalid price")
	ErrSubmitInProgress = errors.New("submission already in progress")
	ErrWrongKind        = errors.New("supplement applies to menu items only")
)

// Entry is a single user-added cart line, identified by a client-unique
// cartItemID. Entries are the only cart state with a real create/mutate/
// destroy lifecycle; everything displayed is a projection over them.
type Entry struct {
	CartItemID uuid.UUID
	Kind       string // enum.ItemKindMenu or enum.ItemKindBreakfast
	ItemID     int64
	Name       string
	BasePrice  decimal.Decimal
	Quantity   int64
	Supplement *lineitem.Selection   // menu entries only
	Options    []lineitem.Selection  // breakfast entries only
	ImageURL   string
}

// UnitPrice is the entry's price for one unit with surcharges added
// explicitly, since a draft entry does not embed them the way historical
// order records do.
func (e Entry) UnitPrice() decimal.Decimal {
	supp := decimal.Zero
	if e.Supplement != nil {
		supp = e.Supplement.Price
	}
	opts := make([]decimal.Decimal, len(e.Options))
	for i, o := range e.Options {
		opts[i] = o.Price
	}
	return lineitem.CartUnitPrice(e.BasePrice, supp, opts)
}

func (e Entry) identityKey() string {
	if e.Kind == enum.ItemKindBreakfast {
		return lineitem.BreakfastKey(e.ItemID, e.Options)
	}
	suppID := int64(0)
	if e.Supplement != nil {
		suppID = e.Supplement.ID
	}
	return lineitem.MenuKey(e.ItemID, suppID)
}

// OrderMeta carries the order-level fields collected at checkout.
type OrderMeta struct {
	SessionID    string
	OrderType    string
	TableNumber  string
	CustomerName string
	Notes        string
}

// PlaceOrderRequest is what a Draft hands to its injected OrderPlacer.
type PlaceOrderRequest struct {
	Meta  OrderMeta
	Items []Entry
}

// OrderRef identifies the order created by a successful submission.
type OrderRef struct {
	OrderID     uuid.UUID
	OrderNumber string
	Total       decimal.Decimal
}

// OrderPlacer creates an order from a submitted draft. It is injected per
// call rather than held as ambient state so drafts stay independently
// testable.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (OrderRef, error)
}

// Draft is a session's mutable cart. It moves through
// EMPTY → POPULATED → SUBMITTING → (SUBMITTED | SUBMISSION_FAILED),
// where a failed submission returns to POPULATED with entries intact and a
// successful one clears the cart.
//
// Entry mutation is serialized by mu. Submission additionally holds a
// non-reentrant lock so that two rapid Submit calls produce at most one
// order-creation call; the loser is a no-op.
type Draft struct {
	mu         sync.Mutex
	entries    []Entry
	submitted  bool // last transition was a successful submission
	failed     bool // last transition was a failed submission
	submitting atomic.Bool
	lastOrder  OrderRef
}

func NewDraft() *Draft {
	return &Draft{}
}

// State reports the draft's current lifecycle state.
func (d *Draft) State() string {
	if d.submitting.Load() {
		return enum.CartStateSubmitting
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	switch {
	case len(d.entries) > 0 && d.failed:
		return enum.CartStateSubmissionFailed
	case len(d.entries) > 0:
		return enum.CartStatePopulated
	case d.submitted:
		return enum.CartStateSubmitted
	default:
		return enum.CartStateEmpty
	}
}

// AddItem appends a new entry and assigns it a fresh cartItemID.
func (d *Draft) AddItem(e Entry) uuid.UUID {
	d.mu.Lock()
	defer d.mu.Unlock()
	e.CartItemID = uuid.New()
	if e.Quantity <= 0 {
		e.Quantity = 1
	}
	d.entries = append(d.entries, e)
	d.submitted = false
	d.failed = false
	return e.CartItemID
}

// SetQuantity updates an entry's quantity in place. Zero removes the entry
// along with its supplement selection; negative values are rejected.
func (d *Draft) SetQuantity(cartItemID uuid.UUID, n int64) error {
	if n < 0 {
		return ErrInvalidQuantity
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.entries {
		if d.entries[i].CartItemID != cartItemID {
			continue
		}
		if n == 0 {
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
		} else {
			d.entries[i].Quantity = n
		}
		d.failed = false
		return nil
	}
	return ErrEntryNotFound
}

// Remove drops an entry and its supplement selection from the draft.
func (d *Draft) Remove(cartItemID uuid.UUID) error {
	return d.SetQuantity(cartItemID, 0)
}

// SetSupplement replaces the entry's chosen supplement (nil clears it).
// Quantity is untouched.
func (d *Draft) SetSupplement(cartItemID uuid.UUID, sel *lineitem.Selection) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.entries {
		if d.entries[i].CartItemID != cartItemID {
			continue
		}
		if d.entries[i].Kind != enum.ItemKindMenu {
			return ErrWrongKind
		}
		d.entries[i].Supplement = sel
		return nil
	}
	return ErrEntryNotFound
}

// Entries returns a snapshot copy of the draft's entries.
func (d *Draft) Entries() []Entry {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// LastOrder returns the reference recorded by the most recent successful
// submission, if any.
func (d *Draft) LastOrder() (OrderRef, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastOrder, d.submitted
}

// Lines projects the entries into display line items and totals. Entries
// sharing the same underlying identity merge into one line without losing
// or double-counting quantity. The projection is rebuilt from scratch on
// every call.
func (d *Draft) Lines() (map[string]*lineitem.LineItem, lineitem.Totals) {
	d.mu.Lock()
	defer d.mu.Unlock()

	items := make(map[string]*lineitem.LineItem)
	for _, e := range d.entries {
		key := e.identityKey()
		li, ok := items[key]
		if !ok {
			li = &lineitem.LineItem{
				Key:        key,
				Kind:       e.Kind,
				ItemID:     e.ItemID,
				Name:       e.Name,
				UnitPrice:  e.UnitPrice(),
				BasePrice:  e.BasePrice,
				Supplement: e.Supplement,
				Options:    e.Options,
				ImageURL:   e.ImageURL,
			}
			items[key] = li
		}
		li.Quantity += e.Quantity
	}

	return items, lineitem.ComputeTotals(items)
}

// Submit validates the draft and places the order through the given
// placer. A concurrent call while a submission is in flight returns
// ErrSubmitInProgress without touching anything. On placer failure the
// entries are retained unchanged so the user can retry; on success the
// cart is cleared and the created order recorded.
func (d *Draft) Submit(ctx context.Context, placer OrderPlacer, meta OrderMeta) (OrderRef, error) {
	if !d.submitting.CompareAndSwap(false, true) {
		return OrderRef{}, ErrSubmitInProgress
	}
	defer d.submitting.Store(false)

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.entries) == 0 {
		return OrderRef{}, ErrEmptyCart
	}

	for _, e := range d.entries {
		if e.BasePrice.LessThanOrEqual(decimal.Zero) {
			return OrderRef{}, fmt.Errorf("%w: %s", ErrInvalidPrice, e.Name)
		}
	}

	items := make([]Entry, len(d.entries))
	copy(items, d.entries)

	ref, err := placer.PlaceOrder(ctx, PlaceOrderRequest{Meta: meta, Items: items})
	if err != nil {
		d.failed = true
		return OrderRef{}, err
	}

	d.entries = nil
	d.failed = false
	d.submitted = true
	d.lastOrder = ref
	return ref, nil
}
