package lineitem

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/brioche-cafe/api/internal/enum"
)

// PlaceholderName is shown when a line has no usable display name.
const PlaceholderName = "Unknown item"

const (
	noSupplementKey = "no-supplement"
	noOptionsKey    = "no-options"
)

// Selection is a chosen modifier: a menu supplement or a breakfast option.
type Selection struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// LineItem is one aggregated, priced row of an order or cart preview,
// uniquely identified by its composite key (base item + modifier choice).
// A LineItem collection is a pure projection: rebuilt from scratch on every
// parse, never mutated incrementally.
type LineItem struct {
	Key       string
	Kind      string // enum.ItemKindMenu or enum.ItemKindBreakfast
	ItemID    int64
	Name      string
	Quantity  int64
	UnitPrice decimal.Decimal // as recorded, inclusive of embedded surcharges
	BasePrice decimal.Decimal // UnitPrice minus modifier surcharges
	// Supplement is set for menu lines only; at most one per line.
	Supplement *Selection
	// Options is set for breakfast lines only, deduplicated by (name, price).
	Options  []Selection
	ImageURL string
}

// AggregateLineItems groups parsed rows into line items keyed by composite
// identity. Duplicate rows for the same key overwrite quantity rather than
// add: the backend is expected to emit one row per distinct line, and when
// it does not, the later row wins. Lines that never receive a positive
// quantity are dropped from the result.
func AggregateLineItems(rows ParsedRows) map[string]*LineItem {
	items := make(map[string]*LineItem)

	for _, row := range rows.Menu {
		key := MenuKey(row.ItemID, row.SupplementID)
		li, ok := items[key]
		if !ok {
			li = &LineItem{
				Key:       key,
				Kind:      enum.ItemKindMenu,
				ItemID:    row.ItemID,
				Name:      displayName(row.Name),
				UnitPrice: row.UnitPrice,
				BasePrice: row.UnitPrice.Sub(row.SupplementPrice),
				ImageURL:  row.ImageURL,
			}
			items[key] = li
		}
		li.Quantity = row.Quantity
		if row.SupplementID > 0 && li.Supplement == nil {
			li.Supplement = &Selection{
				ID:    row.SupplementID,
				Name:  row.SupplementName,
				Price: row.SupplementPrice,
			}
		}
	}

	// Each breakfast row owns an evenly sized contiguous slice of the
	// flattened option arrays. Guard the division: zero breakfast rows with
	// leftover options is contradictory input and yields no options at all.
	perRow := 0
	if len(rows.Breakfast) > 0 {
		perRow = len(rows.OptionIDs) / len(rows.Breakfast)
	}

	for i, row := range rows.Breakfast {
		lo := i * perRow
		hi := lo + perRow
		if hi > len(rows.OptionIDs) {
			hi = len(rows.OptionIDs)
		}

		var selected []Selection
		for j := lo; j < hi; j++ {
			if rows.OptionIDs[j] <= 0 {
				continue
			}
			selected = append(selected, Selection{
				ID:    rows.OptionIDs[j],
				Name:  optionName(rows.OptionNames, j),
				Price: optionPrice(rows.OptionPrices, j),
			})
		}

		key := BreakfastKey(row.BreakfastID, selected)
		li, ok := items[key]
		if !ok {
			li = &LineItem{
				Key:       key,
				Kind:      enum.ItemKindBreakfast,
				ItemID:    row.BreakfastID,
				Name:      displayName(row.Name),
				UnitPrice: row.UnitPrice,
				ImageURL:  row.ImageURL,
			}
			items[key] = li
		}
		li.Quantity = row.Quantity

		for _, sel := range selected {
			if !hasOption(li.Options, sel) {
				li.Options = append(li.Options, sel)
			}
		}

		// The recorded unit price embeds the option surcharges; the base is
		// recovered by subtracting the selected options.
		surcharge := decimal.Zero
		for _, sel := range li.Options {
			surcharge = surcharge.Add(sel.Price)
		}
		li.BasePrice = li.UnitPrice.Sub(surcharge)
	}

	for key, li := range items {
		if li.Quantity <= 0 {
			delete(items, key)
		}
	}

	return items
}

// MenuKey builds the composite identity key for a menu line:
// item id plus its supplement choice.
func MenuKey(itemID, supplementID int64) string {
	if supplementID <= 0 {
		return strconv.FormatInt(itemID, 10) + "-" + noSupplementKey
	}
	return strconv.FormatInt(itemID, 10) + "-" + strconv.FormatInt(supplementID, 10)
}

// BreakfastKey builds the composite identity key for a breakfast line:
// breakfast id plus the sorted ids of its selected options.
func BreakfastKey(breakfastID int64, options []Selection) string {
	if len(options) == 0 {
		return strconv.FormatInt(breakfastID, 10) + "-" + noOptionsKey
	}
	ids := make([]int64, len(options))
	for i, o := range options {
		ids[i] = o.ID
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	parts := make([]string, len(ids)+1)
	parts[0] = strconv.FormatInt(breakfastID, 10)
	for i, id := range ids {
		parts[i+1] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, "-")
}

func displayName(name string) string {
	if name == "" {
		return PlaceholderName
	}
	return name
}

// hasOption reports whether an equivalent option (same name and price) is
// already recorded, regardless of id.
func hasOption(opts []Selection, sel Selection) bool {
	for _, o := range opts {
		if o.Name == sel.Name && o.Price.Equal(sel.Price) {
			return true
		}
	}
	return false
}

func optionName(names []string, i int) string {
	if i >= len(names) {
		return ""
	}
	return names[i]
}

func optionPrice(prices []decimal.Decimal, i int) decimal.Decimal {
	if i >= len(prices) {
		return decimal.Zero
	}
	return prices[i]
}
