package lineitem

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// nullToken is the literal the legacy backend emits in place of a missing value.
const nullToken = "NULL"

// RawOrderRecord is the denormalized order payload produced by the legacy
// read model: one row per order, with per-line values comma-joined into
// parallel string fields. Positions are implicitly aligned across fields
// (item_ids[i] belongs with item_names[i], unit_prices[i], ...), but the
// source does not guarantee it: any field may be shorter than its siblings
// or carry the literal "NULL". This struct is the single place that shape
// is allowed to exist; everything downstream works on parsed rows.
type RawOrderRecord struct {
	ItemIDs          string `json:"item_ids"`
	ItemNames        string `json:"item_names"`
	UnitPrices       string `json:"unit_prices"`
	MenuQuantities   string `json:"menu_quantities"`
	SupplementIDs    string `json:"supplement_ids"`
	SupplementNames  string `json:"supplement_names"`
	SupplementPrices string `json:"supplement_prices"`
	ItemImages       string `json:"item_images"`

	BreakfastIDs          string `json:"breakfast_ids"`
	BreakfastNames        string `json:"breakfast_names"`
	BreakfastPrices       string `json:"breakfast_prices"`
	BreakfastQuantities   string `json:"breakfast_quantities"`
	BreakfastOptionIDs    string `json:"breakfast_option_ids"`
	BreakfastOptionNames  string `json:"breakfast_option_names"`
	BreakfastOptionPrices string `json:"breakfast_option_prices"`
	BreakfastImages       string `json:"breakfast_images"`
}

// MenuRow is one parsed menu line: a menu item with at most one supplement.
type MenuRow struct {
	ItemID          int64
	Name            string
	UnitPrice       decimal.Decimal
	Quantity        int64
	SupplementID    int64 // 0 = no supplement
	SupplementName  string
	SupplementPrice decimal.Decimal
	ImageURL        string
}

// BreakfastRow is one parsed breakfast line. Its selected options live in
// the flattened option arrays of ParsedRows; each row owns a contiguous,
// evenly sized slice of them (legacy convention).
type BreakfastRow struct {
	BreakfastID int64
	Name        string
	UnitPrice   decimal.Decimal
	Quantity    int64
	ImageURL    string
}

// ParsedRows is the best-effort result of decoding a RawOrderRecord.
type ParsedRows struct {
	Menu      []MenuRow
	Breakfast []BreakfastRow

	OptionIDs    []int64
	OptionNames  []string
	OptionPrices []decimal.Decimal
}

// ParseOrderRecord decodes a RawOrderRecord into aligned typed rows.
//
// It never fails: a row index is considered only while it is within bounds
// of the shorter of the id/name/quantity/price fields for its kind, rows
// whose primary id is missing or unparsable are dropped, and missing or
// malformed numeric tokens fall back to zero. Worst case the result is
// empty, not an error.
func ParseOrderRecord(raw RawOrderRecord) ParsedRows {
	var out ParsedRows

	itemIDs := splitField(raw.ItemIDs)
	itemNames := splitField(raw.ItemNames)
	unitPrices := splitField(raw.UnitPrices)
	menuQtys := splitField(raw.MenuQuantities)
	suppIDs := splitField(raw.SupplementIDs)
	suppNames := splitField(raw.SupplementNames)
	suppPrices := splitField(raw.SupplementPrices)
	itemImages := splitField(raw.ItemImages)

	n := minLen(itemIDs, itemNames, unitPrices, menuQtys)
	for i := 0; i < n; i++ {
		id := intAt(itemIDs, i, 0)
		if id <= 0 {
			continue
		}
		out.Menu = append(out.Menu, MenuRow{
			ItemID:          id,
			Name:            strAt(itemNames, i),
			UnitPrice:       decAt(unitPrices, i),
			Quantity:        intAt(menuQtys, i, 0),
			SupplementID:    intAt(suppIDs, i, 0),
			SupplementName:  strAt(suppNames, i),
			SupplementPrice: decAt(suppPrices, i),
			ImageURL:        strAt(itemImages, i),
		})
	}

	bkIDs := splitField(raw.BreakfastIDs)
	bkNames := splitField(raw.BreakfastNames)
	bkPrices := splitField(raw.BreakfastPrices)
	bkQtys := splitField(raw.BreakfastQuantities)
	bkImages := splitField(raw.BreakfastImages)

	m := minLen(bkIDs, bkNames, bkPrices, bkQtys)
	for i := 0; i < m; i++ {
		id := intAt(bkIDs, i, 0)
		if id <= 0 {
			continue
		}
		out.Breakfast = append(out.Breakfast, BreakfastRow{
			BreakfastID: id,
			Name:        strAt(bkNames, i),
			UnitPrice:   decAt(bkPrices, i),
			Quantity:    intAt(bkQtys, i, 0),
			ImageURL:    strAt(bkImages, i),
		})
	}

	optIDs := splitField(raw.BreakfastOptionIDs)
	optNames := splitField(raw.BreakfastOptionNames)
	optPrices := splitField(raw.BreakfastOptionPrices)
	for i := range optIDs {
		out.OptionIDs = append(out.OptionIDs, intAt(optIDs, i, 0))
		out.OptionNames = append(out.OptionNames, strAt(optNames, i))
		out.OptionPrices = append(out.OptionPrices, decAt(optPrices, i))
	}

	return out
}

// splitField splits a comma-joined field into trimmed tokens.
// An absent or empty field yields no tokens rather than one empty token.
func splitField(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// strAt returns the token at i, mapping "NULL" and out-of-bounds to "".
func strAt(tokens []string, i int) string {
	if i < 0 || i >= len(tokens) {
		return ""
	}
	if tokens[i] == nullToken {
		return ""
	}
	return tokens[i]
}

// intAt parses the token at i as an integer, substituting def for missing,
// "NULL", or unparsable tokens. Floats like "2.0" are truncated rather than
// rejected since the legacy backend is not strict about quantity types.
func intAt(tokens []string, i int, def int64) int64 {
	tok := strAt(tokens, i)
	if tok == "" {
		return def
	}
	if v, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return int64(f)
	}
	return def
}

// decAt parses the token at i as a decimal price, substituting zero for
// missing, "NULL", or unparsable tokens. Never propagates a parse failure.
func decAt(tokens []string, i int) decimal.Decimal {
	tok := strAt(tokens, i)
	if tok == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(tok)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func minLen(fields ...[]string) int {
	n := -1
	for _, f := range fields {
		if n < 0 || len(f) < n {
			n = len(f)
		}
	}
	if n < 0 {
		return 0
	}
	return n
}

// NormalizeImageURL resolves a stored image reference to an absolute path.
// Already-absolute values (full URLs or rooted paths) pass through untouched.
func NormalizeImageURL(baseURL, img string) string {
	if img == "" {
		return ""
	}
	if strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") || strings.HasPrefix(img, "/") {
		return img
	}
	return strings.TrimRight(baseURL, "/") + "/" + img
}
