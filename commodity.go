package book

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// CurrencyNamespace is the namespace of ISO 4217 currencies.
const CurrencyNamespace = "CURRENCY"

// Commodity is anything that can be counted in an account: a currency, a stock, a fund.
type Commodity struct {
	GUID      GUID
	Namespace string
	Mnemonic  string
	Fullname  string
	Fraction  int // smallest fraction, e.g. 100 for cents
}

// Key returns the NAMESPACE:MNEMONIC identifier of the commodity.
func (c *Commodity) Key() string { return c.Namespace + ":" + c.Mnemonic }

func (c *Commodity) String() string { return c.Key() }

// IsCurrency reports whether the commodity is an ISO currency.
func (c *Commodity) IsCurrency() bool { return c.Namespace == CurrencyNamespace }

// Format formats a value counted in this commodity. Currencies use their
// symbol and fraction, other commodities the plain decimal value.
func (c *Commodity) Format(v decimal.Decimal) string {
	if c == nil || !c.IsCurrency() {
		return v.String()
	}
	cur := money.GetCurrency(c.Mnemonic)
	if cur == nil {
		return v.StringFixed(2) + " " + c.Mnemonic
	}
	return cur.Formatter().Format(v.Shift(int32(cur.Fraction)).Round(0).IntPart())
}

// SplitKey splits a NAMESPACE:MNEMONIC identifier.
func SplitKey(key string) (namespace, mnemonic string, err error) {
	namespace, mnemonic, ok := strings.Cut(key, ":")
	if !ok || namespace == "" || mnemonic == "" {
		return "", "", fmt.Errorf("invalid commodity %q want NAMESPACE:MNEMONIC", key)
	}
	return namespace, mnemonic, nil
}

// CommodityTable holds the commodities of a book.
type CommodityTable struct {
	book  *Book
	byKey map[string]*Commodity
}

func newCommodityTable(b *Book) *CommodityTable {
	return &CommodityTable{book: b, byKey: make(map[string]*Commodity)}
}

// Lookup returns the commodity in namespace with mnemonic or nil.
//
// ISO currencies always exist: a currency code missing from the book is added
// on first lookup.
func (t *CommodityTable) Lookup(namespace, mnemonic string) *Commodity {
	if namespace == CurrencyNamespace {
		mnemonic = strings.ToUpper(mnemonic)
	}
	if c, ok := t.byKey[namespace+":"+mnemonic]; ok {
		return c
	}
	if namespace != CurrencyNamespace {
		return nil
	}
	cur := money.GetCurrency(mnemonic)
	if cur == nil {
		return nil
	}
	c := &Commodity{
		GUID:      NewGUID(),
		Namespace: CurrencyNamespace,
		Mnemonic:  cur.Code,
		Fullname:  cur.Code,
		Fraction:  int(math.Pow10(cur.Fraction)),
	}
	t.byKey[c.Key()] = c
	t.book.changes.commodity(c)
	return c
}

// LookupKey is like Lookup with a NAMESPACE:MNEMONIC key.
func (t *CommodityTable) LookupKey(key string) *Commodity {
	namespace, mnemonic, err := SplitKey(key)
	if err != nil {
		return nil
	}
	return t.Lookup(namespace, mnemonic)
}

// Insert adds c to the table. It fails if a commodity with the same key exists.
func (t *CommodityTable) Insert(c *Commodity) error {
	if c.Namespace == "" || c.Mnemonic == "" {
		return fmt.Errorf("invalid commodity %q: namespace and mnemonic are required", c.Key())
	}
	if _, exists := t.byKey[c.Key()]; exists {
		return fmt.Errorf("commodity %q already exists", c.Key())
	}
	if c.GUID == "" {
		c.GUID = NewGUID()
	}
	if c.Fraction == 0 {
		c.Fraction = 1
	}
	t.byKey[c.Key()] = c
	t.book.changes.commodity(c)
	return nil
}

// All returns the commodities sorted by key.
func (t *CommodityTable) All() []*Commodity {
	all := make([]*Commodity, 0, len(t.byKey))
	for _, c := range t.byKey {
		all = append(all, c)
	}
	slices.SortFunc(all, func(a, b *Commodity) int { return strings.Compare(a.Key(), b.Key()) })
	return all
}
