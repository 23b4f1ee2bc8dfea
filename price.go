package book

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/etnz/book/date"
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

// Price types and sources used for quotes entered by the tools.
const (
	PriceTypeLast   = "last"
	PriceSourceUser = "user:price-editor"
)

// PriceMaxDenom is the largest denominator kept for a price value.
const PriceMaxDenom = 1_000_000

// Price is the value of one unit of Commodity in Currency on a Date.
type Price struct {
	GUID      GUID
	Commodity *Commodity
	Currency  *Commodity
	Date      date.Date
	Value     decimal.Decimal
	Type      string // last, bid, ask, nav, unknown
	Source    string
}

// pair identifies the prices of a commodity in a currency.
type pair struct{ commodity, currency *Commodity }

// PriceDB stores the prices of a book, indexed per commodity and currency in
// chronological order.
type PriceDB struct {
	book  *Book
	pairs map[pair]*btree.BTreeG[*Price]
}

func newPriceDB(b *Book) *PriceDB {
	return &PriceDB{book: b, pairs: make(map[pair]*btree.BTreeG[*Price])}
}

func priceLess(a, b *Price) bool {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c < 0
	}
	return a.GUID < b.GUID
}

// Add inserts p in the database, assigning it a GUID if it has none.
func (db *PriceDB) Add(p *Price) error {
	if p.Commodity == nil || p.Currency == nil {
		return fmt.Errorf("invalid price on %s: commodity and currency are required", p.Date)
	}
	if p.Commodity == p.Currency {
		return fmt.Errorf("invalid price on %s: %s cannot be priced in itself", p.Date, p.Commodity)
	}
	if p.GUID == "" {
		p.GUID = NewGUID()
	}
	key := pair{p.Commodity, p.Currency}
	tree, ok := db.pairs[key]
	if !ok {
		tree = btree.NewBTreeG(priceLess)
		db.pairs[key] = tree
	}
	if _, exists := tree.Get(p); exists {
		return fmt.Errorf("duplicate price %s", p.GUID)
	}
	tree.Set(p)
	db.book.changes.addPrice(p)
	return nil
}

// Remove deletes p from the database. It returns false if p was not there.
func (db *PriceDB) Remove(p *Price) bool {
	tree, ok := db.pairs[pair{p.Commodity, p.Currency}]
	if !ok {
		return false
	}
	if _, deleted := tree.Delete(p); !deleted {
		return false
	}
	db.book.changes.removePrice(p)
	return true
}

// Prices returns the prices of commodity in currency, newest first.
func (db *PriceDB) Prices(commodity, currency *Commodity) []*Price {
	tree, ok := db.pairs[pair{commodity, currency}]
	if !ok {
		return nil
	}
	prices := tree.Items()
	slices.Reverse(prices)
	return prices
}

// Latest returns the most recent price of commodity in currency.
func (db *PriceDB) Latest(commodity, currency *Commodity) (*Price, bool) {
	tree, ok := db.pairs[pair{commodity, currency}]
	if !ok {
		return nil, false
	}
	return tree.Max()
}

// Purge removes every price of commodity in currency and returns how many were removed.
func (db *PriceDB) Purge(commodity, currency *Commodity) int {
	prices := db.Prices(commodity, currency)
	for _, p := range prices {
		db.Remove(p)
	}
	return len(prices)
}

// Len returns the number of prices in the database.
func (db *PriceDB) Len() int {
	n := 0
	for _, tree := range db.pairs {
		n += tree.Len()
	}
	return n
}

// All iterates over every price, grouped by commodity then currency, in chronological order.
func (db *PriceDB) All() iter.Seq[*Price] {
	keys := make([]pair, 0, len(db.pairs))
	for k := range db.pairs {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b pair) int {
		if c := strings.Compare(a.commodity.Key(), b.commodity.Key()); c != 0 {
			return c
		}
		return strings.Compare(a.currency.Key(), b.currency.Key())
	})
	return func(yield func(*Price) bool) {
		for _, k := range keys {
			for _, p := range db.pairs[k].Items() {
				if !yield(p) {
					return
				}
			}
		}
	}
}
