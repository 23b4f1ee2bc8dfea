package book

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// AccountType is the type of an account. Values follow the GnuCash numbering.
type AccountType int

const (
	Bank AccountType = iota
	Cash
	Asset
	Credit
	Liability
	Stock
	Mutual
	CurrencyAccount
	Income
	Expense
	Equity
	Receivable
	Payable
	Root
	Trading
	Checking
	Savings
	MoneyMarket
	CreditLine
)

var accountTypeNames = [...]string{
	Bank:            "BANK",
	Cash:            "CASH",
	Asset:           "ASSET",
	Credit:          "CREDIT",
	Liability:       "LIABILITY",
	Stock:           "STOCK",
	Mutual:          "MUTUAL",
	CurrencyAccount: "CURRENCY",
	Income:          "INCOME",
	Expense:         "EXPENSE",
	Equity:          "EQUITY",
	Receivable:      "RECEIVABLE",
	Payable:         "PAYABLE",
	Root:            "ROOT",
	Trading:         "TRADING",
	Checking:        "CHECKING",
	Savings:         "SAVINGS",
	MoneyMarket:     "MONEYMRKT",
	CreditLine:      "CREDITLINE",
}

func (t AccountType) String() string {
	if t < 0 || int(t) >= len(accountTypeNames) {
		return "AccountType(" + strconv.Itoa(int(t)) + ")"
	}
	return accountTypeNames[t]
}

// ParseAccountType parses an account type name (case-insensitive) or its number.
func ParseAccountType(s string) (AccountType, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		if i < 0 || i >= len(accountTypeNames) {
			return 0, fmt.Errorf("unknown account type %d", i)
		}
		return AccountType(i), nil
	}
	if i := slices.Index(accountTypeNames[:], strings.ToUpper(s)); i >= 0 {
		return AccountType(i), nil
	}
	return 0, fmt.Errorf("unknown account type %q", s)
}

func (t AccountType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *AccountType) UnmarshalText(text []byte) error {
	v, err := ParseAccountType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// AccountTypes is a set of account types.
type AccountTypes uint32

// DeletableTypes are the account types whose transactions can be pruned by
// default: money in and out of the book, not investments.
var DeletableTypes = NewAccountTypes(Bank, Cash, Credit, Liability, Income, Expense, Equity)

// NewAccountTypes returns the set of the given types.
func NewAccountTypes(types ...AccountType) AccountTypes {
	var s AccountTypes
	for _, t := range types {
		s |= 1 << t
	}
	return s
}

// ParseAccountTypes parses a comma separated list of account types.
func ParseAccountTypes(s string) (AccountTypes, error) {
	var types []AccountType
	for _, name := range strings.Split(s, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		t, err := ParseAccountType(name)
		if err != nil {
			return 0, err
		}
		types = append(types, t)
	}
	if len(types) == 0 {
		return 0, fmt.Errorf("empty account type list %q", s)
	}
	return NewAccountTypes(types...), nil
}

// Has reports whether t is in the set.
func (s AccountTypes) Has(t AccountType) bool { return t >= 0 && s&(1<<t) != 0 }

// Types returns the types in the set, in numbering order.
func (s AccountTypes) Types() []AccountType {
	var types []AccountType
	for t := range AccountType(len(accountTypeNames)) {
		if s.Has(t) {
			types = append(types, t)
		}
	}
	return types
}

func (s AccountTypes) String() string {
	var names []string
	for _, t := range s.Types() {
		names = append(names, t.String())
	}
	return strings.Join(names, ",")
}

// Account is a node of the account tree.
type Account struct {
	GUID        GUID
	Name        string
	Type        AccountType
	Commodity   *Commodity
	Description string
	Placeholder bool
	Parent      *Account

	children []*Account
	splits   []*Split
}

// Children returns the direct sub-accounts sorted by name.
func (a *Account) Children() []*Account { return a.children }

// Splits returns the splits posted to this account in chronological order.
func (a *Account) Splits() []*Split {
	slices.SortStableFunc(a.splits, func(x, y *Split) int {
		if c := x.Transaction.Date.Compare(y.Transaction.Date); c != 0 {
			return c
		}
		return strings.Compare(string(x.Transaction.GUID), string(y.Transaction.GUID))
	})
	return a.splits
}

// FullName returns the colon separated path of the account, the root excluded.
func (a *Account) FullName() string {
	if a.Parent == nil {
		return ""
	}
	if prefix := a.Parent.FullName(); prefix != "" {
		return prefix + ":" + a.Name
	}
	return a.Name
}

// Walk calls fn for a and each of its descendants, depth-first, parents first.
func (a *Account) Walk(fn func(*Account) error) error {
	if err := fn(a); err != nil {
		return err
	}
	for _, child := range a.children {
		if err := child.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

func (a *Account) addChild(child *Account) {
	i, _ := slices.BinarySearchFunc(a.children, child, func(x, y *Account) int {
		return strings.Compare(x.Name, y.Name)
	})
	a.children = slices.Insert(a.children, i, child)
	child.Parent = a
}

func (a *Account) removeSplit(s *Split) {
	a.splits = slices.DeleteFunc(a.splits, func(x *Split) bool { return x == s })
}
