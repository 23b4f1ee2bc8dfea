package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/etnz/book"
	"github.com/etnz/book/date"
	"github.com/etnz/book/quotes"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container and returns its URL.
func setupTestDB(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("gnucash"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return url
}

// seed writes a root, a bank, a grocery account and two transactions, the way
// GnuCash lays them out.
func seed(t *testing.T, url string) {
	t.Helper()
	ctx := context.Background()
	db, err := sql.Open("postgres", url)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, CreateSchema(ctx, db))

	statements := []string{
		`INSERT INTO commodities VALUES
			('c0000000000000000000000000000aud', 'CURRENCY', 'AUD', 'Australian Dollar', '036', 100, 1, 'currency', ''),
			('c0000000000000000000000000000bhp', 'ASX', 'BHP', 'BHP Group', '', 1, 0, '', '')`,
		`INSERT INTO accounts VALUES
			('a00000000000000000000000000000r0', 'Root Account', 'ROOT', NULL, 0, 0, NULL, '', '', 0, 0),
			('a00000000000000000000000000000t0', 'Template Root', 'ROOT', NULL, 0, 0, NULL, '', '', 0, 0),
			('a0000000000000000000000000000bnk', 'Bank', 'BANK', 'c0000000000000000000000000000aud', 100, 0, 'a00000000000000000000000000000r0', '', '', 0, 0),
			('a0000000000000000000000000000grc', 'Groceries', 'EXPENSE', 'c0000000000000000000000000000aud', 100, 0, 'a00000000000000000000000000000r0', '', '', 0, 0),
			('a0000000000000000000000000000shr', 'Shares', 'STOCK', 'c0000000000000000000000000000bhp', 1, 0, 'a00000000000000000000000000000r0', '', '', 0, 0),
			('a0000000000000000000000000000tpl', 'template', 'BANK', 'c0000000000000000000000000000aud', 100, 0, 'a00000000000000000000000000000t0', '', '', 0, 0)`,
		`INSERT INTO books VALUES ('b0000000000000000000000000000000', 'a00000000000000000000000000000r0', 'a00000000000000000000000000000t0')`,
		`INSERT INTO transactions VALUES
			('t0000000000000000000000000000001', 'c0000000000000000000000000000aud', '', '2024-01-10 10:59:00', '2024-01-10 12:00:00', 'Supermarket'),
			('t0000000000000000000000000000002', 'c0000000000000000000000000000aud', '', '2024-01-15 10:59:00', '2024-01-15 12:00:00', 'Buy BHP'),
			('t0000000000000000000000000000003', 'c0000000000000000000000000000aud', '', '2024-01-01 10:59:00', '2024-01-01 12:00:00', 'Scheduled')`,
		`INSERT INTO splits VALUES
			('s0000000000000000000000000000011', 't0000000000000000000000000000001', 'a0000000000000000000000000000bnk', '', '', 'n', NULL, -5025, 100, -5025, 100, NULL),
			('s0000000000000000000000000000012', 't0000000000000000000000000000001', 'a0000000000000000000000000000grc', '', '', 'n', NULL, 5025, 100, 5025, 100, NULL),
			('s0000000000000000000000000000021', 't0000000000000000000000000000002', 'a0000000000000000000000000000bnk', '', '', 'n', NULL, -45000, 100, -45000, 100, NULL),
			('s0000000000000000000000000000022', 't0000000000000000000000000000002', 'a0000000000000000000000000000shr', '', '', 'n', NULL, 45000, 100, 10, 1, NULL),
			('s0000000000000000000000000000031', 't0000000000000000000000000000003', 'a0000000000000000000000000000tpl', '', '', 'n', NULL, 0, 1, 0, 1, NULL)`,
		`INSERT INTO prices VALUES
			('p0000000000000000000000000000001', 'c0000000000000000000000000000bhp', 'c0000000000000000000000000000aud', '2023-12-29 10:59:00', 'user:price-editor', 'last', 44, 1)`,
	}
	for _, stmt := range statements {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err, stmt)
	}
}

func TestBackend(t *testing.T) {
	url := setupTestDB(t)
	seed(t, url)
	ctx := context.Background()

	s, err := book.Open(ctx, url, book.Options{})
	require.NoError(t, err)
	b := s.Book()

	bank := b.FindAccount("Bank")
	require.NotNil(t, bank)
	assert.Equal(t, book.Bank, bank.Type)
	assert.Len(t, b.Transactions(), 2, "template transactions are left out")
	assert.Equal(t, "-50.25", bank.Splits()[0].Value.String())
	assert.Equal(t, 1, b.PriceDB().Len())

	_, err = book.Open(ctx, url, book.Options{})
	assert.ErrorIs(t, err, book.ErrLocked)

	// import two quotes, purging the existing one, and delete the groceries.
	series := make(quotes.Series)
	series.Add("BHP", date.New(2024, 1, 2), decimal.RequireFromString("45.5"))
	series.Add("BHP", date.New(2024, 1, 3), decimal.RequireFromString("45.123456789"))
	_, err = b.ImportQuotes(series, book.ImportOptions{Namespace: "ASX", Currency: "AUD", Purge: true})
	require.NoError(t, err)
	jan, err := date.Between(date.New(2024, 1, 1), date.New(2024, 1, 31))
	require.NoError(t, err)
	report := b.DeleteTransactions(jan, book.DeletableTypes)
	require.Len(t, report.Deleted, 1)

	require.NoError(t, s.Save(ctx))
	require.NoError(t, s.End())

	s, err = book.Open(ctx, url, book.Options{})
	require.NoError(t, err)
	defer s.End()
	b = s.Book()

	assert.Len(t, b.Transactions(), 1)
	assert.Equal(t, "Buy BHP", b.Transactions()[0].Description)
	bhp := b.Commodities().Lookup("ASX", "BHP")
	aud := b.Commodities().Lookup(book.CurrencyNamespace, "AUD")
	prices := b.PriceDB().Prices(bhp, aud)
	require.Len(t, prices, 2)
	assert.Equal(t, "2024-01-03", prices[0].Date.String())
	assert.InDelta(t, 45.123456789, prices[0].Value.InexactFloat64(), 1e-6)
	assert.Equal(t, book.PriceTypeLast, prices[0].Type)
	assert.Equal(t, "45.5", prices[1].Value.String())
}

func TestBackend_EmptyDatabase(t *testing.T) {
	url := setupTestDB(t)
	ctx := context.Background()

	s, err := book.Open(ctx, url, book.Options{})
	require.NoError(t, err)
	root := s.Book().Root().GUID
	eur := s.Book().Commodities().Lookup(book.CurrencyNamespace, "EUR")
	require.NotNil(t, eur)
	require.NoError(t, s.Save(ctx))
	require.NoError(t, s.End())

	s, err = book.Open(ctx, "postgresql"+url[len("postgres"):], book.Options{IgnoreLock: true})
	require.NoError(t, err)
	defer s.End()
	assert.Equal(t, root, s.Book().Root().GUID)
	assert.Equal(t, eur.GUID, s.Book().Commodities().LookupKey("CURRENCY:EUR").GUID, "saved, not created again")
}
