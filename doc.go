// Package book provides a small in-memory model of a personal-finance book
// (accounts, transactions and their splits, commodities, and a price database)
// together with the sessions used to load and save it.
//
// The core functionalities include:
//   - Account tree: typed accounts (bank, cash, income, stock...) arranged in a
//     hierarchy under a single root account.
//   - Transactions: balanced sets of splits, each split posting a value to an
//     account.
//   - Price database: dated quotes of a commodity in a currency.
//   - Sessions: locked access to a book stored in a JSONL file (optionally
//     gzip-compressed) or in a database registered as a backend.
//
// This package serves as the foundational logic for the `bk` command-line
// tool: importing quotes into the price database and pruning transactions.
package book
