// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store implements persistence over database/sql.

The same queries run on PostgreSQL (github.com/lib/pq) and SQLite
(modernc.org/sqlite): $N placeholders, ON CONFLICT upserts, TEXT JSON.

# Transactions

InTx binds a Store to one transaction:

	err := st.InTx(ctx, func(tx *store.Store) error {
		options, err := tx.ListOptions(ctx, id)
		// ...
		ok, err := tx.TransitionStatus(ctx, id, "open", "closed", now)
		return err
	})

Inside fn, use only tx. With a single-connection pool (SQLite tests) the
outer Store would block waiting for the connection the transaction holds.

# Conditional Update

TransitionStatus is the compare-and-swap on decision status:

	UPDATE decision SET status = $1, closed_at = $2 WHERE id = $3 AND status = $4

It reports true only for the caller whose update matched a row.

# Errors

Lookups return ErrNotFound when no row matches; inserts that hit a unique
constraint return ErrDuplicate. Both are wrapped with the operation name:

	store.GetDecision: record not found
*/
package store
