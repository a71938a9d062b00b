package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Inventory guard. Listing.available_qty is the only shared mutable counter in
// this core and it is never touched outside these two entry points. The
// decrement is a single guarded UPDATE, not read-then-write: two concurrent
// buyers racing for the last units serialize on the row and exactly one passes
// the WHERE clause.

// validateForOrder runs the fail-fast precondition checks, in order.
func validateForOrder(l Listing, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if !l.IsAvailable {
		return ErrListingUnavailable
	}
	if !l.Price.Valid {
		return ErrNoPrice
	}
	return nil
}

// reserveStock decrements available_qty by qty inside tx, only if enough
// remains. Untracked listings (managed=false or ON_DEMAND, or NULL qty) pass
// through: NULL - n stays NULL, so unlimited stock is preserved.
func reserveStock(ctx context.Context, tx pgx.Tx, l Listing, qty int) error {
	if !l.StockTracked() {
		return nil
	}
	ct, err := tx.Exec(ctx, `
		UPDATE listings SET available_qty = available_qty - $2, updated_at = now()
		WHERE id = $1 AND (available_qty IS NULL OR available_qty >= $2)`,
		l.ID, qty)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	if ct.RowsAffected() == 0 {
		avail := 0
		// best-effort for the error payload; may already be stale
		_ = tx.QueryRow(ctx, `SELECT COALESCE(available_qty, 0) FROM listings WHERE id = $1`, l.ID).Scan(&avail)
		return &InsufficientStockError{ListingID: l.ID, Requested: qty, Available: avail}
	}
	return nil
}

// releaseStock puts qty units back. Unconditional increment, no upper bound:
// the caller guarantees via the transition table that each order releases at
// most once, in the same transaction as the status write.
func releaseStock(ctx context.Context, tx pgx.Tx, listingID string, qty int) error {
	_, err := tx.Exec(ctx, `
		UPDATE listings SET available_qty = available_qty + $2, updated_at = now()
		WHERE id = $1`,
		listingID, qty)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	return nil
}

// ReserveStock is the standalone form of the guard: it loads the listing,
// runs the precondition checks and the conditional decrement in one
// transaction. CreateOrders uses the tx-scoped steps directly.
func (r *Repo) ReserveStock(ctx context.Context, listingID string, qty int) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	l, err := loadListing(ctx, tx, listingID)
	if err != nil {
		return err
	}
	if err := validateForOrder(l, qty); err != nil {
		return err
	}
	if err := reserveStock(ctx, tx, l, qty); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ReleaseStock is the standalone form of the release path.
func (r *Repo) ReleaseStock(ctx context.Context, listingID string, qty int) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := releaseStock(ctx, tx, listingID, qty); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// loadListing reads the listing without locking it: the guard's WHERE clause
// is what closes the race, not a row lock.
func loadListing(ctx context.Context, tx pgx.Tx, listingID string) (Listing, error) {
	var l Listing
	err := tx.QueryRow(ctx, `
		SELECT id, vendor_id, name, price, is_available, managed, inventory_type, available_qty
		FROM listings WHERE id = $1`, listingID).
		Scan(&l.ID, &l.VendorID, &l.Name, &l.Price, &l.IsAvailable, &l.Managed, &l.InventoryType, &l.AvailableQty)
	if errors.Is(err, pgx.ErrNoRows) {
		return Listing{}, ErrListingNotFound
	}
	if err != nil {
		return Listing{}, err
	}
	return l, nil
}
