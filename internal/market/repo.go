package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// OrderUpdate carries the mutable order fields; nil means "leave unchanged".
type OrderUpdate struct {
	Status        *Status
	Notes         *string
	TransactionID *string
}

const orderColumns = `id, user_id, listing_id, quantity, total_price, status, notes, transaction_id, stock_tracked, created_at, updated_at`

// same list qualified for joins against listings
const orderColumnsO = `o.id, o.user_id, o.listing_id, o.quantity, o.total_price, o.status, o.notes, o.transaction_id, o.stock_tracked, o.created_at, o.updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var status string
	err := row.Scan(&o.ID, &o.UserID, &o.ListingID, &o.Quantity, &o.TotalPrice, &status,
		&o.Notes, &o.TransactionID, &o.StockTracked, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	o.Status = Status(status)
	return o, nil
}

// CreateOrders places a buyer order for qty units of a listing. Each unit is
// persisted as its own order row (quantity=1, total_price=unit price frozen at
// creation). Validation, the stock reservation and all inserts run in one
// transaction: if anything fails, no rows exist and no stock was taken.
func (r *Repo) CreateOrders(ctx context.Context, userID, listingID string, qty int, notes, transactionID *string) ([]Order, error) {
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	l, err := loadListing(ctx, tx, listingID)
	if err != nil {
		return nil, err
	}
	if err := validateForOrder(l, qty); err != nil {
		return nil, err
	}
	if err := reserveStock(ctx, tx, l, qty); err != nil {
		return nil, err
	}

	unitPrice := l.Price.Decimal
	out := make([]Order, 0, qty)
	for i := 0; i < qty; i++ {
		row := tx.QueryRow(ctx, `
			INSERT INTO orders (id, user_id, listing_id, quantity, total_price, status, notes, transaction_id, stock_tracked)
			VALUES ($1, $2, $3, 1, $4, $5, $6, $7, $8)
			RETURNING `+orderColumns,
			uuid.NewString(), userID, listingID, unitPrice, string(StatusPending), notes, transactionID, l.StockTracked())
		o, err := scanOrder(row)
		if err != nil {
			return nil, fmt.Errorf("insert order: %w", err)
		}
		out = append(out, o)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateMyOrder applies a buyer-side update: notes and transaction_id are
// always writable, status only to CANCELLED and only from PENDING/CONFIRMED.
// Cancellation releases the reserved unit inside the same transaction; the
// order row is locked first, so a second cancel observes CANCELLED and fails
// before any increment (no double release).
func (r *Repo) UpdateMyOrder(ctx context.Context, userID, orderID string, upd OrderUpdate) (Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	cur, err := scanOrder(tx.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		orderID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, err
	}

	cancelling := false
	if upd.Status != nil {
		if *upd.Status != StatusCancelled {
			return Order{}, ErrBuyerOnlyCancel
		}
		if !CanBuyerCancel(cur.Status) {
			return Order{}, &InvalidTransitionError{From: cur.Status, To: StatusCancelled}
		}
		cancelling = true
	}

	if cancelling && cur.StockTracked {
		if err := releaseStock(ctx, tx, cur.ListingID, cur.Quantity); err != nil {
			return Order{}, err
		}
	}

	o, err := applyOrderUpdate(ctx, tx, orderID, upd)
	if err != nil {
		return Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return o, nil
}

// UpdateVendorOrder applies a vendor-side update. The membership check runs
// inside the same transaction as the mutation, so a revocation between check
// and write cannot produce a stale-authorization window.
func (r *Repo) UpdateVendorOrder(ctx context.Context, userEmail, vendorID, orderID string, upd OrderUpdate) (Order, error) {
	if upd.Status != nil && !upd.Status.Valid() {
		return Order{}, ErrInvalidStatus
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var member bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM vendor_users WHERE vendor_id = $1 AND email = $2)`,
		vendorID, userEmail).Scan(&member); err != nil {
		return Order{}, err
	}
	if !member {
		return Order{}, ErrNoVendorAccess
	}

	cur, err := scanOrder(tx.QueryRow(ctx, `
		SELECT `+orderColumnsO+`
		FROM orders o JOIN listings l ON l.id = o.listing_id
		WHERE o.id = $1 AND l.vendor_id = $2
		FOR UPDATE OF o`,
		orderID, vendorID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, err
	}

	if upd.Status != nil {
		to := *upd.Status
		if !CanVendorTransition(cur.Status, to) {
			return Order{}, &InvalidTransitionError{From: cur.Status, To: to}
		}
		if to == StatusCancelled && cur.StockTracked {
			if err := releaseStock(ctx, tx, cur.ListingID, cur.Quantity); err != nil {
				return Order{}, err
			}
		}
	}

	o, err := applyOrderUpdate(ctx, tx, orderID, upd)
	if err != nil {
		return Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return o, nil
}

func applyOrderUpdate(ctx context.Context, tx pgx.Tx, orderID string, upd OrderUpdate) (Order, error) {
	var status *string
	if upd.Status != nil {
		s := string(*upd.Status)
		status = &s
	}
	row := tx.QueryRow(ctx, `
		UPDATE orders SET
			status         = COALESCE($2, status),
			notes          = COALESCE($3, notes),
			transaction_id = COALESCE($4, transaction_id),
			updated_at     = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		orderID, status, upd.Notes, upd.TransactionID)
	o, err := scanOrder(row)
	if err != nil {
		return Order{}, fmt.Errorf("update order: %w", err)
	}
	return o, nil
}

func (r *Repo) GetMyOrder(ctx context.Context, userID, orderID string) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = $1 AND user_id = $2`,
		orderID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	return o, err
}

func (r *Repo) ListMyOrders(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

// ListVendorOrders returns a vendor's orders, newest first, optionally
// filtered by status. Callers verify vendor membership first.
func (r *Repo) ListVendorOrders(ctx context.Context, vendorID string, status *Status, limit, offset int) ([]Order, error) {
	q := `
		SELECT ` + orderColumnsO + `
		FROM orders o JOIN listings l ON l.id = o.listing_id
		WHERE l.vendor_id = $1`
	args := []any{vendorID}
	if status != nil {
		q += ` AND o.status = $2 ORDER BY o.created_at DESC LIMIT $3 OFFSET $4`
		args = append(args, string(*status), limit, offset)
	} else {
		q += ` ORDER BY o.created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *Repo) MyOrderStats(ctx context.Context, userID string) (OrderStats, error) {
	return r.orderStats(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'PENDING'),
		       COUNT(*) FILTER (WHERE status = 'CONFIRMED'),
		       COUNT(*) FILTER (WHERE status = 'DELIVERED'),
		       COUNT(*) FILTER (WHERE status = 'CANCELLED')
		FROM orders WHERE user_id = $1`, userID)
}

func (r *Repo) VendorOrderStats(ctx context.Context, vendorID string) (OrderStats, error) {
	return r.orderStats(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE o.status = 'PENDING'),
		       COUNT(*) FILTER (WHERE o.status = 'CONFIRMED'),
		       COUNT(*) FILTER (WHERE o.status = 'DELIVERED'),
		       COUNT(*) FILTER (WHERE o.status = 'CANCELLED')
		FROM orders o JOIN listings l ON l.id = o.listing_id
		WHERE l.vendor_id = $1`, vendorID)
}

func (r *Repo) orderStats(ctx context.Context, q, key string) (OrderStats, error) {
	var s OrderStats
	err := r.DB.QueryRow(ctx, q, key).Scan(&s.Total, &s.Pending, &s.Confirmed, &s.Delivered, &s.Cancelled)
	return s, err
}

// HasVendorAccess backs the read-only vendor endpoints; mutations re-check
// membership inside their own transaction.
func (r *Repo) HasVendorAccess(ctx context.Context, vendorID, email string) (bool, error) {
	var ok bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM vendor_users WHERE vendor_id = $1 AND email = $2)`,
		vendorID, email).Scan(&ok)
	return ok, err
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	defer rows.Close()
	out := []Order{} // empty lists serialize as [], not null
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

