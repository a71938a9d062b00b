package market

import "context"

// OrderContact is the slice of an order the notifier needs to address mail.
type OrderContact struct {
	OrderID     string
	Status      Status
	Quantity    int
	BuyerEmail  string
	BuyerName   string
	ListingName string
	VendorID    string
	VendorName  string
}

func (r *Repo) OrderContacts(ctx context.Context, orderIDs []string) ([]OrderContact, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT o.id, o.status, o.quantity, u.email, u.name, l.name, v.id, v.name
		FROM orders o
		JOIN users u ON u.id = o.user_id
		JOIN listings l ON l.id = o.listing_id
		JOIN vendors v ON v.id = l.vendor_id
		WHERE o.id = ANY($1)
		ORDER BY o.created_at`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderContact
	for rows.Next() {
		var c OrderContact
		var status string
		if err := rows.Scan(&c.OrderID, &status, &c.Quantity, &c.BuyerEmail, &c.BuyerName,
			&c.ListingName, &c.VendorID, &c.VendorName); err != nil {
			return nil, err
		}
		c.Status = Status(status)
		out = append(out, c)
	}
	return out, rows.Err()
}

// VendorEmails returns owner and member addresses for a vendor.
func (r *Repo) VendorEmails(ctx context.Context, vendorID string) ([]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT email FROM vendor_users WHERE vendor_id = $1`, vendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
