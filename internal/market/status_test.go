package market

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCanVendorTransition(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusDelivered, false}, // no skipping CONFIRMED
		{StatusConfirmed, StatusDelivered, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusDelivered, StatusConfirmed, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusPending, StatusPending, false},
	}
	for _, c := range cases {
		if got := CanVendorTransition(c.from, c.to); got != c.want {
			t.Errorf("CanVendorTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestCanBuyerCancel(t *testing.T) {
	cases := []struct {
		from Status
		want bool
	}{
		{StatusPending, true},
		{StatusConfirmed, true},
		{StatusDelivered, false},
		{StatusCancelled, false},
	}
	for _, c := range cases {
		if got := CanBuyerCancel(c.from); got != c.want {
			t.Errorf("CanBuyerCancel(%s) = %v, want %v", c.from, got, c.want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	for s, want := range map[Status]bool{
		StatusPending:   false,
		StatusConfirmed: false,
		StatusDelivered: true,
		StatusCancelled: true,
	} {
		if got := s.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", s, got, want)
		}
	}
	if Status("SHIPPED").Valid() {
		t.Error("unknown status should not be valid")
	}
}

func TestValidateForOrder(t *testing.T) {
	price := decimal.NullDecimal{Decimal: decimal.RequireFromString("9.99"), Valid: true}

	cases := []struct {
		name    string
		listing Listing
		qty     int
		wantErr error
	}{
		{"ok", Listing{IsAvailable: true, Price: price}, 1, nil},
		{"zero quantity", Listing{IsAvailable: true, Price: price}, 0, ErrInvalidQuantity},
		{"negative quantity", Listing{IsAvailable: true, Price: price}, -2, ErrInvalidQuantity},
		{"unavailable", Listing{IsAvailable: false, Price: price}, 1, ErrListingUnavailable},
		{"no price", Listing{IsAvailable: true}, 1, ErrNoPrice},
		// availability is checked before price
		{"unavailable and no price", Listing{}, 1, ErrListingUnavailable},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if err := validateForOrder(c.listing, c.qty); err != c.wantErr {
				t.Errorf("got %v, want %v", err, c.wantErr)
			}
		})
	}
}

func TestStockTracked(t *testing.T) {
	if !(Listing{Managed: true, InventoryType: InventoryStock}).StockTracked() {
		t.Error("managed STOCK listing should be tracked")
	}
	if (Listing{Managed: true, InventoryType: InventoryOnDemand}).StockTracked() {
		t.Error("ON_DEMAND listing should not be tracked")
	}
	if (Listing{Managed: false, InventoryType: InventoryStock}).StockTracked() {
		t.Error("unmanaged listing should not be tracked")
	}
}
