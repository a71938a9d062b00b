package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pasarhub/marketplace-orders/internal/market"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestRespondDomainErr(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantCode   int
		wantReason string
	}{
		{"listing not found", market.ErrListingNotFound, http.StatusNotFound, "listing_not_found"},
		{"order not found", market.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
		{"no vendor access", market.ErrNoVendorAccess, http.StatusForbidden, "no_vendor_access"},
		{"buyer only cancel", market.ErrBuyerOnlyCancel, http.StatusForbidden, "invalid_status_change"},
		{"unavailable", market.ErrListingUnavailable, http.StatusBadRequest, "listing_unavailable"},
		{"no price", market.ErrNoPrice, http.StatusBadRequest, "no_price"},
		{"invalid quantity", market.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
		{"insufficient stock", &market.InsufficientStockError{ListingID: "l1", Requested: 3, Available: 2}, http.StatusBadRequest, "insufficient_quantity"},
		{"invalid transition", &market.InvalidTransitionError{From: market.StatusDelivered, To: market.StatusConfirmed}, http.StatusBadRequest, "invalid_status_transition"},
		{"unexpected", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal_error"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondDomainErr(rec, c.err, false)

			if rec.Code != c.wantCode {
				t.Errorf("http code = %d, want %d", rec.Code, c.wantCode)
			}
			env := decodeEnvelope(t, rec)
			if env.Success {
				t.Error("success should be false")
			}
			if env.Code != c.wantCode {
				t.Errorf("envelope code = %d, want %d", env.Code, c.wantCode)
			}
			if env.Error != c.wantReason {
				t.Errorf("reason = %v, want %s", env.Error, c.wantReason)
			}
		})
	}
}

func TestRespondDomainErr_ProductionHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	respondDomainErr(rec, errors.New("pq: secret dsn leaked"), true)
	env := decodeEnvelope(t, rec)
	if env.Message != "internal server error" {
		t.Errorf("message = %q, internal detail should be hidden in production", env.Message)
	}

	rec = httptest.NewRecorder()
	respondDomainErr(rec, errors.New("pq: helpful detail"), false)
	env = decodeEnvelope(t, rec)
	if env.Message != "pq: helpful detail" {
		t.Errorf("message = %q, detail should surface outside production", env.Message)
	}
}

func TestToOrderUpdate(t *testing.T) {
	bad := "SHIPPED"
	if _, err := toOrderUpdate(UpdateOrderReq{Status: &bad}); !errors.Is(err, market.ErrInvalidStatus) {
		t.Errorf("got %v, want ErrInvalidStatus", err)
	}

	ok := "CANCELLED"
	notes := "note"
	upd, err := toOrderUpdate(UpdateOrderReq{Status: &ok, Notes: &notes})
	if err != nil {
		t.Fatalf("toOrderUpdate: %v", err)
	}
	if upd.Status == nil || *upd.Status != market.StatusCancelled {
		t.Errorf("status = %v, want CANCELLED", upd.Status)
	}
	if upd.Notes == nil || *upd.Notes != "note" {
		t.Errorf("notes = %v, want 'note'", upd.Notes)
	}

	upd, err = toOrderUpdate(UpdateOrderReq{})
	if err != nil || upd.Status != nil {
		t.Errorf("empty update should carry no status, got %v/%v", upd, err)
	}
}

func TestPrincipalFrom(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/orders/me", nil)
	if _, ok := principalFrom(r); ok {
		t.Error("missing headers should mean no principal")
	}

	r.Header.Set("X-User-Id", "u1")
	r.Header.Set("X-User-Email", "u1@test.local")
	p, ok := principalFrom(r)
	if !ok || p.UserID != "u1" || p.Email != "u1@test.local" {
		t.Errorf("principal = %+v ok=%v", p, ok)
	}
}
