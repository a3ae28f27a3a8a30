package enums

import "testing"

func TestParsePaymentMethod(t *testing.T) {
	got, err := ParsePaymentMethod(" Bank_Transfer ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != PaymentMethodBankTransfer {
		t.Fatalf("expected bank_transfer, got %q", got)
	}
	if _, err := ParsePaymentMethod("crypto"); err == nil {
		t.Fatalf("expected error for unknown method")
	}
}

func TestParseCurrency(t *testing.T) {
	got, err := ParseCurrency("idr")
	if err != nil || got != CurrencyIDR {
		t.Fatalf("expected IDR, got %q (%v)", got, err)
	}
	if _, err := ParseCurrency("BTC"); err == nil {
		t.Fatalf("expected error for unsupported currency")
	}
}

func TestRole(t *testing.T) {
	if RoleGuest.IsValid() {
		t.Fatalf("guest is not an authenticated role")
	}
	if !RoleCourier.IsValid() || !RoleCourier.HasDashboard() {
		t.Fatalf("courier should be valid with a dashboard")
	}
	if RoleCustomer.HasDashboard() {
		t.Fatalf("customer has no dashboard")
	}
}
