package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	for _, raw := range []string{"pending", "processing", "completed", "cancelled"} {
		status, err := ParseOrderStatus(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if status.String() != raw || !status.IsValid() {
			t.Fatalf("round trip failed for %q", raw)
		}
	}
	if _, err := ParseOrderStatus("shipped"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
	if len(OrderStatusValues()) != 4 {
		t.Fatalf("unexpected values %v", OrderStatusValues())
	}
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("admin")
	if err != nil || role != UserRoleAdmin {
		t.Fatalf("expected admin, got %q err=%v", role, err)
	}
	if UserRole("owner").IsValid() {
		t.Fatal("owner is not a storefront role")
	}
	if _, err := ParseUserRole(""); err == nil {
		t.Fatal("expected empty role to fail")
	}
}
