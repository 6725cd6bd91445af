package auth

import (
	"context"
	"testing"
)

func TestAuthContextRoundTrip(t *testing.T) {
	ac := AuthContext{UserID: 7, HouseholdID: 3, Role: "admin", SessionID: 42}
	ctx := WithAuth(context.Background(), ac)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context")
	}
	if got != ac {
		t.Errorf("got %+v, want %+v", got, ac)
	}
	if UserID(ctx) != 7 {
		t.Errorf("UserID = %d, want 7", UserID(ctx))
	}
	if HouseholdID(ctx) != 3 {
		t.Errorf("HouseholdID = %d, want 3", HouseholdID(ctx))
	}
	if !IsAdmin(ctx) {
		t.Error("expected admin")
	}
}

func TestAuthContextMissing(t *testing.T) {
	ctx := context.Background()
	if _, ok := FromContext(ctx); ok {
		t.Error("expected no auth context")
	}
	if UserID(ctx) != 0 || HouseholdID(ctx) != 0 {
		t.Error("expected zero ids")
	}
	if IsAdmin(ctx) {
		t.Error("expected not admin")
	}
}
