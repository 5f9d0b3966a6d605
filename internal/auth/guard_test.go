package auth

import (
	"errors"
	"testing"
)

func TestAuthorizeOwner(t *testing.T) {
	if err := Authorize("ann", "ann"); err != nil {
		t.Fatalf("Authorize rejected the owner: %v", err)
	}
}

func TestAuthorizeOther(t *testing.T) {
	err := Authorize("ann", "bob")
	if err == nil {
		t.Fatal("Authorize allowed a non-owner")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Code != "PERMISSION_DENIED" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthorizeCaseSensitive(t *testing.T) {
	if err := Authorize("ann", "Ann"); err == nil {
		t.Fatal("Authorize should compare nicknames exactly")
	}
}
