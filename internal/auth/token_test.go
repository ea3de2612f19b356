package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, username string, isAdmin bool) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"is_admin": isAdmin,
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestDecodeToken(t *testing.T) {
	token := signTestToken(t, "jdoe", true)

	username, isAdmin, err := decodeToken(token)
	if err != nil {
		t.Fatalf("decodeToken failed: %v", err)
	}
	if username != "jdoe" {
		t.Errorf("username = %q, want %q", username, "jdoe")
	}
	if !isAdmin {
		t.Error("isAdmin = false, want true")
	}
}

func TestDecodeTokenMalformed(t *testing.T) {
	for _, token := range []string{"", "garbage", "a.b", "a.b.c"} {
		if _, _, err := decodeToken(token); err == nil {
			t.Errorf("decodeToken(%q) succeeded, want error", token)
		}
	}
}
