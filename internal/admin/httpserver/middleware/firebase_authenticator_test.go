package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"

	firebaseauth "firebase.google.com/go/v4/auth"
)

type stubFirebaseVerifier struct {
	token *firebaseauth.Token
	err   error
}

func (s *stubFirebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*firebaseauth.Token, error) {
	return s.token, s.err
}

func TestFirebaseAuthenticatorSuccess(t *testing.T) {
	verifier := &stubFirebaseVerifier{
		token: &firebaseauth.Token{
			UID: "user-123",
			Claims: map[string]interface{}{
				"email": "ops@example.com",
				"role":  []interface{}{"ops", "support"},
			},
		},
	}

	auth := NewFirebaseAuthenticator(verifier)
	req, _ := http.NewRequest(http.MethodGet, "/", nil)

	user, err := auth.Authenticate(req, "good-token")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.UID != "user-123" {
		t.Fatalf("unexpected uid %s", user.UID)
	}
	if user.Email != "ops@example.com" {
		t.Fatalf("unexpected email %s", user.Email)
	}
	if len(user.Roles) != 2 || user.Roles[0] != "ops" || user.Roles[1] != "support" {
		t.Fatalf("unexpected roles %#v", user.Roles)
	}
}

func TestFirebaseAuthenticatorAdminClaim(t *testing.T) {
	verifier := &stubFirebaseVerifier{
		token: &firebaseauth.Token{
			UID: "owner",
			Claims: map[string]interface{}{
				"is_admin": true,
				"roles":    "admin",
			},
		},
	}

	user, err := NewFirebaseAuthenticator(verifier).Authenticate(&http.Request{}, "token")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if len(user.Roles) != 1 || user.Roles[0] != "admin" {
		t.Fatalf("expected a single admin role, got %#v", user.Roles)
	}
}

func TestFirebaseAuthenticatorHandlesExpiredToken(t *testing.T) {
	auth := NewFirebaseAuthenticator(&stubFirebaseVerifier{err: ErrTokenExpired})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	_, err := auth.Authenticate(req, "expired")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if authErr.Reason != ReasonTokenExpired {
		t.Fatalf("unexpected reason %s", authErr.Reason)
	}
}

func TestFirebaseAuthenticatorRejectsInvalidToken(t *testing.T) {
	auth := NewFirebaseAuthenticator(&stubFirebaseVerifier{err: errors.New("bad signature")})

	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	_, err := auth.Authenticate(req, "forged")
	var authErr *AuthError
	if !errors.As(err, &authErr) || authErr.Reason != ReasonTokenInvalid {
		t.Fatalf("expected invalid token error, got %v", err)
	}

	_, err = auth.Authenticate(req, " ")
	if !errors.As(err, &authErr) || authErr.Reason != ReasonMissingToken {
		t.Fatalf("expected missing token error, got %v", err)
	}
}
