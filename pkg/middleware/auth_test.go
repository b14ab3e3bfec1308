package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func authedHandler(captured *Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ident, ok := IdentityFromContext(r.Context()); ok {
			*captured = ident
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestIsAuth_MissingHeader(t *testing.T) {
	handler := IsAuth(testSecret)(authedHandler(&Identity{}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["code"] != "UNAUTHORIZED" {
		t.Errorf("code = %q, want UNAUTHORIZED", body["code"])
	}
}

func TestIsAuth_MalformedHeader(t *testing.T) {
	handler := IsAuth(testSecret)(authedHandler(&Identity{}))

	for _, header := range []string{"Bearer", "Basic abc123", "just-a-token"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", header)
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want %d", header, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestIsAuth_InvalidSignature(t *testing.T) {
	token := signTestToken(t, "wrong-secret", jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	handler := IsAuth(testSecret)(authedHandler(&Identity{}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestIsAuth_ExpiredToken(t *testing.T) {
	token := signTestToken(t, testSecret, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	handler := IsAuth(testSecret)(authedHandler(&Identity{}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestIsAuth_ValidToken_StoresIdentity(t *testing.T) {
	token := signTestToken(t, testSecret, jwt.MapClaims{
		"user_id":  "user-1",
		"name":     "alice",
		"is_admin": true,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	var ident Identity
	handler := IsAuth(testSecret)(authedHandler(&ident))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ident.ID != "user-1" {
		t.Errorf("ID = %q, want user-1", ident.ID)
	}
	if ident.Name != "alice" {
		t.Errorf("Name = %q, want alice", ident.Name)
	}
	if !ident.IsAdmin {
		t.Error("IsAdmin = false, want true")
	}
}

func TestIsAuth_SubClaimFallback(t *testing.T) {
	token := signTestToken(t, testSecret, jwt.MapClaims{
		"sub":  "user-2",
		"name": "bob",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	var ident Identity
	handler := IsAuth(testSecret)(authedHandler(&ident))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ident.ID != "user-2" {
		t.Errorf("ID = %q, want user-2", ident.ID)
	}
	if ident.IsAdmin {
		t.Error("IsAdmin = true, want false")
	}
}

func TestIsAdmin_RejectsNonAdmin(t *testing.T) {
	token := signTestToken(t, testSecret, jwt.MapClaims{
		"user_id": "user-1",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	handler := IsAuth(testSecret)(IsAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestIsAdmin_AllowsAdmin(t *testing.T) {
	token := signTestToken(t, testSecret, jwt.MapClaims{
		"user_id":  "user-1",
		"is_admin": true,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})

	handler := IsAuth(testSecret)(IsAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestIsAdmin_NoIdentityInContext(t *testing.T) {
	handler := IsAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
