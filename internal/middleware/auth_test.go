package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartshop/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func signTestToken(t *testing.T, secret, userID, role string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(expiresIn).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tokenString
}

func TestProperty_RequestsWithoutTokenAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests without an authorization header get 401", prop.ForAll(
		func(pathSuffix string, method string) bool {
			middleware := AuthMiddleware("test-secret", zap.NewNop())
			handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			path := "/" + pathSuffix
			if path == "/" {
				path = "/test"
			}

			req := httptest.NewRequest(method, path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
		gen.OneConstOf("GET", "POST", "PUT", "DELETE"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_MalformedTokensAreRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("garbage bearer tokens get 401", prop.ForAll(
		func(invalidToken string) bool {
			middleware := AuthMiddleware("test-secret", zap.NewNop())
			handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+invalidToken)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AnyString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAuthMiddleware(t *testing.T) {
	secret := "test-secret"
	middleware := AuthMiddleware(secret, zap.NewNop())

	t.Run("expired tokens are rejected", func(t *testing.T) {
		tokenString := signTestToken(t, secret, "user-1", domain.RoleCustomer, -time.Hour)

		handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for expired token, got %d", w.Code)
		}
	})

	t.Run("a missing Bearer prefix is rejected", func(t *testing.T) {
		tokenString := signTestToken(t, secret, "user-1", domain.RoleCustomer, time.Hour)

		handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", tokenString)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without Bearer prefix, got %d", w.Code)
		}
	})

	t.Run("valid tokens put the user's id and role into the context", func(t *testing.T) {
		tokenString := signTestToken(t, secret, "user-42", domain.RoleShipper, time.Hour)

		handlerCalled := false
		handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handlerCalled = true
			userID, ok1 := GetUserID(r.Context())
			role, ok2 := GetUserRole(r.Context())
			if !ok1 || !ok2 || userID != "user-42" || role != domain.RoleShipper {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if !handlerCalled || w.Code != http.StatusOK {
			t.Fatalf("expected the handler to run with claims in context, got %d", w.Code)
		}
	})

	t.Run("tokens signed with another secret are rejected", func(t *testing.T) {
		tokenString := signTestToken(t, "other-secret", "user-1", domain.RoleCustomer, time.Hour)

		handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for a foreign signature, got %d", w.Code)
		}
	})
}

func requestWithRole(role string) *http.Request {
	req := httptest.NewRequest("GET", "/test", nil)
	ctx := context.WithValue(req.Context(), UserIDKey, "user-1")
	ctx = context.WithValue(ctx, UserRoleKey, role)
	return req.WithContext(ctx)
}

func TestRequireRole(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name       string
		middleware func(http.Handler) http.Handler
		role       string
		wantCode   int
	}{
		{"admin gate admits admins", RequireAdmin(zap.NewNop()), domain.RoleAdmin, http.StatusOK},
		{"admin gate blocks customers", RequireAdmin(zap.NewNop()), domain.RoleCustomer, http.StatusForbidden},
		{"admin gate blocks shippers", RequireAdmin(zap.NewNop()), domain.RoleShipper, http.StatusForbidden},
		{"shipper gate admits shippers", RequireShipper(zap.NewNop()), domain.RoleShipper, http.StatusOK},
		{"shipper gate admits admins", RequireShipper(zap.NewNop()), domain.RoleAdmin, http.StatusOK},
		{"shipper gate blocks customers", RequireShipper(zap.NewNop()), domain.RoleCustomer, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tc.middleware(okHandler).ServeHTTP(w, requestWithRole(tc.role))
			if w.Code != tc.wantCode {
				t.Errorf("expected %d, got %d", tc.wantCode, w.Code)
			}
		})
	}

	t.Run("a request with no role in context is blocked", func(t *testing.T) {
		w := httptest.NewRecorder()
		RequireAdmin(zap.NewNop())(okHandler).ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))
		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
	})
}
