package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"smartshop/internal/domain"
	"smartshop/internal/repository"
	"smartshop/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

type mockUserRepository struct {
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type mockRefreshTokenRepository struct {
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func newTestUserHandler() (*UserHandler, service.UserService) {
	userService := service.NewUserService(newMockUserRepository(), newMockRefreshTokenRepository(), "test-secret")
	return NewUserHandler(userService, zap.NewNop()), userService
}

// envelope mirrors the middleware response wrapper with a typed data field.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func postJSON(handler http.HandlerFunc, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestProperty_InvalidRegistrationDataIsRejected(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("registration with bad input gets a failed envelope and 4xx", prop.ForAll(
		func(invalidCase int) bool {
			handler, _ := newTestUserHandler()

			var reqBody RegisterRequest
			switch invalidCase % 4 {
			case 0:
				reqBody = RegisterRequest{Email: "", Password: "ValidPass123", FullName: "Jamie Vo"}
			case 1:
				reqBody = RegisterRequest{Email: "not-an-email", Password: "ValidPass123", FullName: "Jamie Vo"}
			case 2:
				reqBody = RegisterRequest{Email: "test@example.com", Password: "short", FullName: "Jamie Vo"}
			case 3:
				reqBody = RegisterRequest{Email: "test@example.com", Password: "ValidPass123"}
			}

			w := postJSON(handler.Register, "/api/users/register", reqBody)
			if w.Code != http.StatusBadRequest && w.Code != http.StatusConflict {
				t.Logf("expected 400 or 409, got %d", w.Code)
				return false
			}

			var response envelope
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Logf("could not decode error response: %v", err)
				return false
			}
			return !response.Success && response.Message != ""
		},
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_SuccessfulRegistrationReturnsProfileData(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a fresh registration returns the full customer profile", prop.ForAll(
		func(email string, password string, fullName string) bool {
			handler, _ := newTestUserHandler()

			w := postJSON(handler.Register, "/api/users/register", RegisterRequest{
				Email:    email,
				Password: password,
				FullName: fullName,
				Phone:    "0123456789",
				Address:  "12 Market Street",
			})
			if w.Code != http.StatusCreated {
				t.Logf("expected 201, got %d", w.Code)
				return false
			}

			var response envelope
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Logf("could not decode response: %v", err)
				return false
			}
			if !response.Success {
				return false
			}

			var profile UserProfile
			if err := json.Unmarshal(response.Data, &profile); err != nil {
				t.Logf("could not decode profile: %v", err)
				return false
			}

			if profile.Email != email || profile.FullName != fullName {
				return false
			}
			if profile.Role != domain.RoleCustomer {
				t.Logf("expected the customer role, got %q", profile.Role)
				return false
			}
			if _, err := uuid.Parse(profile.ID); err != nil {
				t.Logf("profile id is not a uuid: %v", err)
				return false
			}
			return true
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15} [A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidLoginReturnsBothTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("logging in with the registered password yields working tokens", prop.ForAll(
		func(email string, password string, fullName string) bool {
			handler, userService := newTestUserHandler()

			if _, err := userService.Register(context.Background(), email, password, fullName, "", ""); err != nil {
				t.Logf("register: %v", err)
				return false
			}

			w := postJSON(handler.Login, "/api/users/login", LoginRequest{Email: email, Password: password})
			if w.Code != http.StatusOK {
				t.Logf("expected 200, got %d", w.Code)
				return false
			}

			var response envelope
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Logf("could not decode response: %v", err)
				return false
			}

			var loginResp LoginResponse
			if err := json.Unmarshal(response.Data, &loginResp); err != nil {
				t.Logf("could not decode login payload: %v", err)
				return false
			}

			if loginResp.AccessToken == "" || loginResp.RefreshToken == "" {
				return false
			}
			if loginResp.User.Email != email {
				return false
			}

			claims := &service.Claims{}
			if _, err := jwt.ParseWithClaims(loginResp.AccessToken, claims, func(token *jwt.Token) (interface{}, error) {
				return []byte("test-secret"), nil
			}); err != nil {
				t.Logf("access token does not verify: %v", err)
				return false
			}
			if claims.UserID.String() != loginResp.User.ID {
				return false
			}

			newAccessToken, err := userService.RefreshToken(context.Background(), loginResp.RefreshToken)
			if err != nil {
				t.Logf("refresh token rejected: %v", err)
				return false
			}
			return newAccessToken != ""
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{8,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15} [A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestLoginWithWrongPasswordIsUnauthorized(t *testing.T) {
	handler, userService := newTestUserHandler()

	if _, err := userService.Register(context.Background(), "buyer@example.com", "CorrectPass1", "Jamie Vo", "", ""); err != nil {
		t.Fatalf("register: %v", err)
	}

	w := postJSON(handler.Login, "/api/users/login", LoginRequest{
		Email:    "buyer@example.com",
		Password: "WrongPass99",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}

	var response envelope
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("could not decode response: %v", err)
	}
	if response.Success {
		t.Error("failed login marked as success")
	}
}
