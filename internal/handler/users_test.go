package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/brioche-cafe/api/internal/database"
	"github.com/brioche-cafe/api/internal/enum"
	"github.com/brioche-cafe/api/internal/handler"
)

// --- Mock store ---

type mockUserStore struct {
	users map[uuid.UUID]database.User // keyed by user ID
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]database.User)}
}

func (m *mockUserStore) ListUsers(_ context.Context) ([]database.User, error) {
	var result []database.User
	for _, u := range m.users {
		if u.IsActive {
			result = append(result, u)
		}
	}
	return result, nil
}

func (m *mockUserStore) CreateUser(_ context.Context, arg database.CreateUserParams) (database.User, error) {
	// Check for duplicate email (simulates PostgreSQL unique constraint)
	for _, existing := range m.users {
		if existing.Email == arg.Email && existing.IsActive {
			return database.User{}, &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
	}
	u := database.User{
		ID:             uuid.New(),
		Email:          arg.Email,
		HashedPassword: arg.HashedPassword,
		FullName:       arg.FullName,
		Role:           arg.Role,
		IsActive:       true,
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserStore) UpdateUser(_ context.Context, arg database.UpdateUserParams) (database.User, error) {
	u, ok := m.users[arg.ID]
	if !ok || !u.IsActive {
		return database.User{}, pgx.ErrNoRows
	}
	// Check for duplicate email (simulates PostgreSQL unique constraint)
	for _, existing := range m.users {
		if existing.Email == arg.Email && existing.ID != arg.ID && existing.IsActive {
			return database.User{}, &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
	}
	u.Email = arg.Email
	u.FullName = arg.FullName
	u.Role = arg.Role
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserStore) SoftDeleteUser(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	u, ok := m.users[id]
	if !ok || !u.IsActive {
		return uuid.Nil, pgx.ErrNoRows
	}
	u.IsActive = false
	m.users[u.ID] = u
	return u.ID, nil
}

// --- Helpers ---

func setupUserRouter(store *mockUserStore) *chi.Mux {
	h := handler.NewUserHandler(store)
	r := chi.NewRouter()
	r.Route("/users", h.RegisterRoutes)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeObjectResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeListResponse(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

// --- List tests ---

func TestListUsers_Empty(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "GET", "/users", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeListResponse(t, rr)
	if len(resp) != 0 {
		t.Errorf("expected empty list, got %d items", len(resp))
	}
}

func TestListUsers_ExcludesInactive(t *testing.T) {
	store := newMockUserStore()

	store.users[uuid.New()] = database.User{
		ID: uuid.New(), Email: "a@test.com",
		FullName: "Alice", Role: enum.UserRoleStaff, IsActive: true,
	}
	store.users[uuid.New()] = database.User{
		ID: uuid.New(), Email: "b@test.com",
		FullName: "Bob", Role: enum.UserRoleAdmin, IsActive: false,
	}

	router := setupUserRouter(store)
	rr := doRequest(t, router, "GET", "/users", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	resp := decodeListResponse(t, rr)
	if len(resp) != 1 {
		t.Fatalf("expected 1 user, got %d", len(resp))
	}
	if resp[0]["email"] != "a@test.com" {
		t.Errorf("expected a@test.com, got %v", resp[0]["email"])
	}
}

func TestListUsers_ExcludesHashedPassword(t *testing.T) {
	store := newMockUserStore()

	store.users[uuid.New()] = database.User{
		ID: uuid.New(), Email: "a@test.com",
		HashedPassword: "$2a$10$somehash", FullName: "Alice",
		Role: enum.UserRoleStaff, IsActive: true,
	}

	router := setupUserRouter(store)
	rr := doRequest(t, router, "GET", "/users", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	resp := decodeListResponse(t, rr)
	if len(resp) != 1 {
		t.Fatalf("expected 1 user, got %d", len(resp))
	}
	if _, exists := resp[0]["hashed_password"]; exists {
		t.Error("response must not include hashed_password")
	}
}

// --- Create tests ---

func TestCreateUser_Valid(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "POST", "/users", map[string]string{
		"email":     "new@test.com",
		"password":  "securepass",
		"full_name": "New User",
		"role":      "STAFF",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeObjectResponse(t, rr)
	if resp["email"] != "new@test.com" {
		t.Errorf("email: got %v, want new@test.com", resp["email"])
	}
	if resp["full_name"] != "New User" {
		t.Errorf("full_name: got %v, want New User", resp["full_name"])
	}
	if resp["role"] != "STAFF" {
		t.Errorf("role: got %v, want STAFF", resp["role"])
	}
}

func TestCreateUser_HashesPassword(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "POST", "/users", map[string]string{
		"email":     "hash@test.com",
		"password":  "plaintext-password",
		"full_name": "Hash Test",
		"role":      "STAFF",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	// Find the created user in the mock store and verify the password was hashed.
	var found database.User
	for _, u := range store.users {
		if u.Email == "hash@test.com" {
			found = u
			break
		}
	}
	if found.ID == uuid.Nil {
		t.Fatal("user not found in store")
	}

	if found.HashedPassword == "plaintext-password" {
		t.Fatal("password was stored in plaintext; expected bcrypt hash")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.HashedPassword), []byte("plaintext-password")); err != nil {
		t.Errorf("stored hash does not match original password: %v", err)
	}
}

func TestCreateUser_ExcludesHashedPassword(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "POST", "/users", map[string]string{
		"email":     "nopass@test.com",
		"password":  "secret",
		"full_name": "No Pass In Response",
		"role":      "ADMIN",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusCreated)
	}

	resp := decodeObjectResponse(t, rr)
	if _, exists := resp["hashed_password"]; exists {
		t.Error("response must not include hashed_password")
	}
	if _, exists := resp["password"]; exists {
		t.Error("response must not include password")
	}
}

func TestCreateUser_MissingFields(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "POST", "/users", map[string]string{
		"email": "incomplete@test.com",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateUser_InvalidRole(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "POST", "/users", map[string]string{
		"email":     "bad@test.com",
		"password":  "secret",
		"full_name": "Bad Role",
		"role":      "SUPERADMIN",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCreateUser_InvalidEmail(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "POST", "/users", map[string]string{
		"email":     "not-an-email",
		"password":  "secret",
		"full_name": "Bad Email",
		"role":      "STAFF",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}

	resp := decodeObjectResponse(t, rr)
	if resp["error"] != "invalid email format" {
		t.Errorf("error: got %v, want 'invalid email format'", resp["error"])
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store := newMockUserStore()

	// Pre-populate a user with this email.
	store.users[uuid.New()] = database.User{
		ID: uuid.New(), Email: "taken@test.com",
		FullName: "Existing", Role: enum.UserRoleStaff, IsActive: true,
	}

	router := setupUserRouter(store)

	rr := doRequest(t, router, "POST", "/users", map[string]string{
		"email":     "taken@test.com",
		"password":  "secret",
		"full_name": "Duplicate",
		"role":      "STAFF",
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}

	resp := decodeObjectResponse(t, rr)
	if resp["error"] != "email already exists" {
		t.Errorf("error: got %v, want 'email already exists'", resp["error"])
	}
}

// --- Update tests ---

func TestUpdateUser_Valid(t *testing.T) {
	store := newMockUserStore()
	userID := uuid.New()

	store.users[userID] = database.User{
		ID:       userID,
		Email:    "old@test.com",
		FullName: "Old Name",
		Role:     enum.UserRoleStaff,
		IsActive: true,
	}

	router := setupUserRouter(store)

	rr := doRequest(t, router, "PUT", "/users/"+userID.String(), map[string]string{
		"email":     "updated@test.com",
		"full_name": "Updated Name",
		"role":      "ADMIN",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeObjectResponse(t, rr)
	if resp["email"] != "updated@test.com" {
		t.Errorf("email: got %v, want updated@test.com", resp["email"])
	}
	if resp["full_name"] != "Updated Name" {
		t.Errorf("full_name: got %v, want Updated Name", resp["full_name"])
	}
	if resp["role"] != "ADMIN" {
		t.Errorf("role: got %v, want ADMIN", resp["role"])
	}
}

func TestUpdateUser_NotFound(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)
	userID := uuid.New()

	rr := doRequest(t, router, "PUT", "/users/"+userID.String(), map[string]string{
		"email":     "updated@test.com",
		"full_name": "Updated Name",
		"role":      "ADMIN",
	})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestUpdateUser_MissingFields(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)
	userID := uuid.New()

	rr := doRequest(t, router, "PUT", "/users/"+userID.String(), map[string]string{
		"email": "partial@test.com",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestUpdateUser_InvalidUserID(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "PUT", "/users/not-a-uuid", map[string]string{
		"email":     "bad@test.com",
		"full_name": "Bad ID",
		"role":      "STAFF",
	})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestUpdateUser_DuplicateEmail(t *testing.T) {
	store := newMockUserStore()
	userID := uuid.New()
	otherUserID := uuid.New()

	store.users[otherUserID] = database.User{
		ID: otherUserID, Email: "taken@test.com",
		FullName: "Other", Role: enum.UserRoleStaff, IsActive: true,
	}
	store.users[userID] = database.User{
		ID: userID, Email: "me@test.com",
		FullName: "Me", Role: enum.UserRoleStaff, IsActive: true,
	}

	router := setupUserRouter(store)

	rr := doRequest(t, router, "PUT", "/users/"+userID.String(), map[string]string{
		"email":     "taken@test.com",
		"full_name": "Me Updated",
		"role":      "STAFF",
	})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

// --- Delete tests ---

func TestDeleteUser_Valid(t *testing.T) {
	store := newMockUserStore()
	userID := uuid.New()

	store.users[userID] = database.User{
		ID:       userID,
		Email:    "delete@test.com",
		FullName: "Delete Me",
		Role:     enum.UserRoleStaff,
		IsActive: true,
	}

	router := setupUserRouter(store)

	rr := doRequest(t, router, "DELETE", "/users/"+userID.String(), nil)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNoContent, rr.Body.String())
	}

	// Verify the user is soft-deleted, not removed.
	u, exists := store.users[userID]
	if !exists {
		t.Fatal("expected user to still exist in store after soft delete")
	}
	if u.IsActive {
		t.Error("expected is_active=false after soft delete")
	}
}

func TestDeleteUser_NotFound(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)
	userID := uuid.New()

	rr := doRequest(t, router, "DELETE", "/users/"+userID.String(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestDeleteUser_InvalidUserID(t *testing.T) {
	store := newMockUserStore()
	router := setupUserRouter(store)

	rr := doRequest(t, router, "DELETE", "/users/not-a-uuid", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}
