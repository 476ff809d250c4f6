package services

import (
	"context"
	"testing"
	"time"

	"github.com/clipfolio/sync-core/internal/core/domain"
	"github.com/clipfolio/sync-core/internal/core/ports/driven/mocks"
	"github.com/clipfolio/sync-core/internal/core/ports/driving"
)

func newTestUserService() (*mocks.MockUserStore, *mocks.MockSessionStore, *userService) {
	userStore := mocks.NewMockUserStore()
	sessionStore := mocks.NewMockSessionStore()
	authAdapter := mocks.NewMockAuthAdapter()
	svc := NewUserService(userStore, sessionStore, authAdapter).(*userService)
	return userStore, sessionStore, svc
}

func TestUserService_Create(t *testing.T) {
	_, _, svc := newTestUserService()

	tests := []struct {
		name    string
		req     driving.CreateUserRequest
		wantErr error
	}{
		{
			name: "valid user",
			req: driving.CreateUserRequest{
				Email:    "test@example.com",
				Password: "password123",
				Name:     "Test User",
				Role:     domain.RoleCreator,
			},
			wantErr: nil,
		},
		{
			name: "missing email",
			req: driving.CreateUserRequest{
				Email:    "",
				Password: "password123",
				Name:     "Test User",
				Role:     domain.RoleCreator,
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "missing password",
			req: driving.CreateUserRequest{
				Email:    "test2@example.com",
				Password: "",
				Name:     "Test User",
				Role:     domain.RoleCreator,
			},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "missing name",
			req: driving.CreateUserRequest{
				Email:    "test3@example.com",
				Password: "password123",
				Name:     "",
				Role:     domain.RoleCreator,
			},
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Create(context.Background(), tt.req)

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user == nil {
				t.Fatal("expected user to be returned")
			}
			if user.Email != tt.req.Email {
				t.Errorf("expected email %s, got %s", tt.req.Email, user.Email)
			}
			if user.Name != tt.req.Name {
				t.Errorf("expected name %s, got %s", tt.req.Name, user.Name)
			}
			if user.Role != tt.req.Role {
				t.Errorf("expected role %s, got %s", tt.req.Role, user.Role)
			}
			if !user.Active {
				t.Error("expected user to be active")
			}
		})
	}
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	_, _, svc := newTestUserService()

	req := driving.CreateUserRequest{
		Email:    "test@example.com",
		Password: "password123",
		Name:     "Test User",
		Role:     domain.RoleCreator,
	}

	// Create first user
	_, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Try to create duplicate
	_, err = svc.Create(context.Background(), req)
	if err != domain.ErrAlreadyExists {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestUserService_Get(t *testing.T) {
	userStore, _, svc := newTestUserService()

	// Create a user
	user := &domain.User{
		ID:     "user-123",
		Email:  "test@example.com",
		Name:   "Test User",
		Role:   domain.RoleCreator,
		Active: true,
	}
	_ = userStore.Save(context.Background(), user)

	// Get the user
	result, err := svc.Get(context.Background(), "user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ID != user.ID {
		t.Errorf("expected user ID %s, got %s", user.ID, result.ID)
	}

	// Get non-existent user
	_, err = svc.Get(context.Background(), "non-existent")
	if err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserService_GetByEmail(t *testing.T) {
	userStore, _, svc := newTestUserService()

	// Create a user
	user := &domain.User{
		ID:     "user-123",
		Email:  "test@example.com",
		Name:   "Test User",
		Role:   domain.RoleCreator,
		Active: true,
	}
	_ = userStore.Save(context.Background(), user)

	// Get by email
	result, err := svc.GetByEmail(context.Background(), "test@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Email != user.Email {
		t.Errorf("expected email %s, got %s", user.Email, result.Email)
	}

	// Get non-existent email
	_, err = svc.GetByEmail(context.Background(), "nonexistent@example.com")
	if err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserService_List(t *testing.T) {
	userStore, _, svc := newTestUserService()

	// Create users
	for i := 0; i < 3; i++ {
		user := &domain.User{
			ID:     generateID(),
			Email:  "user" + string(rune('0'+i)) + "@example.com",
			Name:   "User " + string(rune('0'+i)),
			Role:   domain.RoleCreator,
			Active: true,
		}
		_ = userStore.Save(context.Background(), user)
	}

	// List users
	users, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 3 {
		t.Errorf("expected 3 users, got %d", len(users))
	}
}

func TestUserService_Update(t *testing.T) {
	userStore, _, svc := newTestUserService()

	// Create a user
	user := &domain.User{
		ID:        "user-123",
		Email:     "test@example.com",
		Name:      "Test User",
		Role:      domain.RoleCreator,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	_ = userStore.Save(context.Background(), user)

	// Update name
	newName := "Updated Name"
	updated, err := svc.Update(context.Background(), "user-123", driving.UpdateUserRequest{
		Name: &newName,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != newName {
		t.Errorf("expected name %s, got %s", newName, updated.Name)
	}

	// Update role
	newRole := domain.RoleAdmin
	updated, err = svc.Update(context.Background(), "user-123", driving.UpdateUserRequest{
		Role: &newRole,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Role != newRole {
		t.Errorf("expected role %s, got %s", newRole, updated.Role)
	}
}

func TestUserService_Update_DeactivateUser(t *testing.T) {
	userStore, sessionStore, svc := newTestUserService()

	// Create a user with sessions
	user := &domain.User{
		ID:     "user-123",
		Email:  "test@example.com",
		Name:   "Test User",
		Role:   domain.RoleCreator,
		Active: true,
	}
	_ = userStore.Save(context.Background(), user)

	session := &domain.Session{
		ID:     "session-123",
		UserID: "user-123",
		Token:  "token-123",
	}
	_ = sessionStore.Save(context.Background(), session)

	// Deactivate user
	active := false
	_, err := svc.Update(context.Background(), "user-123", driving.UpdateUserRequest{
		Active: &active,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Check sessions were deleted
	sessions, _ := sessionStore.ListByUser(context.Background(), "user-123")
	if len(sessions) != 0 {
		t.Error("expected sessions to be deleted when user is deactivated")
	}
}

func TestUserService_Delete(t *testing.T) {
	userStore, sessionStore, svc := newTestUserService()

	// Create a user with sessions
	user := &domain.User{
		ID:     "user-123",
		Email:  "test@example.com",
		Name:   "Test User",
		Role:   domain.RoleCreator,
		Active: true,
	}
	_ = userStore.Save(context.Background(), user)

	session := &domain.Session{
		ID:     "session-123",
		UserID: "user-123",
		Token:  "token-123",
	}
	_ = sessionStore.Save(context.Background(), session)

	// Delete user
	err := svc.Delete(context.Background(), "user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Verify user is deleted
	_, err = svc.Get(context.Background(), "user-123")
	if err != domain.ErrNotFound {
		t.Errorf("expected ErrNotFound after deletion, got %v", err)
	}

	// Verify sessions were deleted
	if sessionStore.Count() != 0 {
		t.Error("expected sessions to be deleted")
	}
}

func TestUserService_SetPassword(t *testing.T) {
	userStore, sessionStore, svc := newTestUserService()

	// Create a user
	user := &domain.User{
		ID:           "user-123",
		Email:        "test@example.com",
		PasswordHash: "old-hash",
		Name:         "Test User",
		Role:         domain.RoleCreator,
		Active:       true,
	}
	_ = userStore.Save(context.Background(), user)

	// Add a session
	session := &domain.Session{
		ID:     "session-123",
		UserID: "user-123",
		Token:  "token-123",
	}
	_ = sessionStore.Save(context.Background(), session)

	// Set new password
	err := svc.SetPassword(context.Background(), "user-123", "new-password")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Verify sessions were deleted (force re-login)
	if sessionStore.Count() != 0 {
		t.Error("expected sessions to be deleted after password change")
	}

	// Test empty password
	err = svc.SetPassword(context.Background(), "user-123", "")
	if err != domain.ErrInvalidInput {
		t.Errorf("expected ErrInvalidInput for empty password, got %v", err)
	}
}
