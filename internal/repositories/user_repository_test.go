package repositories

import (
	"errors"
	"testing"

	"antigravity/focus/internal/models"
	"antigravity/focus/internal/testhelpers"
)

func TestUserRepositoryCreateAndGet(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := &UserRepository{DB: db}

	user := &models.User{Username: "monk", PasswordHash: "hash", Nickname: "Monk"}
	if err := repo.CreateUser(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected generated user ID")
	}

	byName, err := repo.GetUserByUsername("monk")
	if err != nil {
		t.Fatalf("failed to get user by username: %v", err)
	}
	if byName.ID != user.ID {
		t.Fatalf("expected ID %d, got %d", user.ID, byName.ID)
	}

	byID, err := repo.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("failed to get user by ID: %v", err)
	}
	if byID.Username != "monk" {
		t.Fatalf("expected username monk, got %s", byID.Username)
	}
}

func TestUserRepositoryNotFound(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := &UserRepository{DB: db}

	if _, err := repo.GetUserByUsername("nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.GetUserByID(999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepositoryUniqueUsername(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := &UserRepository{DB: db}

	if err := repo.CreateUser(&models.User{Username: "monk", PasswordHash: "hash"}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	err := repo.CreateUser(&models.User{Username: "monk", PasswordHash: "other"})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestUserRepositoryExistsByUsername(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := &UserRepository{DB: db}

	exists, err := repo.ExistsByUsername("monk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Fatal("expected monk to be absent")
	}

	if err := repo.CreateUser(&models.User{Username: "monk", PasswordHash: "hash"}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	exists, err = repo.ExistsByUsername("monk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Fatal("expected monk to exist")
	}
}
