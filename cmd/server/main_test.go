package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"antigravity/focus/internal/config"
	"antigravity/focus/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func stubGormOpen(t *testing.T, fn func(string) (*gorm.DB, error)) {
	t.Helper()
	orig := gormOpen
	gormOpen = fn
	t.Cleanup(func() { gormOpen = orig })
}

func stubSleep(t *testing.T) {
	t.Helper()
	orig := sleep
	sleep = func(time.Duration) {}
	t.Cleanup(func() { sleep = orig })
}

func openTestDB(t *testing.T) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
}

func TestConnectWithRetrySuccess(t *testing.T) {
	var calls int32
	stubGormOpen(t, func(string) (*gorm.DB, error) {
		atomic.AddInt32(&calls, 1)
		return openTestDB(t)
	})

	db, err := connectWithRetry("dsn", time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected single connection attempt, got %d", calls)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql DB: %v", err)
	}
	sqlDB.Close()
}

func TestConnectWithRetryEventualSuccess(t *testing.T) {
	stubSleep(t)
	var calls int32
	stubGormOpen(t, func(string) (*gorm.DB, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return nil, errors.New("connect failed")
		}
		return openTestDB(t)
	})

	db, err := connectWithRetry("dsn", time.Minute, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected three connection attempts, got %d", calls)
	}
	sqlDB, _ := db.DB()
	sqlDB.Close()
}

func TestConnectWithRetryFailure(t *testing.T) {
	stubSleep(t)
	stubGormOpen(t, func(string) (*gorm.DB, error) {
		return nil, errors.New("connect failed")
	})

	if _, err := connectWithRetry("dsn", -time.Second, zap.NewNop()); err == nil {
		t.Fatal("expected error after exhausted retries")
	}
}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := openTestDB(t)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.FocusTask{}, &models.UserLevel{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	cfg := &config.Config{JWTSecret: "test-secret", TokenLifetime: time.Hour}
	return newRouter(cfg, db, nil, zap.NewNop())
}

func TestServerEndToEnd(t *testing.T) {
	handler := setupRouter(t)

	do := func(method, path, token, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	// health
	if rec := do("GET", "/healthz", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz returned %d", rec.Code)
	}

	// register and capture the token
	rec := do("POST", "/api/auth/register", "", `{"username":"monk","password":"secret-6"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	var registered struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&registered); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}

	// focus endpoints refuse anonymous callers
	if rec := do("GET", "/api/focus/tasks", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	// start a task
	rec = do("POST", "/api/focus/start", registered.Token, `{"taskName":"meditate","durationSeconds":600}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("start returned %d: %s", rec.Code, rec.Body.String())
	}
	var started struct {
		TaskID uint `json:"taskId"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&started); err != nil {
		t.Fatalf("failed to decode start response: %v", err)
	}

	// it shows up in the running list
	rec = do("GET", "/api/focus/tasks", registered.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("tasks returned %d", rec.Code)
	}

	// complete it
	rec = do("PUT", fmt.Sprintf("/api/focus/%d/complete", started.TaskID), registered.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("complete returned %d: %s", rec.Code, rec.Body.String())
	}
	var completed struct {
		TotalExperience int64 `json:"totalExperience"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&completed); err != nil {
		t.Fatalf("failed to decode complete response: %v", err)
	}
	if completed.TotalExperience != 600 {
		t.Fatalf("expected 600 experience, got %d", completed.TotalExperience)
	}

	// it moved to history
	rec = do("GET", "/api/focus/history", registered.Token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("history returned %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "meditate") {
		t.Fatalf("history missing completed task: %s", rec.Body.String())
	}
}
