package auth_test

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"vibrato/internal/auth"
	"vibrato/internal/storage"
	"vibrato/pkg/errs"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestService(t *testing.T, opts auth.Options) *auth.Service {
	t.Helper()
	return auth.NewService(storage.NewMemory(), testLogger(), opts)
}

func TestSignUp(t *testing.T) {
	svc := newTestService(t, auth.Options{})

	user, err := svc.SignUp("Alice", "Alice@Example.com", "secret")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if user.ID == "" {
		t.Error("Expected a generated user ID")
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Expected the email lowercased, got %q", user.Email)
	}
	if user.Password != "" {
		t.Error("Expected the returned record to omit the password")
	}

	// Signing up logs the user in
	current, ok, err := svc.CurrentUser()
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected a logged-in user after sign up")
	}
	if current.Email != "alice@example.com" {
		t.Errorf("Expected current user alice, got %q", current.Email)
	}
}

func TestSignUpValidation(t *testing.T) {
	svc := newTestService(t, auth.Options{})

	cases := []struct {
		name                  string
		userName, email, pass string
	}{
		{"MissingName", "", "a@b.com", "pw"},
		{"MissingEmail", "A", "", "pw"},
		{"MissingPassword", "A", "a@b.com", ""},
		{"WhitespaceName", "   ", "a@b.com", "pw"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SignUp(tc.userName, tc.email, tc.pass)
			var validation *errs.ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("Expected ValidationError, got %T: %v", err, err)
			}
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc := newTestService(t, auth.Options{})

	if _, err := svc.SignUp("Alice", "alice@example.com", "pw"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	// Same email in a different case still collides
	_, err := svc.SignUp("Impostor", "ALICE@example.com", "other")
	var validation *errs.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Expected ValidationError for duplicate email, got %T: %v", err, err)
	}
}

func TestLoginLogout(t *testing.T) {
	svc := newTestService(t, auth.Options{})

	if _, err := svc.SignUp("Bob", "bob@example.com", "hunter2"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if err := svc.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, ok, _ := svc.CurrentUser(); ok {
		t.Fatal("Expected no current user after logout")
	}

	user, err := svc.Login("BOB@example.com", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.Name != "Bob" {
		t.Errorf("Expected Bob, got %q", user.Name)
	}
	if _, ok, _ := svc.CurrentUser(); !ok {
		t.Error("Expected a current user after login")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t, auth.Options{})
	if _, err := svc.SignUp("Bob", "bob@example.com", "hunter2"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if err := svc.Logout(); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	cases := []struct {
		name, email, pass string
	}{
		{"WrongPassword", "bob@example.com", "wrong"},
		{"UnknownEmail", "nobody@example.com", "hunter2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(tc.email, tc.pass)
			var validation *errs.ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("Expected ValidationError, got %T: %v", err, err)
			}
			if _, ok, _ := svc.CurrentUser(); ok {
				t.Error("Expected no session after a failed login")
			}
		})
	}
}

func TestHashedPasswords(t *testing.T) {
	kv := storage.NewMemory()
	svc := auth.NewService(kv, testLogger(), auth.Options{HashPasswords: true})

	if _, err := svc.SignUp("Carol", "carol@example.com", "s3cret"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	// The stored directory must not contain the plaintext credential
	raw, ok, err := kv.Get(storage.KeyUsers)
	if err != nil || !ok {
		t.Fatalf("Expected a stored user directory: %v", err)
	}
	if bytes.Contains(raw, []byte("s3cret")) {
		t.Error("Expected the stored credential to be hashed")
	}

	if _, err := svc.Login("carol@example.com", "s3cret"); err != nil {
		t.Errorf("Login against the hash failed: %v", err)
	}
	if _, err := svc.Login("carol@example.com", "wrong"); err == nil {
		t.Error("Expected a wrong password to be rejected")
	}
}

func TestSessionLifecycle(t *testing.T) {
	sm := auth.NewSessionManager(time.Hour, false)

	session, err := sm.Create("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if session.ID == "" {
		t.Fatal("Expected a session ID")
	}

	got, ok := sm.Get(session.ID)
	if !ok {
		t.Fatal("Expected to retrieve the session")
	}
	if got.UserID != "user-1" {
		t.Errorf("Expected user-1, got %q", got.UserID)
	}

	sm.Delete(session.ID)
	if _, ok := sm.Get(session.ID); ok {
		t.Error("Expected the session to be gone after Delete")
	}
}

func TestSessionExpiry(t *testing.T) {
	sm := auth.NewSessionManager(10*time.Millisecond, false)

	session, err := sm.Create("user-1", "alice@example.com")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if _, ok := sm.Get(session.ID); ok {
		t.Error("Expected the session to have expired")
	}
	if sm.Refresh(session.ID) {
		t.Error("Expected Refresh to reject an expired session")
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	sm := auth.NewSessionManager(time.Hour, false)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := sm.Create("user", "u@example.com")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if seen[session.ID] {
			t.Fatal("Duplicate session ID generated")
		}
		seen[session.ID] = true
	}
}
