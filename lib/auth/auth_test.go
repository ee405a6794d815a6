package auth

import (
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/openshelf/shelfd/lib/bus"
	"github.com/openshelf/shelfd/lib/library"
	"github.com/openshelf/shelfd/lib/storage"
)

var testAdmin = AdminCredentials{Email: "admin@shelfd.local", Password: "admin-pw"}

// captureMailer records sent messages instead of delivering them.
type captureMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *captureMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, body)
	return nil
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

// lastCode extracts the verification code from the most recent message.
func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail was sent")
	}
	code := codePattern.FindString(m.sent[len(m.sent)-1])
	if code == "" {
		t.Fatalf("no code in mail body: %q", m.sent[len(m.sent)-1])
	}
	return code
}

type fixture struct {
	storage storage.IStorage
	bus     bus.IBus
	library *library.Library
	gate    *Gate
	mailer  *captureMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := storage.NewMemoryStorage(storage.Options{})
	b := bus.NewMemoryBus()
	t.Cleanup(func() { _ = b.Close() })

	l := library.New(s, b)
	if err := l.Load(); err != nil {
		t.Fatalf("failed to load library: %v", err)
	}
	t.Cleanup(l.Close)

	mailer := &captureMailer{}
	g := NewGate(l, s, b, testAdmin, mailer)
	if err := g.Load(); err != nil {
		t.Fatalf("failed to load gate: %v", err)
	}
	t.Cleanup(g.Close)

	return &fixture{storage: s, bus: b, library: l, gate: g, mailer: mailer}
}

func registerStudent(t *testing.T, l *library.Library) library.User {
	t.Helper()
	user, err := l.RegisterUser("Ada Lovelace", "ada@example.com", "secret-pw", "Computer Science", 3)
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	return user
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestGateStates(t *testing.T) {
	s := storage.NewMemoryStorage(storage.Options{})
	b := bus.NewMemoryBus()
	t.Cleanup(func() { _ = b.Close() })

	l := library.New(s, b)
	if err := l.Load(); err != nil {
		t.Fatalf("failed to load library: %v", err)
	}
	t.Cleanup(l.Close)

	g := NewGate(l, s, b, testAdmin, nil)
	t.Cleanup(g.Close)

	t.Run("NotReadyBeforeLoad", func(t *testing.T) {
		if g.Ready() {
			t.Error("expected gate to not be ready")
		}
		if g.CurrentState() != StateNotReady {
			t.Errorf("expected StateNotReady, got %s", g.CurrentState())
		}
		if _, err := g.Login(testAdmin.Email, testAdmin.Password); !errors.Is(err, ErrNotReady) {
			t.Errorf("expected ErrNotReady, got %v", err)
		}
	})

	if err := g.Load(); err != nil {
		t.Fatalf("failed to load gate: %v", err)
	}

	t.Run("LoggedOutAfterLoad", func(t *testing.T) {
		if !g.Ready() {
			t.Error("expected gate to be ready")
		}
		if g.CurrentState() != StateLoggedOut {
			t.Errorf("expected StateLoggedOut, got %s", g.CurrentState())
		}
	})

	t.Run("AdminLogin", func(t *testing.T) {
		state, err := g.Login(testAdmin.Email, testAdmin.Password)
		if err != nil {
			t.Fatalf("admin login failed: %v", err)
		}
		if state != StateAdmin {
			t.Errorf("expected StateAdmin, got %s", state)
		}
		if _, ok := g.CurrentUser(); ok {
			t.Error("expected no user record for admin sessions")
		}
	})

	t.Run("Logout", func(t *testing.T) {
		if err := g.Logout(); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		if g.CurrentState() != StateLoggedOut {
			t.Errorf("expected StateLoggedOut, got %s", g.CurrentState())
		}
	})

	t.Run("StudentLogin", func(t *testing.T) {
		user := registerStudent(t, l)

		state, err := g.Login(user.Email, "secret-pw")
		if err != nil {
			t.Fatalf("student login failed: %v", err)
		}
		if state != StateStudent {
			t.Errorf("expected StateStudent, got %s", state)
		}
		current, ok := g.CurrentUser()
		if !ok || current.ID != user.ID {
			t.Errorf("expected current user %s, got %+v", user.ID, current)
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		before := g.CurrentState()
		if _, err := g.Login("ada@example.com", "wrong"); !errors.Is(err, ErrWrongCredentials) {
			t.Errorf("expected ErrWrongCredentials, got %v", err)
		}
		if g.CurrentState() != before {
			t.Errorf("expected state unchanged, got %s", g.CurrentState())
		}
	})
}

func TestSessionSurvivesReload(t *testing.T) {
	f := newFixture(t)

	if _, err := f.gate.Login(testAdmin.Email, testAdmin.Password); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	reloaded := NewGate(f.library, f.storage, f.bus, testAdmin, nil)
	t.Cleanup(reloaded.Close)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("failed to load gate: %v", err)
	}

	if reloaded.CurrentState() != StateAdmin {
		t.Errorf("expected restored admin session, got %s", reloaded.CurrentState())
	}
}

func TestSessionConvergence(t *testing.T) {
	f := newFixture(t)

	peer := NewGate(f.library, f.storage, f.bus, testAdmin, nil)
	t.Cleanup(peer.Close)
	if err := peer.Load(); err != nil {
		t.Fatalf("failed to load peer gate: %v", err)
	}

	if _, err := f.gate.Login(testAdmin.Email, testAdmin.Password); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	waitFor(t, time.Second, func() bool {
		return peer.CurrentState() == StateAdmin
	})

	if err := f.gate.Logout(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	waitFor(t, time.Second, func() bool {
		return peer.CurrentState() == StateLoggedOut
	})
}

func TestResetFlow(t *testing.T) {
	f := newFixture(t)
	user := registerStudent(t, f.library)

	t.Run("UnknownEmail", func(t *testing.T) {
		if err := f.gate.RequestReset("nobody@example.com"); !errors.Is(err, ErrUnknownEmail) {
			t.Errorf("expected ErrUnknownEmail, got %v", err)
		}
	})

	t.Run("NoPendingReset", func(t *testing.T) {
		if err := f.gate.VerifyCode(user.Email, "000000"); !errors.Is(err, ErrNoPendingReset) {
			t.Errorf("expected ErrNoPendingReset, got %v", err)
		}
		if err := f.gate.CompleteReset(user.Email, "new-pw"); !errors.Is(err, ErrNoPendingReset) {
			t.Errorf("expected ErrNoPendingReset, got %v", err)
		}
	})

	if err := f.gate.RequestReset(user.Email); err != nil {
		t.Fatalf("failed to request reset: %v", err)
	}
	code := f.mailer.lastCode(t)

	t.Run("CompleteBeforeVerify", func(t *testing.T) {
		if err := f.gate.CompleteReset(user.Email, "new-pw"); !errors.Is(err, ErrCodeNotVerified) {
			t.Errorf("expected ErrCodeNotVerified, got %v", err)
		}
	})

	t.Run("WrongCodeKeepsFlow", func(t *testing.T) {
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		if err := f.gate.VerifyCode(user.Email, wrong); !errors.Is(err, ErrWrongCode) {
			t.Errorf("expected ErrWrongCode, got %v", err)
		}
		// flow survives a failed attempt
		if err := f.gate.VerifyCode(user.Email, code); err != nil {
			t.Errorf("expected retry with correct code to succeed: %v", err)
		}
	})

	t.Run("Complete", func(t *testing.T) {
		if err := f.gate.CompleteReset(user.Email, "new-pw"); err != nil {
			t.Fatalf("failed to complete reset: %v", err)
		}

		if _, err := f.library.CheckPassword(user.Email, "secret-pw"); err == nil {
			t.Error("expected old password to be rejected")
		}
		if _, err := f.library.CheckPassword(user.Email, "new-pw"); err != nil {
			t.Errorf("expected new password to work: %v", err)
		}

		// the pending reset is consumed
		if err := f.gate.CompleteReset(user.Email, "another-pw"); !errors.Is(err, ErrNoPendingReset) {
			t.Errorf("expected ErrNoPendingReset, got %v", err)
		}
	})
}

func TestResetExpiry(t *testing.T) {
	f := newFixture(t)
	user := registerStudent(t, f.library)

	if err := f.gate.RequestReset(user.Email); err != nil {
		t.Fatalf("failed to request reset: %v", err)
	}
	code := f.mailer.lastCode(t)

	f.gate.otp.now = func() time.Time { return time.Now().Add(codeTTL + time.Minute) }

	if err := f.gate.VerifyCode(user.Email, code); !errors.Is(err, ErrCodeExpired) {
		t.Errorf("expected ErrCodeExpired, got %v", err)
	}
}

func TestStaleStudentMarker(t *testing.T) {
	f := newFixture(t)
	user := registerStudent(t, f.library)

	if _, err := f.gate.Login(user.Email, "secret-pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	// remove the user behind the persisted session
	if err := f.library.Users.Delete(user.ID); err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}

	reloaded := NewGate(f.library, f.storage, f.bus, testAdmin, nil)
	t.Cleanup(reloaded.Close)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("failed to load gate: %v", err)
	}
	if reloaded.CurrentState() != StateLoggedOut {
		t.Errorf("expected stale session to degrade to logged out, got %s", reloaded.CurrentState())
	}
}

func TestSessionMarkerRecovery(t *testing.T) {
	f := newFixture(t)

	t.Run("FreshStart", func(t *testing.T) {
		// no markers stored yet: the gate settles on logged out
		if got := f.gate.CurrentState(); got != StateLoggedOut {
			t.Fatalf("expected %s on a fresh start, got %s", StateLoggedOut, got)
		}
	})

	t.Run("MalformedMarkers", func(t *testing.T) {
		if err := f.storage.Save("auth", []byte("{not json")); err != nil {
			t.Fatalf("failed to write markers: %v", err)
		}

		peer := NewGate(f.library, f.storage, f.bus, testAdmin, f.mailer)
		if err := peer.Load(); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		t.Cleanup(peer.Close)

		if got := peer.CurrentState(); got != StateLoggedOut {
			t.Fatalf("expected %s on malformed markers, got %s", StateLoggedOut, got)
		}
	})
}
