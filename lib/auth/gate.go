package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openshelf/shelfd/lib/bus"
	"github.com/openshelf/shelfd/lib/library"
	"github.com/openshelf/shelfd/lib/logging"
	"github.com/openshelf/shelfd/lib/storage"
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// State is the authentication state of a gate.
type State string

const (
	// StateNotReady means Load has not completed yet. Callers must hold
	// instead of treating this as logged out.
	StateNotReady State = "not_ready"
	StateLoggedOut State = "logged_out"
	StateStudent   State = "student"
	StateAdmin     State = "admin"
)

// Storage slot holding the session markers.
const slotAuth = "auth"

var (
	// ErrNotReady is returned by session operations before Load has run.
	ErrNotReady = errors.New("auth: gate not loaded")

	// ErrWrongCredentials mirrors library.ErrWrongCredentials.
	ErrWrongCredentials = library.ErrWrongCredentials
)

// AdminCredentials is the configured administrator login pair. An empty pair
// disables the admin role.
type AdminCredentials struct {
	Email    string
	Password string
}

// markers is the durable session record. It holds role and identity only,
// never a credential.
type markers struct {
	Role   State  `json:"role"`
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
}

// --------------------------------------------------------------------------
// Gate
// --------------------------------------------------------------------------

// Gate guards the library behind a login. It persists session markers in the
// shared storage backend and announces changes on the bus, so peer processes
// converge on the same session.
//
// Thread safety: all methods are safe for concurrent use.
type Gate struct {
	library *library.Library
	storage storage.IStorage
	bus     bus.IBus
	admin   AdminCredentials
	mailer  Mailer
	logger  *zap.SugaredLogger

	// origin identifies this gate's own bus signals
	origin string

	mu          sync.RWMutex
	state       State
	currentUser library.User
	unsubscribe func()

	otp otpTable
}

// NewGate creates an unloaded gate. Mailer may be nil; the OTP flow then
// falls back to a preview mailer that logs instead of sending.
func NewGate(l *library.Library, s storage.IStorage, b bus.IBus, admin AdminCredentials, mailer Mailer) *Gate {
	logger := logging.GetLogger("auth")
	if mailer == nil {
		mailer = NewPreviewMailer()
	}
	return &Gate{
		library: l,
		storage: s,
		bus:     b,
		admin:   admin,
		mailer:  mailer,
		logger:  logger,
		origin:  uuid.NewString(),
		state:   StateNotReady,
		otp:     newOTPTable(),
	}
}

// Load reads the persisted session markers and starts listening for session
// changes from peers. Until Load returns, the gate reports StateNotReady.
func (g *Gate) Load() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateNotReady {
		return nil
	}

	g.applyMarkersLocked(g.readMarkers())

	g.unsubscribe = g.bus.Subscribe(bus.SignalTypeForKey(slotAuth), func(sig bus.Signal) {
		if sig.Origin == g.origin {
			return
		}
		g.mu.Lock()
		g.applyMarkersLocked(g.readMarkers())
		g.mu.Unlock()
	})
	return nil
}

// Close detaches the gate from the bus.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unsubscribe != nil {
		g.unsubscribe()
		g.unsubscribe = nil
	}
}

// Ready reports whether Load has completed.
func (g *Gate) Ready() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state != StateNotReady
}

// CurrentState returns the authentication state.
func (g *Gate) CurrentState() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// CurrentUser returns the logged-in student, if any. Admin sessions carry no
// user record.
func (g *Gate) CurrentUser() (library.User, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.state != StateStudent {
		return library.User{}, false
	}
	return g.currentUser, true
}

// Login authenticates the email/password pair. The configured admin pair is
// checked first; anything else is matched against the registered users.
func (g *Gate) Login(email, password string) (State, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateNotReady {
		return StateNotReady, ErrNotReady
	}

	if g.admin.Email != "" && strings.EqualFold(email, g.admin.Email) && password == g.admin.Password {
		g.state = StateAdmin
		g.currentUser = library.User{}
		g.persistMarkersLocked(markers{Role: StateAdmin, Email: g.admin.Email})
		g.logger.Infow("admin logged in", "email", email)
		return StateAdmin, nil
	}

	user, err := g.library.CheckPassword(email, password)
	if err != nil {
		g.logger.Warnw("login rejected", "email", email)
		return g.state, err
	}

	g.state = StateStudent
	g.currentUser = user
	g.persistMarkersLocked(markers{Role: StateStudent, UserID: user.ID, Email: user.Email})
	g.logger.Infow("student logged in", "email", email, "userId", user.ID)
	return StateStudent, nil
}

// Logout clears the session markers.
func (g *Gate) Logout() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == StateNotReady {
		return ErrNotReady
	}

	g.state = StateLoggedOut
	g.currentUser = library.User{}
	g.persistMarkersLocked(markers{Role: StateLoggedOut})
	g.logger.Infow("logged out")
	return nil
}

// --------------------------------------------------------------------------
// Markers
// --------------------------------------------------------------------------

// readMarkers loads the persisted session record. A missing or malformed
// record degrades to logged out.
func (g *Gate) readMarkers() markers {
	value, loaded, err := g.storage.Load(slotAuth)
	if err != nil {
		g.logger.Warnw("failed to read session markers", "error", err)
		return markers{Role: StateLoggedOut}
	}
	if !loaded {
		// fresh start, no session yet
		return markers{Role: StateLoggedOut}
	}

	var m markers
	decoder := json.NewDecoder(bytes.NewReader(value))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&m); err != nil {
		g.logger.Warnw("malformed session markers, resetting", "error", err)
		return markers{Role: StateLoggedOut}
	}
	return m
}

// applyMarkersLocked maps a marker record onto the gate state. A student
// marker whose user no longer exists degrades to logged out.
func (g *Gate) applyMarkersLocked(m markers) {
	switch m.Role {
	case StateAdmin:
		g.state = StateAdmin
		g.currentUser = library.User{}
	case StateStudent:
		if user, ok := g.library.Users.Get(m.UserID); ok {
			g.state = StateStudent
			g.currentUser = user
			return
		}
		g.logger.Warnw("session user no longer exists, logging out", "userId", m.UserID)
		fallthrough
	default:
		g.state = StateLoggedOut
		g.currentUser = library.User{}
	}
}

// persistMarkersLocked writes the session record and announces the change.
// Persistence failures keep the in-memory session and are logged, matching
// the store's durability policy.
func (g *Gate) persistMarkersLocked(m markers) {
	value, err := json.Marshal(m)
	if err != nil {
		panic(fmt.Sprintf("failed to marshal session markers: %v", err))
	}
	if err := g.storage.Save(slotAuth, value); err != nil {
		g.logger.Warnw("failed to persist session markers", "error", err)
		return
	}
	if err := g.bus.Publish(bus.Signal{Type: bus.SignalTypeForKey(slotAuth), Origin: g.origin}); err != nil {
		g.logger.Warnw("failed to announce session change", "error", err)
	}
}
