package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --------------------------------------------------------------------------
// Errors and constants
// --------------------------------------------------------------------------

var (
	// ErrUnknownEmail is returned when a reset is requested for an email that
	// has no registered user.
	ErrUnknownEmail = errors.New("auth: no account with this email")

	// ErrNoPendingReset is returned when a verify or complete step runs
	// without a preceding request.
	ErrNoPendingReset = errors.New("auth: no pending password reset")

	// ErrWrongCode is returned for a code that does not match. The pending
	// reset stays in place so the user can retry.
	ErrWrongCode = errors.New("auth: wrong verification code")

	// ErrCodeExpired is returned once the code's lifetime has passed.
	ErrCodeExpired = errors.New("auth: verification code expired")

	// ErrCodeNotVerified is returned when CompleteReset runs before a
	// successful VerifyCode.
	ErrCodeNotVerified = errors.New("auth: code not verified yet")
)

// codeTTL is the lifetime of a verification code.
const codeTTL = 10 * time.Minute

// --------------------------------------------------------------------------
// Pending reset table
// --------------------------------------------------------------------------

type pendingReset struct {
	code     string
	expires  time.Time
	verified bool
}

// otpTable holds in-flight password resets, keyed by lowercased email.
// Codes are never persisted; a process restart voids them.
type otpTable struct {
	mu      sync.Mutex
	pending map[string]*pendingReset
	now     func() time.Time
}

func newOTPTable() otpTable {
	return otpTable{
		pending: make(map[string]*pendingReset),
		now:     time.Now,
	}
}

// newCode draws a uniformly random 6-digit code.
func newCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		// crypto/rand failing means the platform entropy source is broken
		panic(fmt.Sprintf("failed to generate verification code: %v", err))
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// --------------------------------------------------------------------------
// Gate reset flow
// --------------------------------------------------------------------------

// RequestReset starts a password reset: it generates a verification code for
// a registered email and delivers it through the mailer. Requesting again
// replaces any earlier code.
func (g *Gate) RequestReset(email string) error {
	user, ok := g.library.FindUserByEmail(email)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEmail, email)
	}

	code := newCode()

	g.otp.mu.Lock()
	g.otp.pending[normalizeEmail(email)] = &pendingReset{
		code:    code,
		expires: g.otp.now().Add(codeTTL),
	}
	g.otp.mu.Unlock()

	body := fmt.Sprintf(
		"Hello %s,\n\nYour verification code is: %s\n\nThe code is valid for %d minutes. If you did not request a password reset, you can ignore this message.\n",
		user.Name, code, int(codeTTL.Minutes()),
	)
	if err := g.mailer.Send(user.Email, "Your password reset code", body); err != nil {
		g.otp.mu.Lock()
		delete(g.otp.pending, normalizeEmail(email))
		g.otp.mu.Unlock()
		return fmt.Errorf("failed to deliver verification code: %w", err)
	}

	g.logger.Infow("password reset requested", "email", user.Email)
	return nil
}

// VerifyCode checks the submitted code. On success the flow advances to the
// reset step; on a wrong or expired code the pending reset stays in place.
func (g *Gate) VerifyCode(email, code string) error {
	g.otp.mu.Lock()
	defer g.otp.mu.Unlock()

	pending, ok := g.otp.pending[normalizeEmail(email)]
	if !ok {
		return ErrNoPendingReset
	}
	if g.otp.now().After(pending.expires) {
		return ErrCodeExpired
	}
	if pending.code != code {
		return ErrWrongCode
	}

	pending.verified = true
	return nil
}

// CompleteReset sets the new password after a successful VerifyCode and
// clears the pending reset.
func (g *Gate) CompleteReset(email, newPassword string) error {
	g.otp.mu.Lock()
	pending, ok := g.otp.pending[normalizeEmail(email)]
	if !ok {
		g.otp.mu.Unlock()
		return ErrNoPendingReset
	}
	if !pending.verified {
		g.otp.mu.Unlock()
		return ErrCodeNotVerified
	}
	if g.otp.now().After(pending.expires) {
		g.otp.mu.Unlock()
		return ErrCodeExpired
	}
	g.otp.mu.Unlock()

	user, ok := g.library.FindUserByEmail(email)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEmail, email)
	}
	if err := g.library.SetPassword(user.ID, newPassword); err != nil {
		return err
	}

	g.otp.mu.Lock()
	delete(g.otp.pending, normalizeEmail(email))
	g.otp.mu.Unlock()

	g.logger.Infow("password reset completed", "email", user.Email)
	return nil
}
