// Package auth guards the admin endpoints with HTTP basic auth backed by a
// bcrypt password hash.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/c-pro/geche"
	"golang.org/x/crypto/bcrypt"
)

const (
	// Failures allowed before backoff kicks in.
	freeAttempts  = 3
	attemptsTTL   = time.Hour
	authRealm     = `Basic realm="accordion admin"`
	disabledError = "Admin access is not configured"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrThrottled          = errors.New("too many failed attempts")
	ErrDisabled           = errors.New("admin access disabled")
)

type Config struct {
	Username     string
	PasswordHash string
}

func (c *Config) Validate() error {
	if c.PasswordHash == "" {
		return nil
	}
	if c.Username == "" {
		return errors.New("admin username is required when a password hash is set")
	}
	if _, err := bcrypt.Cost([]byte(c.PasswordHash)); err != nil {
		return fmt.Errorf("admin password hash is not a valid bcrypt hash: %w", err)
	}
	return nil
}

type loginAttempts struct {
	Failed int64
	Last   int64
}

// Authenticator checks admin credentials and throttles repeated failures per
// username.
type Authenticator struct {
	Config
	attempts *geche.Locker[string, loginAttempts]
	now      func() time.Time
	logger   *slog.Logger
}

func NewAuthenticator(ctx context.Context, config Config, logger *slog.Logger) (*Authenticator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Authenticator{
		Config:   config,
		attempts: geche.NewLocker[string, loginAttempts](geche.NewMapTTLCache[string, loginAttempts](ctx, attemptsTTL, time.Minute)),
		now:      time.Now,
		logger:   logger,
	}, nil
}

// Enabled reports whether admin credentials are configured at all.
func (a *Authenticator) Enabled() bool {
	return a.PasswordHash != ""
}

// Check validates a username/password pair.
func (a *Authenticator) Check(username, password string) error {
	if !a.Enabled() {
		return ErrDisabled
	}

	now := a.now()
	tx := a.attempts.Lock()
	defer tx.Unlock()

	state, _ := tx.Get(username)
	if state.Failed > freeAttempts {
		next := state.Last + 30*(state.Failed*state.Failed)
		if now.Unix() < next {
			return fmt.Errorf("%w: next attempt in %d seconds", ErrThrottled, next-now.Unix())
		}
	}

	// bcrypt runs for unknown usernames too so timing does not reveal them.
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
	if !userOK || !passOK {
		tx.Set(username, loginAttempts{Failed: state.Failed + 1, Last: now.Unix()})
		return ErrInvalidCredentials
	}

	tx.Set(username, loginAttempts{Last: now.Unix()})
	return nil
}

// RequireAdmin wraps next with a basic auth check.
func (a *Authenticator) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			http.Error(w, disabledError, http.StatusServiceUnavailable)
			return
		}

		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", authRealm)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if err := a.Check(username, password); err != nil {
			if errors.Is(err, ErrThrottled) {
				a.logger.Warn("admin login throttled", "username", username, "remote_addr", r.RemoteAddr)
				http.Error(w, err.Error(), http.StatusTooManyRequests)
				return
			}
			a.logger.Warn("admin login failed", "username", username, "remote_addr", r.RemoteAddr)
			w.Header().Set("WWW-Authenticate", authRealm)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}
