// Package session owns the console's single sign-in session: its state
// machine, the login/logout orchestration around it and its persistence
// through a side channel.
//
// A Store is built once at process start, after the side channel is ready,
// and Restore is called before the HTTP listener accepts requests. Close
// resets in-memory state only; persisted data is removed by Logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/partyplanning/console/internal/auth"
	"github.com/partyplanning/console/internal/credentials"
	"github.com/partyplanning/console/internal/domain"
	"github.com/partyplanning/console/internal/events"
	"github.com/partyplanning/console/internal/observability"
	"github.com/partyplanning/console/internal/sidechannel"
)

// DefaultVerifyTimeout bounds a credential check when Options leaves it unset.
const DefaultVerifyTimeout = 10 * time.Second

// Options wires a Store to its collaborators. Verifier, SideChannel and
// Tokens are required.
type Options struct {
	Verifier      credentials.Verifier
	SideChannel   sidechannel.Store
	Tokens        *auth.TokenManager
	Keys          sidechannel.Keys
	VerifyTimeout time.Duration
	Logger        *zap.Logger
	Events        events.Dispatcher
	Metrics       *observability.Metrics
}

// Store is the only component that mutates the session.
type Store struct {
	verifier credentials.Verifier
	side     sidechannel.Store
	tokens   *auth.TokenManager
	keys     sidechannel.Keys
	timeout  time.Duration
	logger   *zap.Logger
	events   events.Dispatcher
	metrics  *observability.Metrics

	// opMu serializes sequence issuing and side-channel commits so a stale
	// attempt can never persist after a newer call.
	opMu sync.Mutex

	// stored reports whether the side channel holds a signed-in user. Guarded
	// by opMu.
	stored bool

	mu     sync.RWMutex
	state  Session
	latest uint64
}

// NewStore builds an Idle store. It panics when a required collaborator is
// missing, since that is a wiring mistake rather than a runtime condition.
func NewStore(opts Options) *Store {
	if opts.Verifier == nil || opts.SideChannel == nil || opts.Tokens == nil {
		panic("session: NewStore requires Verifier, SideChannel and Tokens")
	}
	if opts.Keys == (sidechannel.Keys{}) {
		opts.Keys = sidechannel.DefaultKeys("")
	}
	if opts.VerifyTimeout <= 0 {
		opts.VerifyTimeout = DefaultVerifyTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Store{
		verifier: opts.Verifier,
		side:     opts.SideChannel,
		tokens:   opts.Tokens,
		keys:     opts.Keys,
		timeout:  opts.VerifyTimeout,
		logger:   opts.Logger,
		events:   opts.Events,
		metrics:  opts.Metrics,
		state:    Idle(),
	}
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// apply runs ev through Reduce. Callers hold opMu when the event can race
// with a login commit.
func (s *Store) apply(ev Event) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	from := s.state.Status
	s.state = Reduce(s.state, ev)
	s.logger.Debug("session transition",
		zap.String("from", string(from)),
		zap.String("to", string(s.state.Status)),
		zap.String("event", fmt.Sprintf("%T", ev)))
	return s.state.clone()
}

func (s *Store) issue() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	return s.latest
}

func (s *Store) isLatest(attempt uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest == attempt
}

// Restore recovers a persisted session without contacting the verifier.
// Missing data leaves the session Idle; corrupt data is removed first.
func (s *Store) Restore(ctx context.Context) Session {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.issue()

	user, reason, err := s.readPersisted(ctx)
	switch {
	case err != nil:
		s.logger.Warn("session restore: side channel unreadable", zap.Error(err))
		return s.apply(LoggedOut{})
	case reason != "":
		s.logger.Warn("session restore: discarding persisted session", zap.String("reason", reason))
		if rmErr := s.side.Remove(ctx, s.keys.All()...); rmErr != nil {
			s.logger.Warn("session restore: cleanup failed", zap.Error(rmErr))
		}
		s.publish(ctx, events.Event{Type: events.EventRestoreFailed, Payload: events.RestoreFailedPayload{Reason: reason}})
		return s.apply(LoggedOut{})
	case user == nil:
		return s.apply(LoggedOut{})
	}

	s.stored = true
	snap := s.apply(Restored{User: *user})
	s.publish(ctx, events.Event{Type: events.EventRestored, UserID: user.ID, Email: user.Email, Role: user.Role})
	return snap
}

// readPersisted returns the stored user, or a non-empty reason when the
// stored data must be discarded. A nil user with no reason means nothing was
// stored.
func (s *Store) readPersisted(ctx context.Context) (*domain.User, string, error) {
	token, tokenErr := s.side.Get(ctx, s.keys.Token)
	if tokenErr != nil && !errors.Is(tokenErr, sidechannel.ErrNotFound) {
		return nil, "", tokenErr
	}
	rawUser, userErr := s.side.Get(ctx, s.keys.User)
	if userErr != nil && !errors.Is(userErr, sidechannel.ErrNotFound) {
		return nil, "", userErr
	}

	hasToken, hasUser := tokenErr == nil, userErr == nil
	switch {
	case !hasToken && !hasUser:
		return nil, "", nil
	case !hasToken:
		return nil, "user without token", nil
	case !hasUser:
		return nil, "token without user", nil
	}

	var user domain.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, "malformed user", nil
	}
	if user.ID == "" || user.Email == "" {
		return nil, "incomplete user", nil
	}
	if !user.Role.Known() {
		return nil, "unknown role", nil
	}
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, "invalid token", nil
	}
	if claims.Subject != user.ID {
		return nil, "token subject mismatch", nil
	}
	return &user, "", nil
}

// Login runs one sign-in attempt and returns the resulting session. The
// session enters Authenticating before the verifier is called. A failed
// attempt made while a user is persisted also clears that data. When a later
// Login, Logout or Restore is issued before this attempt resolves, its
// outcome is dropped and the current session is returned instead.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) Session {
	s.opMu.Lock()
	attempt := s.issue()
	s.apply(LoginStarted{})
	s.opMu.Unlock()
	s.publish(ctx, events.Event{Type: events.EventLoginStarted, Email: creds.Email, Attempt: attempt})

	user, err := s.verify(ctx, creds)
	if err == nil && !user.IsActive {
		err = domain.ErrAccountDisabled
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if !s.isLatest(attempt) {
		s.logger.Debug("login attempt superseded", zap.Uint64("attempt", attempt))
		s.metrics.RecordLogin("discarded")
		snap := s.Snapshot()
		s.publish(ctx, events.Event{Type: events.EventLoginDiscarded, Email: creds.Email, Attempt: attempt,
			Payload: events.LoginDiscardedPayload{LatestAttempt: s.latestAttempt()}})
		return snap
	}

	if err == nil {
		err = s.persist(ctx, *user, creds.RememberMe)
	}
	if err != nil {
		kind := domain.KindOf(err)
		if kind == domain.ErrorKindUnavailable {
			s.logger.Error("login failed", zap.String("email", creds.Email), zap.Error(err))
		}
		if s.stored {
			// The previous user's session must not come back on restart.
			if rmErr := s.side.Remove(ctx, s.keys.All()...); rmErr != nil {
				s.logger.Warn("login: failed to clear replaced session", zap.Error(rmErr))
			}
			s.stored = false
		}
		s.metrics.RecordLogin(string(kind))
		snap := s.apply(LoginFailed{Kind: kind, Message: kind.Message()})
		s.publish(ctx, events.Event{Type: events.EventLoginFailed, Email: creds.Email, Attempt: attempt,
			Payload: events.LoginFailedPayload{Kind: kind}})
		return snap
	}

	s.stored = true
	s.metrics.RecordLogin("success")
	snap := s.apply(LoginSucceeded{User: *user})
	s.publish(ctx, events.Event{Type: events.EventLoginSucceeded, Email: user.Email, UserID: user.ID, Role: user.Role, Attempt: attempt})
	return snap
}

func (s *Store) latestAttempt() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

type verifyResult struct {
	user *domain.User
	err  error
}

// verify calls the verifier on its own goroutine so an unresponsive verifier
// cannot hold the session in Authenticating past the timeout.
func (s *Store) verify(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	email := credentials.NormalizeEmail(creds.Email)
	if email == "" || creds.Password == "" {
		return nil, domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan verifyResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("verifier panicked", zap.Any("panic", r))
				done <- verifyResult{err: fmt.Errorf("verifier panic: %v", r)}
			}
		}()
		user, err := s.verifier.Verify(ctx, email, creds.Password)
		done <- verifyResult{user: user, err: err}
	}()

	select {
	case res := <-done:
		if res.err == nil && res.user == nil {
			return nil, domain.ErrAccountNotFound
		}
		if errors.Is(res.err, context.DeadlineExceeded) {
			return nil, domain.ErrVerifyTimeout
		}
		return res.user, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, domain.ErrVerifyTimeout
		}
		return nil, ctx.Err()
	}
}

func (s *Store) persist(ctx context.Context, user domain.User, rememberMe bool) error {
	token, _, err := s.tokens.GenerateToken(user)
	if err != nil {
		return fmt.Errorf("issue session token: %w", err)
	}
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	set := map[string]string{
		s.keys.Token: token,
		s.keys.User:  string(rawUser),
	}
	var remove []string
	if rememberMe {
		set[s.keys.RememberMe] = "true"
	} else {
		remove = append(remove, s.keys.RememberMe)
	}
	if err := s.side.Write(ctx, set, remove...); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

// Logout ends the session, clears persisted data and supersedes any
// pending login. It never fails; side-channel errors are logged.
func (s *Store) Logout(ctx context.Context) Session {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.issue()

	prev := s.Snapshot()
	snap := s.apply(LoggedOut{})
	if err := s.side.Remove(ctx, s.keys.All()...); err != nil {
		s.logger.Warn("logout: failed to clear side channel", zap.Error(err))
	}
	s.stored = false

	ev := events.Event{Type: events.EventLoggedOut}
	if prev.User != nil {
		ev.UserID, ev.Email, ev.Role = prev.User.ID, prev.User.Email, prev.User.Role
	}
	s.publish(ctx, ev)
	return snap
}

// ClearError dismisses a failed sign-in. It is a no-op in any other state.
func (s *Store) ClearError() Session {
	return s.apply(ErrorCleared{})
}

// Close resets in-memory state and drops pending logins. Persisted data is
// kept for the next process.
func (s *Store) Close() {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	s.issue()
	s.apply(LoggedOut{})
}

func (s *Store) publish(ctx context.Context, ev events.Event) {
	if s.events == nil {
		return
	}
	ev.ID = uuid.NewString()
	ev.Timestamp = time.Now().UTC()
	if err := s.events.Publish(ctx, ev); err != nil {
		s.logger.Debug("session event handler failed", zap.String("event_type", string(ev.Type)), zap.Error(err))
	}
}
