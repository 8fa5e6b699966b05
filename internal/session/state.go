package session

import "github.com/partyplanning/console/internal/domain"

// Session is a read-only snapshot of the console session.
type Session struct {
	Status       domain.Status    `json:"status"`
	User         *domain.User     `json:"user,omitempty"`
	ErrorKind    domain.ErrorKind `json:"errorKind,omitempty"`
	ErrorMessage string           `json:"errorMessage,omitempty"`
}

// Idle is the initial session.
func Idle() Session {
	return Session{Status: domain.StatusIdle}
}

// Authenticated reports whether a user is signed in.
func (s Session) Authenticated() bool {
	return s.Status == domain.StatusAuthenticated && s.User != nil
}

// Valid reports whether the user/error fields agree with Status. A session
// never holds a user and an error at the same time.
func (s Session) Valid() bool {
	hasUser := s.User != nil
	hasErr := s.ErrorMessage != ""
	switch s.Status {
	case domain.StatusIdle, domain.StatusAuthenticating:
		return !hasUser && !hasErr && s.ErrorKind == domain.ErrorKindNone
	case domain.StatusAuthenticated:
		return hasUser && !hasErr && s.ErrorKind == domain.ErrorKindNone
	case domain.StatusFailed:
		return !hasUser && hasErr && s.ErrorKind != domain.ErrorKindNone
	default:
		return false
	}
}

func (s Session) clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Event is a transition input for Reduce.
type Event interface {
	isEvent()
}

// LoginStarted moves the session into Authenticating.
type LoginStarted struct{}

// LoginSucceeded carries the verified user.
type LoginSucceeded struct {
	User domain.User
}

// LoginFailed carries the failure reason.
type LoginFailed struct {
	Kind    domain.ErrorKind
	Message string
}

// LoggedOut resets the session.
type LoggedOut struct{}

// ErrorCleared dismisses a failure.
type ErrorCleared struct{}

// Restored carries a user recovered from the side channel.
type Restored struct {
	User domain.User
}

func (LoginStarted) isEvent()   {}
func (LoginSucceeded) isEvent() {}
func (LoginFailed) isEvent()    {}
func (LoggedOut) isEvent()      {}
func (ErrorCleared) isEvent()   {}
func (Restored) isEvent()       {}

// Reduce is the session transition function. It performs no I/O and always
// returns a session that satisfies Valid.
func Reduce(s Session, ev Event) Session {
	switch e := ev.(type) {
	case LoginStarted:
		return Session{Status: domain.StatusAuthenticating}
	case LoginSucceeded:
		u := e.User
		return Session{Status: domain.StatusAuthenticated, User: &u}
	case Restored:
		u := e.User
		return Session{Status: domain.StatusAuthenticated, User: &u}
	case LoginFailed:
		kind := e.Kind
		if kind == domain.ErrorKindNone {
			kind = domain.ErrorKindUnavailable
		}
		msg := e.Message
		if msg == "" {
			msg = kind.Message()
		}
		return Session{Status: domain.StatusFailed, ErrorKind: kind, ErrorMessage: msg}
	case LoggedOut:
		return Idle()
	case ErrorCleared:
		if s.Status != domain.StatusFailed {
			return s
		}
		return Idle()
	default:
		return s
	}
}
