package session

import (
	"reflect"
	"testing"

	"github.com/partyplanning/console/internal/domain"
)

func sampleStates() []Session {
	admin := domain.User{ID: "u-1", Email: "admin@partyplanning.com", Role: domain.RoleAdmin, IsActive: true}
	return []Session{
		Idle(),
		Reduce(Idle(), LoginStarted{}),
		Reduce(Idle(), LoginSucceeded{User: admin}),
		Reduce(Idle(), LoginFailed{Kind: domain.ErrorKindWrongPassword}),
	}
}

func sampleEvents() []Event {
	staff := domain.User{ID: "u-2", Email: "staff@partyplanning.com", Role: domain.RoleStaff, IsActive: true}
	return []Event{
		LoginStarted{},
		LoginSucceeded{User: staff},
		LoginFailed{Kind: domain.ErrorKindAccountNotFound, Message: "No account found with that email address"},
		LoginFailed{},
		LoggedOut{},
		ErrorCleared{},
		Restored{User: staff},
	}
}

func TestReduce_AlwaysValid(t *testing.T) {
	for _, from := range sampleStates() {
		if !from.Valid() {
			t.Fatalf("seed state invalid: %+v", from)
		}
		for _, ev := range sampleEvents() {
			to := Reduce(from, ev)
			if !to.Valid() {
				t.Fatalf("Reduce(%s, %T) produced invalid session %+v", from.Status, ev, to)
			}
			if to.User != nil && to.ErrorMessage != "" {
				t.Fatalf("session holds both user and error: %+v", to)
			}
		}
	}
}

func TestReduce_Transitions(t *testing.T) {
	user := domain.User{ID: "u-1", Role: domain.RoleAdmin}
	tests := []struct {
		name string
		from Session
		ev   Event
		want domain.Status
	}{
		{"start from idle", Idle(), LoginStarted{}, domain.StatusAuthenticating},
		{"start from failed", Reduce(Idle(), LoginFailed{Kind: domain.ErrorKindWrongPassword}), LoginStarted{}, domain.StatusAuthenticating},
		{"start from authenticated", Reduce(Idle(), LoginSucceeded{User: user}), LoginStarted{}, domain.StatusAuthenticating},
		{"success", Reduce(Idle(), LoginStarted{}), LoginSucceeded{User: user}, domain.StatusAuthenticated},
		{"failure", Reduce(Idle(), LoginStarted{}), LoginFailed{Kind: domain.ErrorKindTimeout}, domain.StatusFailed},
		{"logout", Reduce(Idle(), LoginSucceeded{User: user}), LoggedOut{}, domain.StatusIdle},
		{"clear failed", Reduce(Idle(), LoginFailed{Kind: domain.ErrorKindWrongPassword}), ErrorCleared{}, domain.StatusIdle},
		{"clear authenticating", Reduce(Idle(), LoginStarted{}), ErrorCleared{}, domain.StatusAuthenticating},
		{"restore", Idle(), Restored{User: user}, domain.StatusAuthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reduce(tt.from, tt.ev).Status; got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestReduce_ClearErrorIdempotent(t *testing.T) {
	failed := Reduce(Idle(), LoginFailed{Kind: domain.ErrorKindWrongPassword})
	once := Reduce(failed, ErrorCleared{})
	twice := Reduce(once, ErrorCleared{})

	if once.Status != domain.StatusIdle {
		t.Fatalf("expected idle, got %s", once.Status)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second clear changed session: %+v vs %+v", once, twice)
	}
}

func TestReduce_FailedDefaultsMessage(t *testing.T) {
	s := Reduce(Idle(), LoginFailed{Kind: domain.ErrorKindWrongPassword})
	if s.ErrorMessage != domain.ErrorKindWrongPassword.Message() {
		t.Fatalf("unexpected message %q", s.ErrorMessage)
	}

	s = Reduce(Idle(), LoginFailed{})
	if s.ErrorKind != domain.ErrorKindUnavailable || s.ErrorMessage == "" {
		t.Fatalf("expected unavailable fallback, got %+v", s)
	}
}

func TestReduce_SuccessCopiesUser(t *testing.T) {
	user := domain.User{ID: "u-1", Role: domain.RoleAdmin}
	s := Reduce(Idle(), LoginSucceeded{User: user})
	user.Role = domain.RoleStaff
	if s.User.Role != domain.RoleAdmin {
		t.Fatalf("session user aliased caller value")
	}
}
