package session

import "github.com/jrsteele09/flow-client/users"

// Phase is the session lifecycle state.
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseUnauthenticated
	PhaseAuthenticatedNoProfile
	PhaseAuthenticatedOnboarded
)

func (p Phase) String() string {
	switch p {
	case PhaseUnauthenticated:
		return "unauthenticated"
	case PhaseAuthenticatedNoProfile:
		return "authenticated_no_profile"
	case PhaseAuthenticatedOnboarded:
		return "authenticated_onboarded"
	}
	return "unknown"
}

// State is the client's belief about the current principal. Snapshots handed
// out by the store are copies and safe to keep.
type State struct {
	User                   *users.User
	Profile                *users.Profile
	IsAuthenticated        bool
	IsLoading              bool
	HasCompletedOnboarding bool
	Phase                  Phase
}

// Empty is the logged out state.
func Empty() State {
	return State{Phase: PhaseUnauthenticated}
}

// initial is the state before anything has been resolved.
func initial() State {
	return State{Phase: PhaseUnknown, IsLoading: true}
}

// normalise enforces that authentication follows the user and that the
// onboarding flag and phase agree with it.
func (s State) normalise() State {
	s.IsAuthenticated = s.User != nil
	if !s.IsAuthenticated {
		s.HasCompletedOnboarding = false
		s.Profile = nil
		if s.Phase != PhaseUnknown {
			s.Phase = PhaseUnauthenticated
		}
		return s
	}
	switch s.Phase {
	case PhaseUnknown, PhaseUnauthenticated:
		s.Phase = PhaseAuthenticatedNoProfile
	case PhaseAuthenticatedOnboarded:
		if !s.HasCompletedOnboarding {
			s.Phase = PhaseAuthenticatedNoProfile
		}
	}
	return s
}

func (s State) clone() State {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	if s.Profile != nil {
		p := *s.Profile
		s.Profile = &p
	}
	return s
}

// persisted is the subset that survives restarts.
type persisted struct {
	User                   *users.User `json:"user"`
	IsAuthenticated        bool        `json:"isAuthenticated"`
	HasCompletedOnboarding bool        `json:"hasCompletedOnboarding"`
}
