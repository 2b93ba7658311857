// Package session holds the client's view of who is signed in. All reads and
// writes of the state go through one goroutine so overlapping operations
// (a startup check racing a login, say) are applied one after another.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/flow-client/apiclient"
	"github.com/jrsteele09/flow-client/credentials"
	apperrors "github.com/jrsteele09/flow-client/internal/errors"
	"github.com/jrsteele09/flow-client/storage"
	"github.com/jrsteele09/flow-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StorageKey is where the persisted subset of the state lives.
const StorageKey = "auth-storage"

type op struct {
	ctx  context.Context
	fn   func(ctx context.Context)
	done chan struct{}
}

type Store struct {
	api    *apiclient.Client
	authed *apiclient.Client
	creds  *credentials.Store
	repo   storage.Repo
	logger zerolog.Logger

	ops     chan op
	quit    chan struct{}
	stopped chan struct{}
	closing sync.Once

	// state is only touched by the run goroutine.
	state State

	snapLock sync.RWMutex
	snap     State

	subsLock sync.Mutex
	subs     map[int]chan State
	nextSub  int

	credOpts []credentials.Option
}

type Option func(*Store)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// WithCredentialOptions configures the underlying credential store, for
// example the remember-me and session expiries.
func WithCredentialOptions(opts ...credentials.Option) Option {
	return func(s *Store) {
		s.credOpts = append(s.credOpts, opts...)
	}
}

// Open creates a store backed by repo and rehydrates the persisted subset.
// A persisted authenticated state comes back without a profile until
// CheckAuth reconciles it with the backend.
func Open(ctx context.Context, api *apiclient.Client, repo storage.Repo, opts ...Option) *Store {
	s := &Store{
		api:     api,
		repo:    repo,
		logger:  log.Logger,
		ops:     make(chan op),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
		state:   initial(),
		snap:    initial(),
		subs:    make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.creds = credentials.NewStore(repo, s.credOpts...)
	s.authed = api.WithTokens(s.creds)

	go s.run()
	s.do(ctx, s.rehydrate)
	return s
}

// Close stops the store. Operations submitted afterwards return cancelled
// results.
func (s *Store) Close() {
	s.closing.Do(func() {
		close(s.quit)
		<-s.stopped
		s.subsLock.Lock()
		for id, ch := range s.subs {
			close(ch)
			delete(s.subs, id)
		}
		s.subsLock.Unlock()
	})
}

func (s *Store) run() {
	defer close(s.stopped)
	for {
		select {
		case o := <-s.ops:
			o.fn(o.ctx)
			close(o.done)
		case <-s.quit:
			return
		}
	}
}

// do queues fn and waits for it. It reports false when ctx ended or the
// store closed before fn finished; fn may still run in that case.
func (s *Store) do(ctx context.Context, fn func(ctx context.Context)) bool {
	if ctx.Err() != nil {
		return false
	}
	o := op{ctx: ctx, fn: fn, done: make(chan struct{})}
	select {
	case s.ops <- o:
	case <-ctx.Done():
		return false
	case <-s.quit:
		return false
	}
	select {
	case <-o.done:
		return true
	case <-ctx.Done():
		return false
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.snapLock.RLock()
	defer s.snapLock.RUnlock()
	return s.snap.clone()
}

// Client returns an API client that authenticates with the stored access
// token.
func (s *Store) Client() *apiclient.Client {
	return s.authed
}

// Credentials exposes the credential store backing the session.
func (s *Store) Credentials() *credentials.Store {
	return s.creds
}

// Subscribe delivers the current state and then every change until ctx ends.
// Slow readers miss intermediate values but always see the latest one.
func (s *Store) Subscribe(ctx context.Context) <-chan State {
	ch := make(chan State, 1)
	ch <- s.State()

	s.subsLock.Lock()
	select {
	case <-s.quit:
		s.subsLock.Unlock()
		close(ch)
		return ch
	default:
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsLock.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.quit:
		}
		s.subsLock.Lock()
		defer s.subsLock.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}()
	return ch
}

// setState applies mutate to the owned state, then publishes and persists
// the result. Only called from the run goroutine.
func (s *Store) setState(ctx context.Context, mutate func(*State)) {
	before := s.state
	next := s.state
	mutate(&next)
	next = next.normalise()
	s.state = next

	snap := next.clone()
	s.snapLock.Lock()
	s.snap = snap
	s.snapLock.Unlock()
	s.publish(snap)

	if persistedChanged(before, next) {
		s.persist(ctx)
	}
}

func (s *Store) setLoading(ctx context.Context, loading bool) {
	s.setState(ctx, func(st *State) { st.IsLoading = loading })
}

func (s *Store) publish(st State) {
	s.subsLock.Lock()
	defer s.subsLock.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- st.clone():
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- st.clone():
		default:
		}
	}
}

func persistedChanged(a, b State) bool {
	if a.IsAuthenticated != b.IsAuthenticated || a.HasCompletedOnboarding != b.HasCompletedOnboarding {
		return true
	}
	if (a.User == nil) != (b.User == nil) {
		return true
	}
	return a.User != nil && !sameUser(a.User, b.User)
}

func sameUser(a, b *users.User) bool {
	if a.ID != b.ID || a.Email != b.Email || a.Role != b.Role {
		return false
	}
	if a.IsActive != b.IsActive || a.IsVerified != b.IsVerified || a.MarketingConsent != b.MarketingConsent {
		return false
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return false
	}
	if (a.PrivacyConsentAt == nil) != (b.PrivacyConsentAt == nil) {
		return false
	}
	return a.PrivacyConsentAt == nil || a.PrivacyConsentAt.Equal(*b.PrivacyConsentAt)
}

func (s *Store) persist(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	if !s.state.IsAuthenticated {
		if err := s.repo.Delete(ctx, StorageKey); err != nil {
			s.logger.Warn().Err(err).Msg("failed to clear persisted session")
		}
		return
	}
	p := persisted{
		User:                   s.state.User,
		IsAuthenticated:        true,
		HasCompletedOnboarding: s.state.HasCompletedOnboarding,
	}
	if err := storage.SetJSON(ctx, s.repo, StorageKey, p, 0); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist session")
	}
}

func (s *Store) rehydrate(ctx context.Context) {
	var p persisted
	err := storage.GetJSON(ctx, s.repo, StorageKey, &p)
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		return
	case err != nil:
		s.logger.Warn().Err(err).Msg("ignoring unreadable persisted session")
		return
	}
	if !p.IsAuthenticated || p.User == nil {
		return
	}
	s.logger.Debug().Str("user_id", p.User.ID).Msg("rehydrated session")
	s.setState(ctx, func(st *State) {
		st.User = p.User
		st.HasCompletedOnboarding = p.HasCompletedOnboarding
		st.Phase = PhaseAuthenticatedNoProfile
	})
}

func now() time.Time { return time.Now().UTC() }
