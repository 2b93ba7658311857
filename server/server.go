// Package server is the development backend: an in-process implementation
// of the /api/v1 REST contract the client library talks to.
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/flow-client/auth"
	fakeotprepo "github.com/jrsteele09/flow-client/auth/repofakes"
	"github.com/jrsteele09/flow-client/internal/config"
	"github.com/jrsteele09/flow-client/mail"
	"github.com/jrsteele09/flow-client/privacy"
	"github.com/jrsteele09/flow-client/programs"
	fakeprogramrepo "github.com/jrsteele09/flow-client/programs/repofake"
	"github.com/jrsteele09/flow-client/token"
	"github.com/jrsteele09/flow-client/token/refresh"
	refreshrepofake "github.com/jrsteele09/flow-client/token/refresh/repofake"
	"github.com/jrsteele09/flow-client/users"
	fakeuserrepo "github.com/jrsteele09/flow-client/users/repofake"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

// Repos holds every store the backend reads and writes.
type Repos struct {
	Users    users.UserRepo
	Profiles users.ProfileRepo
	OTPs     auth.OTPRepo
	Refresh  refresh.Repo
	Programs programs.Repo
}

// NewInMemoryRepos returns empty in-memory stores. Nothing survives a restart.
func NewInMemoryRepos() Repos {
	return Repos{
		Users:    fakeuserrepo.NewFakeUserRepo(),
		Profiles: fakeuserrepo.NewFakeProfileRepo(),
		OTPs:     fakeotprepo.NewFakeOTPRepo(),
		Refresh:  refreshrepofake.NewFakeRefreshTokenRepo(),
		Programs: fakeprogramrepo.New(),
	}
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	handler http.Handler
	routes  []string
	config  config.Config
	repos   Repos
	mailer  mail.Sender
	nowTime func() time.Time

	tokens   *token.Manager
	auth     *auth.Service
	profiles *users.ProfileService
	programs *programs.Service
	privacy  *privacy.Service
}

type Option func(*Server)

// WithNowTime sets the clock used by every service (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// WithMailer replaces the default sender, which only logs codes.
func WithMailer(sender mail.Sender) Option {
	return func(s *Server) {
		s.mailer = sender
	}
}

func New(cfg config.Config, repos Repos, options ...Option) (*Server, error) {
	s := &Server{
		env:     cfg.GetEnv(),
		mux:     http.NewServeMux(),
		config:  cfg,
		repos:   repos,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.mailer == nil {
		s.mailer = mail.NewLogSender(log.Logger)
	}

	signer, err := token.NewSigner(cfg)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create token signer: %w", err)
	}
	s.tokens = token.New(repos.Refresh, repos.Users, signer, cfg, token.WithNowFunc(s.nowTime))

	authService, err := auth.NewService(auth.Repos{Users: repos.Users, Profiles: repos.Profiles, OTPs: repos.OTPs},
		s.tokens, s.mailer, cfg, auth.WithNowTime(s.nowTime))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create auth service: %w", err)
	}
	s.auth = authService

	s.profiles = users.NewProfileService(repos.Profiles, users.WithNowTime(s.nowTime))

	programService, err := programs.NewService(repos.Programs, repos.Profiles, programs.WithNowTime(s.nowTime))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create program service: %w", err)
	}
	s.programs = programService

	s.privacy = privacy.NewService(privacy.Repos{Users: repos.Users, Profiles: repos.Profiles, OTPs: repos.OTPs, Programs: repos.Programs},
		s.tokens, privacy.WithNowTime(s.nowTime))

	if err := s.InitialiseSystem(); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.GetAllowedOrigins(),
		AllowedMethods:   cfg.GetAllowedMethods(),
		AllowedHeaders:   cfg.GetAllowedHeaders(),
		AllowCredentials: true,
	}).Handler(s.mux)
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Tokens exposes the token manager so the process can schedule cleanup.
func (s *Server) Tokens() *token.Manager {
	return s.tokens
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + reset
	} else {
		displayMethod = gray + paddedMethod + reset
	}
	log.Debug().Msgf("[%-19s] %s", displayMethod, path)
}
