package server

import (
	"errors"
	"fmt"

	"github.com/jrsteele09/flow-client/auth"
	"github.com/jrsteele09/flow-client/programs"
	"github.com/rs/zerolog/log"
)

// InitialiseSystem loads the program catalog and creates the configured admin
// account. Running it against stores that already hold both is harmless.
func (s *Server) InitialiseSystem() error {
	if err := programs.Seed(s.repos.Programs, s.nowTime()); err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to seed programs: %w", err)
	}

	if err := s.initialiseAdmin(); err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to bootstrap admin: %w", err)
	}
	return nil
}

// initialiseAdmin creates the admin from ADMIN_EMAIL and ADMIN_PASSWORD when
// both are set and no account uses the address yet.
func (s *Server) initialiseAdmin() error {
	email, password := s.config.GetAdminEmail(), s.config.GetAdminPassword()
	if email == "" || password == "" {
		log.Debug().Msg("no admin configured")
		return nil
	}

	admin, err := s.auth.CreateAdmin(email, password)
	if errors.Is(err, auth.EmailExistsErr) {
		log.Debug().Str("email", email).Msg("admin already exists")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("email", admin.Email).Str("user_id", admin.ID).Msg("admin account ready")
	return nil
}
