package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/flow-client/internal/config"
	"github.com/jrsteele09/flow-client/internal/logging"
	"github.com/jrsteele09/flow-client/mail"
	"github.com/jrsteele09/flow-client/server"
	"github.com/rs/zerolog/log"
)

const revokedCleanupInterval = 10 * time.Minute

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(c)
	displayAppname(c.GetAppName())

	srv, err := server.New(c, server.NewInMemoryRepos(), server.WithMailer(newMailer(c)))
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cleanupRevokedTokens(ctx, srv)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(httpServer) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

// newMailer sends through Resend when an API key is configured and logs the
// codes otherwise.
func newMailer(c config.Config) mail.Sender {
	if c.GetResendAPIKey() == "" {
		log.Warn().Msg("RESEND_API_KEY not set, verification codes will be logged")
		return mail.NewLogSender(log.Logger)
	}
	return mail.NewResendSender(c.GetResendAPIKey(), c.GetMailSenderName(), c.GetMailSenderEmail(),
		c.GetAppName(), c.GetOTPExpiry())
}

func cleanupRevokedTokens(ctx context.Context, srv *server.Server) {
	ticker := time.NewTicker(revokedCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			srv.Tokens().CleanupRevokedTokens()
		}
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
