// Command basicauth runs a scripted session against the basic-auth example
// application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/escf"
	"github.com/dogmatiq/escf/examples/basicauth"
	"github.com/dogmatiq/escf/examples/basicauth/notifications"
	"github.com/dogmatiq/escf/examples/basicauth/user"
	"github.com/dogmatiq/escf/handler"
	"github.com/dogmatiq/escf/internal/x/loggingx"
	"github.com/dogmatiq/escf/transport/kafkatransport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := parseConfig()
	if err != nil {
		return err
	}

	logger, err := loggingx.NewZap(cfg.LogMode == "development")
	if err != nil {
		return err
	}
	defer logger.Sync() // nolint:errcheck

	s, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close() // nolint:errcheck

	if err := basicauth.CreateSchema(ctx, s.DB); err != nil {
		return err
	}

	processes := map[string]handler.Constructor[basicauth.Env]{}

	if len(cfg.KafkaBrokers) > 0 {
		w := &kafka.Writer{
			Addr:         kafka.TCP(cfg.KafkaBrokers...),
			Topic:        cfg.KafkaTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		}
		defer w.Close() // nolint:errcheck

		processes[kafkatransport.DefaultPublisherName] = func(basicauth.Env) (handler.Model, error) {
			return &kafkatransport.Publisher{Writer: w}, nil
		}

		logging.Log(logger, "publishing events to the %s topic on %v", cfg.KafkaTopic, cfg.KafkaBrokers)
	}

	sys, err := basicauth.NewSystem(
		processes,
		escf.WithStateStore(s.State),
		escf.WithLogger(logger),
		escf.WithMetricsRegisterer(prometheus.DefaultRegisterer),
	)
	if err != nil {
		return err
	}

	env := basicauth.Env{
		DB:     s.DB,
		Events: s.Events,
		Sender: &notifications.LogSender{
			Logger: loggingx.WithPrefix(logger, "[%s] ", notifications.ProcessName),
		},
	}

	g, ctx := errgroup.WithContext(ctx)
	runCtx, stop := context.WithCancel(ctx)

	g.Go(func() error {
		err := sys.Run(runCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		defer stop()
		return script(ctx, logger, sys, env)
	})

	return g.Wait()
}

// script registers a user and exercises their session.
func script(
	ctx context.Context,
	logger logging.Logger,
	sys *basicauth.System,
	env basicauth.Env,
) error {
	sessions, err := basicauth.Sessions(sys, env)
	if err != nil {
		return err
	}

	users, err := basicauth.Users(sys, env)
	if err != nil {
		return err
	}

	in := user.CreateUser{
		Name:     "Ann",
		Email:    fmt.Sprintf("ann+%d@example.org", os.Getpid()),
		Password: "hunter2",
	}

	sess, err := sessions.Register(ctx, in)
	if err != nil {
		return fmt.Errorf("unable to register: %w", err)
	}
	logging.Log(logger, "registered %s as user %s, session %s", in.Email, sess.User.ID, sess.ID)

	if _, err := sessions.Authenticate(ctx, in.Email, "<wrong>"); err != nil {
		logging.Log(logger, "authentication with the wrong password was rejected: %s", err)
	}

	sess, err = sessions.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return fmt.Errorf("unable to authenticate: %w", err)
	}
	logging.Log(logger, "authenticated, session %s expires at %s", sess.ID, sess.ExpiresAt)

	name := "Annie"
	if _, err := users.Update(ctx, user.UpdateUser{Name: &name}, sess.ID); err != nil {
		return fmt.Errorf("unable to update profile: %w", err)
	}

	sess, err = sessions.ValidateSession(ctx, sess.ID)
	if err != nil {
		return fmt.Errorf("unable to validate session: %w", err)
	}
	logging.Log(logger, "session %s belongs to %s", sess.ID, sess.User.Name)

	if _, err := users.Delete(ctx, sess.ID); err != nil {
		return fmt.Errorf("unable to delete user: %w", err)
	}

	if _, err := sessions.ValidateSession(ctx, sess.ID); err != nil {
		logging.Log(logger, "session %s is no longer valid: %s", sess.ID, err)
	}

	return nil
}
