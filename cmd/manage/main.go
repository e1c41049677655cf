// Command manage runs administrative tasks against the recipe database:
//
//	manage wait_for_db [-timeout 60s] [-interval 1s]
//	manage migrate
//	manage createsuperuser -email admin@example.com -password secret [-name Admin]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/CrownKira/recipe-app-api/internal/account"
	"github.com/CrownKira/recipe-app-api/pkg/config"
	"github.com/CrownKira/recipe-app-api/pkg/database"
	"github.com/CrownKira/recipe-app-api/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.InitLogger(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.GetLogger().Sync()

	if err := run(context.Background(), cfg, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		logger.GetLogger().Error("Command failed", zap.String("command", os.Args[1]), zap.Error(err))
		os.Exit(1)
	}
}

func usage(out io.Writer) {
	fmt.Fprintln(out, "usage: manage <wait_for_db|migrate|createsuperuser> [flags]")
}

// run dispatches a single management command.
func run(ctx context.Context, cfg *config.Config, command string, args []string, out io.Writer) error {
	switch command {
	case "wait_for_db":
		return waitForDB(ctx, cfg, args, out)
	case "migrate":
		return migrate(cfg, out)
	case "createsuperuser":
		return createSuperuser(cfg, args, out)
	default:
		usage(out)
		return fmt.Errorf("unknown command %q", command)
	}
}

func waitForDB(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("wait_for_db", flag.ContinueOnError)
	timeout := fs.Duration("timeout", 60*time.Second, "give up after this long")
	interval := fs.Duration("interval", time.Second, "delay between attempts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	conn, err := database.WaitForDB(ctx, &cfg.DB, *interval, out)
	if err != nil {
		return err
	}
	if sqlDB, err := conn.DB(); err == nil {
		sqlDB.Close()
	}
	return nil
}

func migrate(cfg *config.Config, out io.Writer) error {
	if err := database.InitDB(cfg); err != nil {
		return err
	}
	fmt.Fprintln(out, "Migrations applied.")
	return nil
}

func createSuperuser(cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("createsuperuser", flag.ContinueOnError)
	email := fs.String("email", "", "superuser email (required)")
	password := fs.String("password", "", "superuser password (required)")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *password == "" {
		return errors.New("-password is required")
	}

	if err := database.InitDB(cfg); err != nil {
		return err
	}

	user, err := account.CreateSuperuser(database.GetDB(), *email, *password, *name)
	if err != nil {
		return err
	}

	logger.GetLogger().Info("Superuser created", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	fmt.Fprintf(out, "Superuser %s created.\n", user.Email)
	return nil
}
