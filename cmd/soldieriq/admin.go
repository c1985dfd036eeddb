package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/postgres"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/adapter/soldieriq"
	"github.com/KeshavG69/Knowledge-Management-sub001/internal/config"
)

// runAdmin dispatches admin subcommands (check-login, list-models, migrate-status, migrate-down).
func runAdmin(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "--help" {
		printAdminHelp()
		return nil
	}

	switch args[0] {
	case "check-login":
		return runAdminCheckLogin(args[1:])
	case "list-models":
		return runAdminListModels(args[1:])
	case "migrate-status":
		return runAdminMigrateStatus(args[1:])
	case "migrate-down":
		return runAdminMigrateDown(args[1:])
	default:
		printAdminHelp()
		return fmt.Errorf("unknown admin command: %s", args[0])
	}
}

func printAdminHelp() {
	fmt.Fprintf(os.Stderr, `Usage: soldieriq admin <command> [options]

Commands:
  check-login      Verify backend credentials and print the user profile
  list-models      List chat models available on the backend
  migrate-status   Print the current database migration version
  migrate-down     Roll back database migrations
  help             Show this help message

Examples:
  soldieriq admin check-login --username admin
  soldieriq admin list-models --username admin
  soldieriq admin migrate-status
  soldieriq admin migrate-down --steps 1
`)
}

func loadAdminConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// adminLogin prompts for a password and logs in against the backend.
func adminLogin(ctx context.Context, client *soldieriq.Client, username string) (*soldieriq.TokenPair, error) {
	password, err := promptPassword("Password: ")
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}

	pair, err := client.Login(ctx, soldieriq.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return pair, nil
}

func runAdminCheckLogin(args []string) error {
	fs := flag.NewFlagSet("check-login", flag.ContinueOnError)
	username := fs.String("username", "", "backend username (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("--username is required")
	}

	cfg, err := loadAdminConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := soldieriq.NewClient(cfg.Backend.URL)

	pair, err := adminLogin(ctx, client, *username)
	if err != nil {
		return err
	}

	user, err := client.Me(ctx, pair.AccessToken)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tORGANIZATION")
	_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", user.ID, user.Username, user.Email, user.OrganizationID)
	if err := w.Flush(); err != nil {
		return err
	}

	_ = client.Logout(ctx, pair.AccessToken, pair.RefreshToken)
	return nil
}

func runAdminListModels(args []string) error {
	fs := flag.NewFlagSet("list-models", flag.ContinueOnError)
	username := fs.String("username", "", "backend username (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return fmt.Errorf("--username is required")
	}

	cfg, err := loadAdminConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := soldieriq.NewClient(cfg.Backend.URL)

	pair, err := adminLogin(ctx, client, *username)
	if err != nil {
		return err
	}
	defer func() { _ = client.Logout(ctx, pair.AccessToken, pair.RefreshToken) }()

	models, err := client.ListModels(ctx, pair.AccessToken)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}

	if len(models) == 0 {
		fmt.Println("No models available.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tDEFAULT")
	for i := range models {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%t\n", models[i].ID, models[i].Name, models[i].Default)
	}
	return w.Flush()
}

func runAdminMigrateStatus(args []string) error {
	fs := flag.NewFlagSet("migrate-status", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadAdminConfig()
	if err != nil {
		return err
	}

	version, err := postgres.MigrationVersion(context.Background(), cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("migration version: %w", err)
	}

	fmt.Printf("Current migration version: %d\n", version)
	return nil
}

func runAdminMigrateDown(args []string) error {
	fs := flag.NewFlagSet("migrate-down", flag.ContinueOnError)
	steps := fs.Int("steps", 1, "number of migrations to roll back")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *steps < 1 {
		return fmt.Errorf("--steps must be at least 1")
	}

	cfg, err := loadAdminConfig()
	if err != nil {
		return err
	}

	if err := postgres.RollbackMigrations(context.Background(), cfg.Postgres.DSN, *steps); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Rolled back %d migration(s)\n", *steps)
	return nil
}

// promptPassword reads a password from the terminal without echoing.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(syscall.Stdin)) //nolint:unconvert // int conversion needed on some platforms
	// Move to the next line once the hidden input is done.
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
