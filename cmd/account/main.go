// Package main provides the CLI for account management.
// Usage: account create --name "Loom House" [--plan free|pro|enterprise]
//        account list
//        account token <account-id> [--email user@example.com]
//        account usage <account-id>
//        account plan <account-id> --plan free|pro|enterprise
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"weavebooks/internal/bootstrap"
	"weavebooks/internal/config"
	"weavebooks/internal/core/account"
	appctx "weavebooks/internal/core/context"
	"weavebooks/internal/core/id"
	"weavebooks/internal/domain/auth"
	"weavebooks/internal/domain/plan"
	"weavebooks/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "help", "--help", "-h":
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fail("loading configuration", err)
	}
	log, err := logger.New(logger.Config{Level: "warn", Development: true})
	if err == nil {
		logger.SetDefault(log)
	}

	ctx := context.Background()
	backend, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		fail("opening store", err)
	}
	defer backend.Close(ctx)

	switch os.Args[1] {
	case "create":
		createAccount(ctx, cfg, backend)
	case "list":
		listAccounts(ctx, backend)
	case "token":
		issueToken(ctx, cfg, backend)
	case "usage":
		showUsage(ctx, cfg, backend)
	case "plan":
		changePlan(ctx, cfg, backend)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Weavebooks Account Management CLI

Usage:
  account <command> [options]

Commands:
  create    Create a new account and print an access token
  list      List all account ids
  token     Issue an access token for an account
  usage     Show plan limits and usage of an account
  plan      Move an account to another plan
  help      Show this help

Environment Variables:
  STORE_DRIVER         postgres, mongo or memory (default postgres)
  DATABASE_URL         Postgres connection string
  MONGO_URI            Mongo connection string
  JWT_SECRET           Secret used to sign access tokens (required)

Examples:
  account create --name "Loom House" --plan pro
  account list
  account token <account-id> --email owner@loomhouse.in
  account usage <account-id>
  account plan <account-id> --plan enterprise`)
}

// flagValue returns the value following name in args.
func flagValue(args []string, name string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == name {
			return args[i+1]
		}
	}
	return ""
}

func fail(what string, err error) {
	fmt.Printf("Error %s: %v\n", what, err)
	os.Exit(1)
}

func createAccount(ctx context.Context, cfg *config.Config, backend *bootstrap.Backend) {
	args := os.Args[2:]
	name := flagValue(args, "--name")
	key := flagValue(args, "--plan")
	if name == "" {
		fmt.Println("Error: --name is required")
		fmt.Println("Usage: account create --name <name> [--plan free|pro|enterprise]")
		os.Exit(1)
	}
	if key == "" {
		key = plan.KeyFree
	}
	if !plan.Known(key) {
		fmt.Printf("Error: unknown plan %q\n", key)
		os.Exit(1)
	}

	a := &plan.Account{ID: id.New(), Name: name, SubscriptionType: key, CreatedAt: time.Now().UTC()}
	if err := backend.Repos.Accounts.Create(ctx, a); err != nil {
		fail("creating account", err)
	}

	fmt.Printf("\n✓ Account '%s' created successfully!\n", name)
	fmt.Printf("  Account ID: %s\n", a.ID)
	fmt.Printf("  Plan: %s\n", key)
	printToken(cfg, appctx.UserContext{UserID: "owner", AccountID: a.ID, Plan: key})
}

func listAccounts(ctx context.Context, backend *bootstrap.Backend) {
	ids, err := backend.Repos.Accounts.ListIDs(ctx)
	if err != nil {
		fail("listing accounts", err)
	}
	if len(ids) == 0 {
		fmt.Println("No accounts found")
		return
	}

	fmt.Printf("%-36s %-30s %-12s %-20s\n", "ACCOUNT_ID", "NAME", "PLAN", "CREATED")
	fmt.Println(strings.Repeat("-", 100))
	for _, accountID := range ids {
		a, err := backend.Repos.Accounts.Get(ctx, account.MustScope(accountID))
		if err != nil {
			fmt.Printf("%-36s <error: %v>\n", accountID, err)
			continue
		}
		fmt.Printf("%-36s %-30s %-12s %-20s\n", a.ID, a.Name, a.SubscriptionType, a.CreatedAt.Format(time.DateTime))
	}
}

func requireAccount(ctx context.Context, backend *bootstrap.Backend) *plan.Account {
	if len(os.Args) < 3 || strings.HasPrefix(os.Args[2], "--") {
		fmt.Printf("Error: account id is required\nUsage: account %s <account-id>\n", os.Args[1])
		os.Exit(1)
	}
	scope, err := account.NewScope(os.Args[2])
	if err != nil {
		fail("parsing account id", err)
	}
	a, err := backend.Repos.Accounts.Get(ctx, scope)
	if err != nil {
		fail("loading account", err)
	}
	return a
}

func issueToken(ctx context.Context, cfg *config.Config, backend *bootstrap.Backend) {
	a := requireAccount(ctx, backend)
	email := flagValue(os.Args[3:], "--email")
	printToken(cfg, appctx.UserContext{UserID: "owner", AccountID: a.ID, Email: email, Plan: a.SubscriptionType})
}

func printToken(cfg *config.Config, user appctx.UserContext) {
	jwt := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
	token, expiresAt, err := jwt.GenerateAccessToken(user)
	if err != nil {
		fail("issuing token", err)
	}
	fmt.Printf("  Token (expires %s):\n%s\n", expiresAt.Format(time.RFC3339), token)
}

func showUsage(ctx context.Context, cfg *config.Config, backend *bootstrap.Backend) {
	a := requireAccount(ctx, backend)
	services, closeLocker, err := bootstrap.Services(ctx, cfg, backend)
	if err != nil {
		fail("wiring services", err)
	}
	defer func() { _ = closeLocker() }()

	usage, err := services.Guard.Usage(ctx, account.MustScope(a.ID))
	if err != nil {
		fail("reading usage", err)
	}
	fmt.Printf("Account %s (%s), plan %s\n\n", a.Name, a.ID, usage.Plan)
	fmt.Printf("%-20s %10s %10s\n", "RESOURCE", "USED", "LIMIT")
	for _, l := range usage.Lines {
		limit := "unlimited"
		if l.Limit != plan.Unlimited {
			limit = fmt.Sprint(l.Limit)
		}
		fmt.Printf("%-20s %10d %10s\n", l.Resource, l.Used, limit)
	}
}

func changePlan(ctx context.Context, cfg *config.Config, backend *bootstrap.Backend) {
	a := requireAccount(ctx, backend)
	key := flagValue(os.Args[3:], "--plan")
	if key == "" {
		fmt.Println("Error: --plan is required")
		fmt.Printf("Usage: account plan <account-id> --plan %s\n", strings.Join(plan.Keys(), "|"))
		os.Exit(1)
	}
	services, closeLocker, err := bootstrap.Services(ctx, cfg, backend)
	if err != nil {
		fail("wiring services", err)
	}
	defer func() { _ = closeLocker() }()

	updated, err := services.Guard.ChangePlan(ctx, account.MustScope(a.ID), key)
	if err != nil {
		fail("changing plan", err)
	}
	fmt.Printf("\n✓ Account '%s' moved from %s to %s\n", updated.Name, a.SubscriptionType, updated.SubscriptionType)
	fmt.Println("  Tokens issued earlier still carry the old plan claim; limits follow the stored plan.")
}
