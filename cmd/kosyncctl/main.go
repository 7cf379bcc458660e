// kosyncctl is an operator tool for managing accounts directly against the
// database file, for installations that keep open registration disabled.
package main

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/iudanet/kosyncd/internal/models"
	"github.com/iudanet/kosyncd/internal/server/storage"
	"github.com/iudanet/kosyncd/internal/server/storage/boltdb"
	"github.com/iudanet/kosyncd/internal/server/storage/sqlite"
	"github.com/iudanet/kosyncd/internal/validation"
)

func main() {
	dbPath := flag.String("db", "kosync.db", "Path to the database file")
	dbBackend := flag.String("db-backend", "bolt", "Storage backend: bolt or sqlite")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	if err := runCommand(args, *dbBackend, *dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "kosyncctl: %v\n", err)
		os.Exit(1)
	}
}

func runCommand(args []string, backend, dbPath string) error {
	ctx := context.Background()

	store, err := openStorage(ctx, backend, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	switch args[0] {
	case "useradd":
		if len(args) != 2 {
			return fmt.Errorf("usage: kosyncctl useradd <username>")
		}
		return userAdd(ctx, store, args[1])
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func userAdd(ctx context.Context, store storage.Storage, username string) error {
	if err := validation.ValidateUsername(username); err != nil {
		return err
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}

	// Reader devices send md5(password) as the credential, so that is the
	// stored form; the server compares it by equality.
	sum := md5.Sum([]byte(password))
	user := &models.User{
		Username:     username,
		PasswordHash: hex.EncodeToString(sum[:]),
		CreatedAt:    time.Now(),
	}

	if err := store.CreateUser(ctx, user); err != nil {
		return err
	}

	fmt.Printf("user %q created\n", username)
	return nil
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Repeat password: ")
	confirm, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	return string(password), nil
}

func openStorage(ctx context.Context, backend, dbPath string) (storage.Storage, error) {
	switch backend {
	case "sqlite":
		return sqlite.New(ctx, dbPath)
	case "bolt":
		return boltdb.New(ctx, dbPath)
	default:
		return nil, fmt.Errorf("unknown db backend %q (want bolt or sqlite)", backend)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: kosyncctl [flags] <command>

Commands:
  useradd <username>   create an account (prompts for the password)

Flags:
  -db <path>           database file (default "kosync.db")
  -db-backend <name>   bolt or sqlite (default "bolt")`)
}
