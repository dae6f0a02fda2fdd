/*
main.go - Operator password reset CLI

PURPOSE:
  Resets an account password directly against the store, for recovering
  locked-out admin accounts without going through the HTTP reset flow.

USAGE:
  resetpass -email=admin@campus.edu -password=newsecret123
  resetpass -store=mongo -email=admin@campus.edu -password=newsecret123

  Store selection follows the same environment variables as the server
  (STORE_DRIVER, SQLITE_PATH, MONGO_URI, MONGO_DB).
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/warp/canteen-engine/auth"
	"github.com/warp/canteen-engine/canteen"
	mongostore "github.com/warp/canteen-engine/store/mongo"
	"github.com/warp/canteen-engine/store/sqlite"
)

func main() {
	_ = godotenv.Load(".env")

	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "new password")
	driver := flag.String("store", getenv("STORE_DRIVER", "sqlite"), "store driver: sqlite or mongo")
	dbPath := flag.String("db", getenv("SQLITE_PATH", "canteen.db"), "SQLite database path")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: resetpass -email=<email> -password=<new password>")
		os.Exit(2)
	}
	if err := auth.ValidatePassword(*password); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var store canteen.TxStore
	switch *driver {
	case "sqlite":
		s, err := sqlite.New(*dbPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		defer s.Close()
		store = s
	case "mongo":
		s, err := mongostore.New(ctx, os.Getenv("MONGO_URI"), getenv("MONGO_DB", "canteen"))
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		defer s.Close(context.Background())
		store = s
	default:
		fmt.Fprintln(os.Stderr, "error: unknown store driver", *driver)
		os.Exit(2)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	err = store.WithTx(ctx, func(tx canteen.Store) error {
		user, err := tx.GetUser(ctx, *email)
		if err != nil {
			return err
		}
		if user == nil {
			return canteen.ErrUserNotFound
		}
		user.PasswordHash = hash
		user.ResetToken = ""
		user.UpdatedAt = time.Now().UTC()
		return tx.SaveUser(ctx, *user)
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Println("password updated for", *email)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
