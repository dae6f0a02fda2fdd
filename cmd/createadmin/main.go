/*
main.go - Admin bootstrap CLI

PURPOSE:
  Creates an admin account directly against the store. Signup only issues
  student accounts and the admin HTTP surface sits behind the admin role,
  so a fresh deployment needs this to obtain its first admin.

USAGE:
  createadmin -email=admin@campus.edu -password=secret123 -name="Site Admin"
  createadmin -store=mongo -email=admin@campus.edu -password=secret123

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

	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password")
	name := flag.String("name", "Admin", "display name")
	driver := flag.String("store", getenv("STORE_DRIVER", "sqlite"), "store driver: sqlite or mongo")
	dbPath := flag.String("db", getenv("SQLITE_PATH", "canteen.db"), "SQLite database path")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: createadmin -email=<email> -password=<password> [-name=<name>]")
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

	if err := createAdmin(ctx, store, *email, *password, *name); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Println("admin account created:", *email)
}

// createAdmin provisions an admin account with zero balance. Existing
// accounts are never touched; promoting one is a deliberate separate step.
func createAdmin(ctx context.Context, store canteen.TxStore, email, password, name string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	admin := canteen.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Role:         canteen.RoleAdmin,
		Balance:      canteen.ZeroMoney(),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return store.WithTx(ctx, func(tx canteen.Store) error {
		existing, err := tx.GetUser(ctx, email)
		if err != nil {
			return err
		}
		if existing != nil {
			return canteen.ErrUserExists
		}
		return tx.SaveUser(ctx, admin)
	})
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
