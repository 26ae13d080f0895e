// Command dbcli bootstraps the database: it creates the schema,
// seeds the default categories and provisions the first admin
// account. Run it once before starting the API.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/config"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/database"
)

var defaultCategories = []string{
	"Mathematics", "Physics", "Chemistry", "Biology",
	"Computer Science", "Languages", "History", "Arts",
}

func main() {
	adminUser := flag.String("admin-user", "admin", "username of the bootstrap admin account")
	adminPass := flag.String("admin-pass", "", "password of the bootstrap admin account (required)")
	seed := flag.Bool("seed", true, "seed the default categories")
	flag.Parse()

	if *adminPass == "" {
		fmt.Fprintln(os.Stderr, "dbcli: -admin-pass is required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	gdb, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	if err := database.Migrate(gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	defer db.Close()

	if *seed {
		for i, name := range defaultCategories {
			_, err := db.Exec(`
				INSERT INTO categories (name, sort_order, created_at)
				VALUES ($1, $2, NOW())
				ON CONFLICT (name) DO NOTHING`, name, i)
			if err != nil {
				log.Fatalf("seed category %q: %v", name, err)
			}
		}
		log.Printf("seeded %d categories", len(defaultCategories))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*adminPass), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	res, err := db.Exec(`
		INSERT INTO users (username, password, nickname, role, status, created_at, updated_at)
		VALUES ($1, $2, $1, 'admin', 1, NOW(), NOW())
		ON CONFLICT (username) DO NOTHING`, *adminUser, string(hash))
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		log.Printf("admin account %q already exists, left unchanged", *adminUser)
	} else {
		log.Printf("created admin account %q", *adminUser)
	}
}
