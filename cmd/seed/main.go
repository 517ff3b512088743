package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/jolivares/cuaderno/config"
	"github.com/jolivares/cuaderno/internal/domain/entity"
	"github.com/jolivares/cuaderno/pkg/credential"
)

// Seeds the admin account. Idempotent: rerunning updates the name and role
// but never overwrites an existing password.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := envOr("SEED_ADMIN_EMAIL", "admin@cuaderno.local")
	password := envOr("SEED_ADMIN_PASSWORD", "cambiame-pronto")
	name := envOr("SEED_ADMIN_NAME", "Administrador")

	creds := credential.NewStore(cfg.BcryptCost)
	hash, err := creds.Hash(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (name, email, password_hash, role, is_active, email_verified)
		VALUES ($1, lower($2), $3, $4, true, true)
		ON CONFLICT ((lower(email))) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role
		RETURNING id
	`, name, email, hash, entity.RoleAdmin).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s\n", id, email)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
