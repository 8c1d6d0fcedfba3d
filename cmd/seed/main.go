// seed creates the first administrator account so the register endpoint, which
// requires an authenticated session, can be used. Idempotent: skips when the email exists.
//
//	go run ./cmd/seed -email admin@condominio.mx -first-name Ana -last-name Admin
//
// The password is read from SEED_ADMIN_PASSWORD. SESSION_SECRET is required by config but unused.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/config"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/db"
	identitydomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
	identityrepo "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/repository"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/service"
	"github.com/ManuelDev-we/CRM-condominio-sub002/internal/security"
)

func main() {
	email := flag.String("email", "", "administrator email")
	firstName := flag.String("first-name", "Admin", "administrator first name")
	lastName := flag.String("last-name", "Condominio", "administrator last name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}

	password := os.Getenv("SEED_ADMIN_PASSWORD")
	fields := map[string]string{
		identitydomain.FieldFirstName: identitydomain.NormalizeField(identitydomain.FieldFirstName, *firstName),
		identitydomain.FieldLastName:  identitydomain.NormalizeField(identitydomain.FieldLastName, *lastName),
		identitydomain.FieldEmail:     identitydomain.NormalizeEmail(*email),
		identitydomain.FieldPassword:  password,
	}
	for field, value := range fields {
		if value == "" {
			log.Fatalf("seed: %s is required", field)
		}
		if err := service.ValidateField(field, value); err != nil {
			log.Fatalf("seed: %s: %v", field, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	hasher := security.NewHasher(cfg.BcryptCost)
	repo := identityrepo.NewPostgresRepository(conn, hasher)

	taken, err := repo.Exists(ctx, identitydomain.UniqueKey{Field: identitydomain.FieldEmail, Value: fields[identitydomain.FieldEmail]})
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if taken {
		log.Printf("Seed already applied (%s exists). Skipping.", fields[identitydomain.FieldEmail])
		return
	}

	hash, err := hasher.Hash([]byte(password))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	id, err := repo.Create(ctx, &identitydomain.Record{
		Role:         identitydomain.RoleAdmin,
		FirstName:    fields[identitydomain.FieldFirstName],
		LastName:     fields[identitydomain.FieldLastName],
		Email:        fields[identitydomain.FieldEmail],
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	})
	if errors.Is(err, identityrepo.ErrConflict) {
		log.Printf("Seed already applied (%s exists). Skipping.", fields[identitydomain.FieldEmail])
		return
	}
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	log.Printf("Seed complete: admin %s (%s)", fields[identitydomain.FieldEmail], id)
}
