// Package main seeds the database with the standard department list and a
// set of demo accounts, one per role. Intended for development and demo
// environments only.
package main

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/mr-alpha10/sail-gate-pass/internal/database"
	"github.com/mr-alpha10/sail-gate-pass/internal/models"
	"github.com/mr-alpha10/sail-gate-pass/internal/repository"
	"github.com/mr-alpha10/sail-gate-pass/internal/security"
)

var departments = []string{"HR", "IT", "Finance", "Operations", "Marketing"}

type demoAccount struct {
	email      string
	name       string
	phone      string
	role       string
	department string
}

var demoAccounts = []demoAccount{
	{"visitor@example.com", "Demo Visitor", "+91 9876543210", models.RoleVisitor, ""},
	{"security@example.com", "Demo Security Officer", "+91 9876543211", models.RoleSecurity, ""},
	{"hr.agent@example.com", "Demo HR Agent", "+91 9876543212", models.RoleDepartmentAgent, "HR"},
	{"it.agent@example.com", "Demo IT Agent", "+91 9876543213", models.RoleDepartmentAgent, "IT"},
}

// All demo accounts share this password.
const demoPassword = "password123"

func main() {
	_ = godotenv.Load()

	cfg, err := database.DefaultConfig()
	if err != nil {
		log.Fatalf("Failed to load database configuration: %v", err)
	}
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := database.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	seedDepartments(ctx)
	seedAccounts(ctx)

	log.Println("Seeding complete")
}

func seedDepartments(ctx context.Context) {
	deptRepo := repository.NewDepartmentRepository()

	for _, name := range departments {
		if _, err := deptRepo.FindByName(ctx, name); err == nil {
			continue // already present
		}
		dept := &models.Department{
			ID:   uuid.NewString(),
			Name: name,
		}
		if err := deptRepo.Create(ctx, dept); err != nil {
			log.Fatalf("Failed to seed department %s: %v", name, err)
		}
		log.Printf("Seeded department: %s", name)
	}
}

func seedAccounts(ctx context.Context) {
	userRepo := repository.NewUserRepository()
	config := security.DefaultSecurityConfig()

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), config.BcryptCost)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	for _, account := range demoAccounts {
		if _, err := userRepo.FindByEmail(ctx, account.email); err == nil {
			continue // already present
		}

		user := &models.User{
			ID:            uuid.NewString(),
			Email:         account.email,
			Name:          account.name,
			Phone:         account.phone,
			Role:          account.role,
			Department:    account.department,
			PasswordHash:  string(hash),
			EmailVerified: true, // demo accounts skip the OTP flow
		}
		if err := userRepo.Create(ctx, user); err != nil {
			log.Fatalf("Failed to seed account %s: %v", account.email, err)
		}
		log.Printf("Seeded account: %s (%s)", account.email, account.role)
	}
}
