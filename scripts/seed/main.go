package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/egov-portal-api/internal/models"
	"github.com/noah-isme/egov-portal-api/internal/repository"
	"github.com/noah-isme/egov-portal-api/pkg/config"
	"github.com/noah-isme/egov-portal-api/pkg/database"
)

// Seeds a development database with an admin account, a couple of
// departments and a starter service catalog. Safe to re-run: existing rows
// are left alone.
func main() {
	var (
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&adminEmail, "admin-email", "admin@egovernment.gov", "Seed admin email")
	flag.StringVar(&adminPassword, "admin-password", "changeme123", "Seed admin password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db)
	departments := repository.NewDepartmentRepository(db)
	services := repository.NewServiceRepository(db)

	if _, err := users.FindByEmail(ctx, adminEmail); err == nil {
		log.Printf("admin %s already exists, skipping user seed", adminEmail)
	} else if errors.Is(err, sql.ErrNoRows) {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}
		admin := &models.User{
			Name:         "Portal Administrator",
			Email:        adminEmail,
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			Active:       true,
		}
		if err := users.Create(ctx, admin); err != nil {
			log.Fatalf("failed to create admin: %v", err)
		}
		log.Printf("created admin %s", adminEmail)
	} else {
		log.Fatalf("failed to check admin: %v", err)
	}

	seedDepartments := []models.Department{
		{Name: "Civil Registry", Description: ptr("Birth, marriage and identity records")},
		{Name: "Urban Planning", Description: ptr("Construction permits and zoning")},
		{Name: "Transportation", Description: ptr("Vehicle registration and licensing")},
	}

	byName := map[string]string{}
	for i := range seedDepartments {
		dep := seedDepartments[i]
		existing, err := departments.FindByName(ctx, dep.Name)
		if err == nil {
			byName[dep.Name] = existing.ID
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			log.Fatalf("failed to check department %q: %v", dep.Name, err)
		}
		dep.Active = true
		if err := departments.Create(ctx, &dep); err != nil {
			log.Fatalf("failed to create department %q: %v", dep.Name, err)
		}
		byName[dep.Name] = dep.ID
		log.Printf("created department %q", dep.Name)
	}

	seedServices := []models.Service{
		{Name: "Birth Certificate Copy", DepartmentID: byName["Civil Registry"], Fee: 10, ProcessingTime: ptr("3 business days")},
		{Name: "Construction Permit", DepartmentID: byName["Urban Planning"], Fee: 150, ProcessingTime: ptr("30 business days")},
		{Name: "Vehicle Registration Renewal", DepartmentID: byName["Transportation"], Fee: 45, ProcessingTime: ptr("5 business days")},
	}

	existing, err := services.List(ctx, models.ServiceFilter{})
	if err != nil {
		log.Fatalf("failed to list services: %v", err)
	}
	present := map[string]bool{}
	for _, svc := range existing {
		present[svc.Name] = true
	}

	for i := range seedServices {
		svc := seedServices[i]
		if present[svc.Name] {
			continue
		}
		svc.Active = true
		if err := services.Create(ctx, &svc); err != nil {
			log.Fatalf("failed to create service %q: %v", svc.Name, err)
		}
		log.Printf("created service %q", svc.Name)
	}

	log.Println("seed complete")
}

func ptr(s string) *string { return &s }
