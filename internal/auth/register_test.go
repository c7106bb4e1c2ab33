package auth

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/heartlink/heartlink-backend/pkg/config"
	"github.com/heartlink/heartlink-backend/pkg/db"
	"github.com/heartlink/heartlink-backend/pkg/db/models"
	pkgerrors "github.com/heartlink/heartlink-backend/pkg/errors"
	"github.com/heartlink/heartlink-backend/pkg/security"
)

func setupRegisterTestDB(t *testing.T) *db.Client {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	const schema = `
CREATE TABLE users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    show_full_name BOOLEAN,
    system_role TEXT,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    last_login_at DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	if err := conn.Exec(schema).Error; err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return db.NewFromConn(conn)
}

func newRegisterService(t *testing.T, client *db.Client) RegisterService {
	t.Helper()
	svc, err := NewRegisterService(RegisterServiceParams{
		DB:             client,
		PasswordConfig: config.PasswordConfig{},
	})
	if err != nil {
		t.Fatalf("build register service: %v", err)
	}
	return svc
}

func TestRegisterCreatesUser(t *testing.T) {
	client := setupRegisterTestDB(t)
	svc := newRegisterService(t, client)

	show := false
	dto, err := svc.Register(context.Background(), RegisterRequest{
		FirstName:    " Grace ",
		LastName:     "Hopper",
		Email:        " Grace@Example.com ",
		Password:     "cobol-forever",
		ShowFullName: &show,
		AcceptTOS:    true,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if dto.Email != "grace@example.com" {
		t.Fatalf("expected normalized email, got %q", dto.Email)
	}
	if dto.FirstName != "Grace" {
		t.Fatalf("expected trimmed first name, got %q", dto.FirstName)
	}
	if dto.ShowFullName == nil || *dto.ShowFullName {
		t.Fatalf("expected show_full_name false to persist")
	}

	var stored models.User
	if err := client.DB().First(&stored, "email = ?", "grace@example.com").Error; err != nil {
		t.Fatalf("load stored user: %v", err)
	}
	if !stored.IsActive {
		t.Fatalf("expected new account to be active")
	}
	ok, err := security.VerifyPassword("cobol-forever", stored.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("expected stored hash to verify, ok=%v err=%v", ok, err)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	client := setupRegisterTestDB(t)
	svc := newRegisterService(t, client)

	req := RegisterRequest{
		FirstName: "Alan",
		LastName:  "Turing",
		Email:     "alan@example.com",
		Password:  "enigma-enigma",
		AcceptTOS: true,
	}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register: %v", err)
	}

	req.Email = "ALAN@example.com"
	_, err := svc.Register(context.Background(), req)
	if err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %s", code)
	}

	var count int64
	if err := client.DB().Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected the conflicting insert to roll back, found %d rows", count)
	}
}

func TestRegisterValidation(t *testing.T) {
	client := setupRegisterTestDB(t)
	svc := newRegisterService(t, client)

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{
			name: "blank email",
			req:  RegisterRequest{FirstName: "A", LastName: "B", Email: "   ", Password: "long-enough", AcceptTOS: true},
		},
		{
			name: "tos not accepted",
			req:  RegisterRequest{FirstName: "A", LastName: "B", Email: "a@example.com", Password: "long-enough"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.req)
			if err == nil {
				t.Fatalf("expected validation failure")
			}
			if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
				t.Fatalf("expected validation, got %s", code)
			}
		})
	}
}
