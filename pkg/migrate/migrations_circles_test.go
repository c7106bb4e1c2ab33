package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heartlink/heartlink-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %q", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestCirclesMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_circles.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS circles",
		"FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE",
		"CHECK (member_count >= 0)",
		"show_members BOOLEAN,",
		"DROP TABLE IF EXISTS circles",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMembershipsMigrationEnforcesUniquePair(t *testing.T) {
	content := readMigration(t, "*_create_circle_memberships.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS circle_memberships",
		"ux_circle_memberships_circle_user",
		"ON circle_memberships (circle_id, user_id)",
		"FOREIGN KEY (circle_id) REFERENCES circles(id) ON DELETE CASCADE",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestInvitationsMigrationContainsStatusEnum(t *testing.T) {
	content := readMigration(t, "*_create_circle_invitations.sql")

	checks := []string{
		"CREATE TYPE invitation_status AS ENUM ('pending', 'accepted', 'rejected')",
		"status invitation_status NOT NULL DEFAULT 'pending'",
		"responded_at TIMESTAMPTZ",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
