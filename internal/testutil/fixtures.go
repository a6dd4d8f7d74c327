package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/crowdforge/crowdforge-backend/internal/domain"
)

func SeedTestUser(t *testing.T, db *sql.DB, email, name string) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         domain.UserRoleMember,
		Status:       domain.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
	}

	_, err = db.Exec(
		`INSERT INTO users (id, email, name, password_hash, role, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, u.Status, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test user %s: %v", email, err)
	}
	return u
}

func SeedAdminUser(t *testing.T, db *sql.DB, email string) *domain.User {
	t.Helper()

	u := SeedTestUser(t, db, email, "Admin")
	if _, err := db.Exec(`UPDATE users SET role = 'admin' WHERE id = $1`, u.ID); err != nil {
		t.Fatalf("promote admin %s: %v", email, err)
	}
	u.Role = domain.UserRoleAdmin
	return u
}

func SeedTestCampaign(t *testing.T, db *sql.DB, creatorID uuid.UUID, title string, goal int64) *domain.Campaign {
	t.Helper()

	c := &domain.Campaign{
		ID:           uuid.New(),
		CreatorID:    creatorID,
		Title:        title,
		Category:     "community",
		Description:  "a test campaign",
		Story:        "the full story",
		Goal:         goal,
		Verification: domain.VerificationApproved,
		Version:      1,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO campaigns (id, creator_id, title, category, description, story, goal,
			verification, version, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.CreatorID, c.Title, c.Category, c.Description, c.Story, c.Goal,
		c.Verification, c.Version, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed test campaign %s: %v", title, err)
	}
	return c
}

func SeedLedger(t *testing.T, db *sql.DB, userID uuid.UUID, funds int64) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO ledgers (user_id, available_funds) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET available_funds = $2`,
		userID, funds,
	)
	if err != nil {
		t.Fatalf("seed ledger for %s: %v", userID, err)
	}
}

func GetLedgerFunds(t *testing.T, db *sql.DB, userID uuid.UUID) int64 {
	t.Helper()

	var funds int64
	err := db.QueryRow(`SELECT available_funds FROM ledgers WHERE user_id = $1`, userID).Scan(&funds)
	if err != nil {
		t.Fatalf("get ledger funds %s: %v", userID, err)
	}
	return funds
}

func GetCampaignTotals(t *testing.T, db *sql.DB, campaignID uuid.UUID) (raised int64, backers int, withdrawn int64) {
	t.Helper()

	err := db.QueryRow(
		`SELECT raised_funds, backers, funds_withdrawn FROM campaigns WHERE id = $1`,
		campaignID,
	).Scan(&raised, &backers, &withdrawn)
	if err != nil {
		t.Fatalf("get campaign totals %s: %v", campaignID, err)
	}
	return raised, backers, withdrawn
}

func CountDonations(t *testing.T, db *sql.DB, transactionID string) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM donations WHERE transaction_id = $1`, transactionID).Scan(&count)
	if err != nil {
		t.Fatalf("count donations for %s: %v", transactionID, err)
	}
	return count
}
