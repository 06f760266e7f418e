package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

const (
	seedEmail    = "demo@techblog.local"
	seedPassword = "password"
	seedUsername = "demo"
)

const welcomePost = "# Welcome to TechBlog\n\n" +
	"This post was created by the development seed.\n\n" +
	"```go\nfmt.Println(\"hello\")\n```\n"

// Seed populates the database with development data: a demo author and one
// published post. It does nothing once any user exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var userID string
	if err := tx.QueryRow(
		`INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id`,
		seedEmail, string(hash),
	).Scan(&userID); err != nil {
		return fmt.Errorf("seed insert user: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO profiles (id, username, full_name, bio) VALUES ($1, $2, $3, $4)`,
		userID, seedUsername, "Demo Author", "Writes the sample posts.",
	); err != nil {
		return fmt.Errorf("seed insert profile: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO posts (title, slug, content, excerpt, category_id, published, author_id)
		VALUES ($1, $2, $3, $4, (SELECT id FROM categories WHERE slug = 'web-development'), true, $5)
	`, "Welcome to TechBlog", "welcome-to-techblog", welcomePost,
		"This post was created by the development seed.", userID); err != nil {
		return fmt.Errorf("seed insert post: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo author",
		"email", seedEmail,
		"password", seedPassword,
	)
	return nil
}
