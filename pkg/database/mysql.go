package database

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/nemocrk/my-wedding-app/environments"
	"github.com/nemocrk/my-wedding-app/pkg/logger"
)

func NewMySQLDB(cfg environments.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&collation=utf8mb4_unicode_ci",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Infof("Connected to MySQL database")
	return db, nil
}

func RunMigrations(db *sqlx.DB) error {
	schemas := []string{
		`
	CREATE TABLE IF NOT EXISTS message_queue (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		session_type VARCHAR(10) NOT NULL,
		recipient_number VARCHAR(30) NOT NULL,
		message_body TEXT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		attempts INT NOT NULL DEFAULT 0,
		scheduled_for DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		sent_at DATETIME NULL,
		error_log TEXT NULL,
		provider_message_id VARCHAR(100) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_queue_status (status),
		INDEX idx_queue_scheduled_for (scheduled_for),
		INDEX idx_queue_session_type (session_type)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
	`,
		`
	CREATE TABLE IF NOT EXISTS message_templates (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		content TEXT NOT NULL,
		send_condition VARCHAR(20) NOT NULL DEFAULT 'manual',
		trigger_status VARCHAR(20) NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_templates_condition (send_condition)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
	`,
	}

	for _, schema := range schemas {
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	logger.Infof("Database migrations completed")

	return nil
}

func SeedTestData(db *sqlx.DB) error {
	var count int

	err := db.Get(&count, "SELECT COUNT(*) FROM message_templates")
	if err != nil {
		return err
	}

	if count > 0 {
		logger.Infof("Database already has %d templates, skipping seed", count)
		return nil
	}

	templates := []struct {
		name      string
		content   string
		condition string
		active    bool
	}{
		{"Save the date", "Ciao {name}! Save the date: 12 September. Your invitation: {link}", "manual", true},
		{"Invitation with code", "Hi {name}, here is your personal code {code} and your invitation: {link}", "manual", true},
		{"Plain reminder", "Hi {name}, just a reminder about the wedding next week!", "manual", true},
		{"Old draft", "Draft text, do not send", "manual", false},
		{"Confirmed follow-up", "Thanks for confirming, {name}! See you there.", "status_change", true},
	}

	for _, t := range templates {
		_, err := db.Exec(
			"INSERT INTO message_templates (name, content, send_condition, is_active) VALUES (?, ?, ?, ?)",
			t.name, t.content, t.condition, t.active,
		)
		if err != nil {
			return fmt.Errorf("failed to seed templates: %w", err)
		}
	}

	queueRows := []struct {
		session string
		number  string
		body    string
	}{
		{"groom", "+393331112233", "Ciao Mario! Save the date: 12 September."},
		{"bride", "+393334445566", "Hi Giulia, here is your invitation!"},
	}

	for _, row := range queueRows {
		_, err := db.Exec(
			"INSERT INTO message_queue (session_type, recipient_number, message_body, status) VALUES (?, ?, ?, 'pending')",
			row.session, row.number, row.body,
		)
		if err != nil {
			return fmt.Errorf("failed to seed queue: %w", err)
		}
	}

	logger.Infof("Seeded %d templates and %d queue rows", len(templates), len(queueRows))
	return nil
}
