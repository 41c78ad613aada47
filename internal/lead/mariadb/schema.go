// internal/lead/mariadb/schema.go
//
// One-time schema setup for the users table.
//
// CREATE TABLE IF NOT EXISTS is idempotent on its own; the index statements
// need the information_schema probe because MariaDB below 10.5 lacks
// CREATE INDEX IF NOT EXISTS.
package mariadb

import (
	"context"
	"fmt"
)

const createTable = `
CREATE TABLE IF NOT EXISTS users (
    id                 BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
    first_name         VARCHAR(100)  NOT NULL,
    last_name          VARCHAR(100)  NOT NULL,
    email              VARCHAR(255)  NOT NULL,
    company            VARCHAR(255)  NOT NULL,
    phone              VARCHAR(50)   NOT NULL,
    message            TEXT          NOT NULL,
    welcome_sent       BOOLEAN       NOT NULL DEFAULT FALSE,
    welcome_sent_at    TIMESTAMP     NULL DEFAULT NULL,
    welcome_message_id VARCHAR(255)  NULL DEFAULT NULL,
    admin_notified     BOOLEAN       NOT NULL DEFAULT FALSE,
    admin_notified_at  TIMESTAMP     NULL DEFAULT NULL,
    admin_message_id   VARCHAR(255)  NULL DEFAULT NULL,
    created_at         TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at         TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP
                                     ON UPDATE CURRENT_TIMESTAMP,
    PRIMARY KEY (id),
    UNIQUE KEY uq_users_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

// setupSchema creates the table plus the created_at index.  The unique email
// index rides along with the table definition.
func (s *Store) setupSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("mariadb: create users table: %w", err)
	}

	var n int
	const probe = `
        SELECT COUNT(*) FROM information_schema.statistics
        WHERE table_schema = DATABASE()
          AND table_name   = 'users'
          AND index_name   = 'idx_users_created_at'`
	if err := s.db.GetContext(ctx, &n, probe); err != nil {
		return fmt.Errorf("mariadb: probe created_at index: %w", err)
	}
	if n == 0 {
		const create = `CREATE INDEX idx_users_created_at ON users (created_at)`
		if _, err := s.db.ExecContext(ctx, create); err != nil {
			return fmt.Errorf("mariadb: create created_at index: %w", err)
		}
	}
	return nil
}
