package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/hexagonhq/hexagon/internal/config"
)

const connMaxLifetime = 5 * time.Minute

func Init(cfg *config.Config) (*sqlx.DB, error) {
	connection := cfg.DBConnection
	if cfg.DBDriver == "sqlite" {
		if !strings.HasPrefix(connection, ":memory:") {
			dir := filepath.Dir(strings.SplitN(connection, "?", 2)[0])
			err := os.MkdirAll(dir, 0755)
			if err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		connection = sqliteDSN(connection)
	}

	database, err := sqlx.Open(cfg.DBDriver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	database.SetMaxIdleConns(cfg.DBMaxIdleConns)
	database.SetConnMaxLifetime(connMaxLifetime)

	err = database.Ping()
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("database connected",
		"driver", cfg.DBDriver,
		"max_open_conns", cfg.DBMaxOpenConns,
	)

	return database, nil
}

// sqliteDSN applies the pragmas every sqlite deployment needs (enforced
// foreign keys for the user→habit cascade, WAL for concurrent readers, a busy
// timeout so the single writer queues instead of erroring). A DSN that already
// carries pragmas is taken as-is.
func sqliteDSN(connection string) string {
	if strings.Contains(connection, "_pragma=") {
		return connection
	}

	sep := "?"
	if strings.Contains(connection, "?") {
		sep = "&"
	}
	return connection + sep + "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

func Close(db *sqlx.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
