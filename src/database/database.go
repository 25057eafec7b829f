package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/dealfolio/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Ensuring database schema", "databasePath", databasePath)
	} else {
		stdlog.Println("Ensuring database schema for:", databasePath)
	}

	createTableStatement := `
	CREATE TABLE IF NOT EXISTS parsed_deals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		import_id TEXT NOT NULL,
		source TEXT NOT NULL,
		symbol TEXT NOT NULL,
		type TEXT NOT NULL,
		quantity REAL NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL,
		pnl REAL NOT NULL DEFAULT 0,
		entry_time TIMESTAMP,
		exit_time TIMESTAMP,
		stop_loss REAL,
		take_profit REAL,
		comment TEXT,
		deal_id TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_parsed_deals_user ON parsed_deals(user_id);
	CREATE INDEX IF NOT EXISTS idx_parsed_deals_import ON parsed_deals(import_id);
	`

	if _, err := db.Exec(createTableStatement); err != nil {
		stdlog.Fatalf("failed to create parsed_deals table: %v", err)
	}

	if logger.L != nil {
		logger.L.Info("Database initialized")
	}
}
