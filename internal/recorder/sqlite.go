package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"CoinSentinel/internal/model"
)

// SQLiteRecorder persists evaluation history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for concurrent reads while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			price      REAL,
			score      INTEGER,
			action     TEXT,
			verdict    INTEGER,
			ema50      REAL,
			ema200     REAL,
			rsi14      REAL,
			change_1h  REAL,
			change_24h REAL,
			rebound_2h REAL,
			reasons    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(timestamp)`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			action      TEXT,
			price       REAL,
			score       INTEGER,
			forced      INTEGER,
			delivered   INTEGER,
			status_code INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_ts ON alerts(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(sig *model.Signal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rsi sql.NullFloat64
	if v, ok := sig.Indicators.RSIValue(); ok {
		rsi = sql.NullFloat64{Float64: v, Valid: true}
	}

	_, err := r.db.Exec(`INSERT INTO signals
		(timestamp, price, score, action, verdict,
		 ema50, ema200, rsi14, change_1h, change_24h, rebound_2h, reasons)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		sig.At.Unix(), sig.Price, sig.Score, string(sig.Action), sig.Verdict,
		sig.Indicators.EMAShort, sig.Indicators.EMALong, rsi,
		sig.Indicators.Change1h, sig.Indicators.Change24h, sig.Indicators.Rebound,
		strings.Join(sig.Reason, "\n"),
	)
	return err
}

func (r *SQLiteRecorder) RecordAlert(evt *AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO alerts
		(timestamp, action, price, score, forced, delivered, status_code)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), string(evt.Action), evt.Price, evt.Score,
		evt.Forced, evt.Delivered, evt.StatusCode,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
