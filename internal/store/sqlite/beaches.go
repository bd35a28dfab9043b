package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/i474232898/surf-forecast/internal/forecast"
)

// BeachStorage is a SQLite-backed repository of beaches.
type BeachStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ forecast.BeachStore = (*BeachStorage)(nil)

// NewBeachStorage opens (or creates) the database at dbPath.
func NewBeachStorage(dbPath string, logger *zap.Logger) (*BeachStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	storageLogger := logger.Named("sqlite")

	storageLogger.Info("Initializing SQLite storage", zap.String("path", dbPath))

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s := &BeachStorage{db: db, logger: storageLogger}
	if err := s.initDB(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *BeachStorage) initDB() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS beaches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			position TEXT NOT NULL,
			lat REAL NOT NULL,
			lng REAL NOT NULL,
			user TEXT,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create beaches table: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_beaches_user ON beaches(user)`)
	if err != nil {
		return fmt.Errorf("failed to create user index: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *BeachStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Create validates and stores a beach, returning its id.
func (s *BeachStorage) Create(ctx context.Context, beach forecast.Beach) (int64, error) {
	if err := beach.Validate(); err != nil {
		return 0, fmt.Errorf("invalid beach: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO beaches (name, position, lat, lng, user, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		beach.Name,
		string(beach.Position),
		beach.Lat,
		beach.Lng,
		beach.User,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert beach: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	s.logger.Debug("beach stored", zap.Int64("id", id), zap.String("name", beach.Name))
	return id, nil
}

// List returns every beach in insertion order.
func (s *BeachStorage) List(ctx context.Context) ([]forecast.Beach, error) {
	return s.query(ctx, `SELECT name, position, lat, lng, user FROM beaches ORDER BY id ASC`)
}

// ListByUser returns the beaches owned by user in insertion order.
func (s *BeachStorage) ListByUser(ctx context.Context, user string) ([]forecast.Beach, error) {
	return s.query(ctx, `SELECT name, position, lat, lng, user FROM beaches WHERE user = ? ORDER BY id ASC`, user)
}

// Count returns the number of stored beaches.
func (s *BeachStorage) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM beaches`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count beaches: %w", err)
	}
	return n, nil
}

func (s *BeachStorage) query(ctx context.Context, q string, args ...interface{}) ([]forecast.Beach, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query beaches: %w", err)
	}
	defer rows.Close()

	beaches := make([]forecast.Beach, 0)
	for rows.Next() {
		var (
			b        forecast.Beach
			position string
			user     sql.NullString
		)
		if err := rows.Scan(&b.Name, &position, &b.Lat, &b.Lng, &user); err != nil {
			return nil, fmt.Errorf("failed to scan beach: %w", err)
		}
		b.Position = forecast.BeachPosition(position)
		b.User = user.String
		beaches = append(beaches, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate beaches: %w", err)
	}

	return beaches, nil
}
