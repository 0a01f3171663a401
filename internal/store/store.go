package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mohammad-safakhou/newsreel/config"
	"github.com/mohammad-safakhou/newsreel/models"
)

// ErrNotMigrated is returned when the renders table does not exist yet.
var ErrNotMigrated = errors.New("render ledger not migrated, run `newsreel migrate`")

// Store is the render ledger. It keeps metadata about production attempts only.
type Store struct {
	DB *sql.DB
}

// New opens the ledger described by cfg.
func New(ctx context.Context, cfg config.PostgresConfig) (*Store, error) {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	return NewWithDSN(ctx, cfg.DSN())
}

// NewWithDSN constructs the Store using an explicit Postgres DSN
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{DB: db}, nil
}

func (s *Store) Close() error { return s.DB.Close() }

const insertRender = `
INSERT INTO renders (id, session_id, headline, status, failed_stage, error, video_path, duration_ms, words, image_used, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO NOTHING;
`

// Record stores one production outcome. Recording the same id twice is a no-op.
func (s *Store) Record(ctx context.Context, rec models.RenderRecord) error {
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := s.DB.ExecContext(ctx, insertRender,
		rec.ID,
		rec.SessionID,
		rec.Headline,
		string(rec.Status),
		nullString(rec.FailedStage),
		nullString(rec.Error),
		nullString(rec.VideoPath),
		rec.Duration.Milliseconds(),
		rec.Words,
		rec.ImageUsed,
		created,
	)
	if err != nil {
		return classify(fmt.Errorf("insert render: %w", err))
	}
	return nil
}

const listRenders = `
SELECT id, session_id, headline, status, failed_stage, error, video_path, duration_ms, words, image_used, created_at
FROM renders
ORDER BY created_at DESC
LIMIT $1;
`

// ListRenders returns the most recent records first.
func (s *Store) ListRenders(ctx context.Context, limit int) ([]models.RenderRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, listRenders, limit)
	if err != nil {
		return nil, classify(fmt.Errorf("list renders: %w", err))
	}
	defer rows.Close()

	var out []models.RenderRecord
	for rows.Next() {
		var (
			rec               models.RenderRecord
			status            string
			stage, msg, video sql.NullString
			durationMS        int64
		)
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Headline, &status, &stage, &msg, &video,
			&durationMS, &rec.Words, &rec.ImageUsed, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Status = models.RenderStatus(status)
		rec.FailedStage = stage.String
		rec.Error = msg.String
		rec.VideoPath = video.String
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// classify maps a missing table to ErrNotMigrated.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "42P01" {
		return fmt.Errorf("%w: %v", ErrNotMigrated, err)
	}
	return err
}
