package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"viral-clip-gen/internal/logging"
	"viral-clip-gen/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Connect opens a pgx pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Migrate applies the embedded SQL migrations.
func Migrate(databaseURL string, log *logging.Logger) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(databaseURL))
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, dirty, _ := m.Version()
	log.Infof("migrations applied: version=%d dirty=%v", version, dirty)
	return nil
}

// migrateURL rewrites a postgres:// DSN to the pgx5 scheme
// golang-migrate expects.
func migrateURL(databaseURL string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(databaseURL, scheme) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, scheme)
		}
	}
	return databaseURL
}

// PG is the PostgreSQL-backed ContentStore. Plain SQL through pgx, no
// ORM.
type PG struct {
	pool *pgxpool.Pool
}

func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

func (s *PG) Save(ctx context.Context, rec *model.ContentRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO contents (id, original_filename, stored_filename, file_type, theme, generated_content, processed_filename, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)
		ON CONFLICT (id) DO UPDATE
		SET generated_content = EXCLUDED.generated_content,
		    processed_filename = EXCLUDED.processed_filename`,
		rec.ID, rec.OriginalFilename, rec.StoredFilename, rec.FileType,
		rec.Theme, rec.GeneratedContent, rec.ProcessedFilename, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("save content record: %w", err)
	}
	return nil
}

func (s *PG) Get(ctx context.Context, id string) (*model.ContentRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, original_filename, stored_filename, file_type, theme, generated_content, COALESCE(processed_filename, ''), created_at
		FROM contents WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get content record: %w", err)
	}
	return rec, nil
}

func (s *PG) Recent(ctx context.Context, limit int) ([]model.ContentRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, original_filename, stored_filename, file_type, theme, generated_content, COALESCE(processed_filename, ''), created_at
		FROM contents ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list content records: %w", err)
	}
	defer rows.Close()

	var recs []model.ContentRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content record: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

func scanRecord(row pgx.Row) (*model.ContentRecord, error) {
	var rec model.ContentRecord
	if err := row.Scan(&rec.ID, &rec.OriginalFilename, &rec.StoredFilename, &rec.FileType,
		&rec.Theme, &rec.GeneratedContent, &rec.ProcessedFilename, &rec.CreatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}
