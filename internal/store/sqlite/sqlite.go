package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"slidesmith/internal/deck"
	"slidesmith/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store keeps presentations in a single SQLite file. Writes use immediate
// transactions so version numbering is serialized per database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=1&_busy_timeout=5000&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := createTables(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	slog.Debug("Database initialized", "path", dbPath)
	return &Store{db: db, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS presentations (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			topic TEXT NOT NULL,
			audience TEXT NOT NULL,
			objective TEXT NOT NULL DEFAULT '',
			situation TEXT NOT NULL DEFAULT '',
			insights TEXT NOT NULL DEFAULT '',
			is_favorite INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_presentations_user_updated ON presentations(user_id, updated_at DESC);`,
		`CREATE TABLE IF NOT EXISTS presentation_versions (
			id TEXT PRIMARY KEY,
			presentation_id TEXT NOT NULL REFERENCES presentations(id) ON DELETE CASCADE,
			version_number INTEGER NOT NULL,
			slides_data TEXT NOT NULL,
			is_current INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			UNIQUE (presentation_id, version_number)
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_versions_one_current
			ON presentation_versions(presentation_id) WHERE is_current = 1;`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreatePresentation(ctx context.Context, scope store.Scope, brief deck.Brief, d *deck.Deck) (string, error) {
	if err := scope.Validate(); err != nil {
		return "", err
	}
	snapshot, err := store.EncodeDeck(d)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	now := s.now().UnixNano()

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO presentations (id, user_id, topic, audience, objective, situation, insights, is_favorite, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
			id, string(scope), brief.Topic, brief.Audience, brief.Objective, brief.Situation, brief.Insights, now, now,
		); err != nil {
			return fmt.Errorf("insert presentation: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO presentation_versions (id, presentation_id, version_number, slides_data, is_current, created_at)
			VALUES (?, ?, 1, ?, 1, ?)`,
			uuid.NewString(), id, string(snapshot), now,
		); err != nil {
			return fmt.Errorf("insert first version: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", wrap(err)
	}
	return id, nil
}

func (s *Store) AddVersion(ctx context.Context, scope store.Scope, presentationID string, d *deck.Deck) (string, error) {
	if err := scope.Validate(); err != nil {
		return "", err
	}
	snapshot, err := store.EncodeDeck(d)
	if err != nil {
		return "", err
	}

	versionID := uuid.NewString()
	now := s.now().UnixNano()

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ownPresentation(ctx, tx, scope, presentationID); err != nil {
			return err
		}

		var next int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(version_number), 0) + 1 FROM presentation_versions WHERE presentation_id = ?`,
			presentationID,
		).Scan(&next); err != nil {
			return fmt.Errorf("read version number: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE presentation_versions SET is_current = 0 WHERE presentation_id = ? AND is_current = 1`,
			presentationID,
		); err != nil {
			return fmt.Errorf("clear current version: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO presentation_versions (id, presentation_id, version_number, slides_data, is_current, created_at)
			VALUES (?, ?, ?, ?, 1, ?)`,
			versionID, presentationID, next, string(snapshot), now,
		); err != nil {
			return fmt.Errorf("insert version %d: %w", next, err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE presentations SET updated_at = ? WHERE id = ?`, now, presentationID,
		); err != nil {
			return fmt.Errorf("touch presentation: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", wrap(err)
	}
	return versionID, nil
}

func (s *Store) LoadPresentation(ctx context.Context, scope store.Scope, id string) (*store.Loaded, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	p, err := scanPresentation(s.db.QueryRowContext(ctx, selectPresentation+` WHERE id = ? AND user_id = ?`, id, string(scope)))
	if err != nil {
		return nil, wrap(err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, version_number, slides_data, is_current, created_at
		FROM presentation_versions WHERE presentation_id = ? ORDER BY version_number`, id)
	if err != nil {
		return nil, wrap(fmt.Errorf("query versions: %w", err))
	}
	defer func() { _ = rows.Close() }()

	var records []store.VersionRecord
	for rows.Next() {
		var (
			rec       store.VersionRecord
			data      string
			nanos     int64
			isCurrent bool
		)
		if err := rows.Scan(&rec.Info.ID, &rec.Info.Number, &data, &isCurrent, &nanos); err != nil {
			return nil, wrap(fmt.Errorf("scan version: %w", err))
		}
		rec.Info.IsCurrent = isCurrent
		rec.Info.CreatedAt = fromNanos(nanos)
		rec.Snapshot = []byte(data)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(fmt.Errorf("iterate versions: %w", err))
	}

	return store.NewLoaded(*p, records)
}

func (s *Store) ListPresentations(ctx context.Context, scope store.Scope) ([]store.Presentation, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		selectPresentation+` WHERE user_id = ? ORDER BY updated_at DESC, created_at DESC`, string(scope))
	if err != nil {
		return nil, wrap(fmt.Errorf("query presentations: %w", err))
	}
	defer func() { _ = rows.Close() }()

	list := []store.Presentation{}
	for rows.Next() {
		p, err := scanPresentation(rows)
		if err != nil {
			return nil, wrap(err)
		}
		list = append(list, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(fmt.Errorf("iterate presentations: %w", err))
	}
	return list, nil
}

func (s *Store) UpdatePresentationMeta(ctx context.Context, scope store.Scope, id string, brief deck.Brief) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	return s.execOne(ctx, `
		UPDATE presentations
		SET topic = ?, audience = ?, objective = ?, situation = ?, insights = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		brief.Topic, brief.Audience, brief.Objective, brief.Situation, brief.Insights, s.now().UnixNano(),
		id, string(scope),
	)
}

func (s *Store) DeletePresentation(ctx context.Context, scope store.Scope, id string) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	return s.execOne(ctx, `DELETE FROM presentations WHERE id = ? AND user_id = ?`, id, string(scope))
}

func (s *Store) SetFavorite(ctx context.Context, scope store.Scope, id string, favorite bool) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := ownPresentation(ctx, tx, scope, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE presentations SET is_favorite = ? WHERE id = ?`, favorite, id)
		return err
	})
	return wrap(err)
}

const selectPresentation = `
	SELECT id, topic, audience, objective, situation, insights, is_favorite, created_at, updated_at
	FROM presentations`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPresentation(row rowScanner) (*store.Presentation, error) {
	var (
		p                store.Presentation
		created, updated int64
	)
	err := row.Scan(&p.ID, &p.Topic, &p.Audience, &p.Objective, &p.Situation, &p.Insights,
		&p.IsFavorite, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, deck.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan presentation: %w", err)
	}
	p.CreatedAt = fromNanos(created)
	p.UpdatedAt = fromNanos(updated)
	return &p, nil
}

func ownPresentation(ctx context.Context, tx *sql.Tx, scope store.Scope, id string) error {
	var found string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM presentations WHERE id = ? AND user_id = ?`, id, string(scope),
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: presentation %s", deck.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("lookup presentation: %w", err)
	}
	return nil
}

func (s *Store) execOne(ctx context.Context, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(err)
	}
	if n == 0 {
		return deck.ErrNotFound
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// wrap tags storage failures with ErrPersistence and leaves not-found
// errors as they are.
func wrap(err error) error {
	if err == nil || errors.Is(err, deck.ErrNotFound) || errors.Is(err, deck.ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %w", deck.ErrPersistence, err)
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
