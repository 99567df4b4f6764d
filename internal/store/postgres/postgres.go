package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"slidesmith/internal/deck"
	"slidesmith/internal/store"
)

var _ store.Store = (*Store)(nil)

type presentationRow struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	UserID     string    `gorm:"type:text;not null;index:idx_presentations_user_updated,priority:1"`
	Topic      string    `gorm:"type:text;not null"`
	Audience   string    `gorm:"type:text;not null"`
	Objective  string    `gorm:"type:text;not null;default:''"`
	Situation  string    `gorm:"type:text;not null;default:''"`
	Insights   string    `gorm:"type:text;not null;default:''"`
	IsFavorite bool      `gorm:"not null;default:false"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null;index:idx_presentations_user_updated,priority:2,sort:desc"`

	Versions []versionRow `gorm:"foreignKey:PresentationID;constraint:OnDelete:CASCADE"`
}

func (presentationRow) TableName() string { return "presentations" }

type versionRow struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	PresentationID string    `gorm:"type:uuid;not null;uniqueIndex:idx_versions_number,priority:1"`
	VersionNumber  int       `gorm:"not null;uniqueIndex:idx_versions_number,priority:2"`
	SlidesData     string    `gorm:"type:jsonb;not null"`
	IsCurrent      bool      `gorm:"not null;default:false"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (versionRow) TableName() string { return "presentation_versions" }

// Store keeps presentations in PostgreSQL. Version numbering locks the
// presentation row for the duration of the transaction.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func Open(dsn string) (*Store, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	slog.Debug("Database initialized", "driver", "postgres")
	return &Store{db: db, now: time.Now}, nil
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&presentationRow{}, &versionRow{}); err != nil {
		return err
	}
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_versions_one_current
		ON presentation_versions (presentation_id) WHERE is_current`).Error
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreatePresentation(ctx context.Context, scope store.Scope, brief deck.Brief, d *deck.Deck) (string, error) {
	if err := scope.Validate(); err != nil {
		return "", err
	}
	snapshot, err := store.EncodeDeck(d)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	row := presentationRow{
		ID:        uuid.NewString(),
		UserID:    string(scope),
		Topic:     brief.Topic,
		Audience:  brief.Audience,
		Objective: brief.Objective,
		Situation: brief.Situation,
		Insights:  brief.Insights,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return fmt.Errorf("insert presentation: %w", err)
		}
		version := versionRow{
			ID:             uuid.NewString(),
			PresentationID: row.ID,
			VersionNumber:  1,
			SlidesData:     string(snapshot),
			IsCurrent:      true,
			CreatedAt:      now,
		}
		if err := tx.Create(&version).Error; err != nil {
			return fmt.Errorf("insert first version: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", wrap(err)
	}
	return row.ID, nil
}

func (s *Store) AddVersion(ctx context.Context, scope store.Scope, presentationID string, d *deck.Deck) (string, error) {
	if err := scope.Validate(); err != nil {
		return "", err
	}
	if err := checkID(presentationID); err != nil {
		return "", err
	}
	snapshot, err := store.EncodeDeck(d)
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	version := versionRow{
		ID:             uuid.NewString(),
		PresentationID: presentationID,
		SlidesData:     string(snapshot),
		IsCurrent:      true,
		CreatedAt:      now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner presentationRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ? AND user_id = ?", presentationID, string(scope)).
			First(&owner).Error; err != nil {
			return err
		}

		var current int
		if err := tx.Model(&versionRow{}).
			Where("presentation_id = ?", presentationID).
			Select("COALESCE(MAX(version_number), 0)").
			Scan(&current).Error; err != nil {
			return fmt.Errorf("read version number: %w", err)
		}
		version.VersionNumber = current + 1

		if err := tx.Model(&versionRow{}).
			Where("presentation_id = ? AND is_current", presentationID).
			UpdateColumn("is_current", false).Error; err != nil {
			return fmt.Errorf("clear current version: %w", err)
		}

		if err := tx.Create(&version).Error; err != nil {
			return fmt.Errorf("insert version %d: %w", version.VersionNumber, err)
		}

		return tx.Model(&presentationRow{}).
			Where("id = ?", presentationID).
			UpdateColumn("updated_at", now).Error
	})
	if err != nil {
		return "", wrap(err)
	}
	return version.ID, nil
}

func (s *Store) LoadPresentation(ctx context.Context, scope store.Scope, id string) (*store.Loaded, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if err := checkID(id); err != nil {
		return nil, err
	}

	var row presentationRow
	err := s.db.WithContext(ctx).
		Preload("Versions", func(db *gorm.DB) *gorm.DB {
			return db.Order("version_number ASC")
		}).
		Where("id = ? AND user_id = ?", id, string(scope)).
		First(&row).Error
	if err != nil {
		return nil, wrap(err)
	}

	records := make([]store.VersionRecord, len(row.Versions))
	for i, v := range row.Versions {
		records[i] = store.VersionRecord{
			Info: store.VersionInfo{
				ID:        v.ID,
				Number:    v.VersionNumber,
				IsCurrent: v.IsCurrent,
				CreatedAt: v.CreatedAt,
			},
			Snapshot: []byte(v.SlidesData),
		}
	}

	return store.NewLoaded(row.toPresentation(), records)
}

func (s *Store) ListPresentations(ctx context.Context, scope store.Scope) ([]store.Presentation, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}

	var rows []presentationRow
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", string(scope)).
		Order("updated_at DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, wrap(err)
	}

	list := make([]store.Presentation, len(rows))
	for i, row := range rows {
		list[i] = row.toPresentation()
	}
	return list, nil
}

func (s *Store) UpdatePresentationMeta(ctx context.Context, scope store.Scope, id string, brief deck.Brief) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&presentationRow{}).
		Where("id = ? AND user_id = ?", id, string(scope)).
		UpdateColumns(map[string]any{
			"topic":      brief.Topic,
			"audience":   brief.Audience,
			"objective":  brief.Objective,
			"situation":  brief.Situation,
			"insights":   brief.Insights,
			"updated_at": s.now().UTC(),
		})
	return affectedOne(res)
}

func (s *Store) DeletePresentation(ctx context.Context, scope store.Scope, id string) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, string(scope)).
		Delete(&presentationRow{})
	return affectedOne(res)
}

// SetFavorite leaves updated_at untouched. Postgres reports zero affected
// rows only when the presentation is missing.
func (s *Store) SetFavorite(ctx context.Context, scope store.Scope, id string, favorite bool) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if err := checkID(id); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&presentationRow{}).
		Where("id = ? AND user_id = ?", id, string(scope)).
		UpdateColumn("is_favorite", favorite)
	return affectedOne(res)
}

func (r presentationRow) toPresentation() store.Presentation {
	return store.Presentation{
		ID:         r.ID,
		Topic:      r.Topic,
		Audience:   r.Audience,
		Objective:  r.Objective,
		Situation:  r.Situation,
		Insights:   r.Insights,
		IsFavorite: r.IsFavorite,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// checkID maps ids the uuid column cannot hold to ErrNotFound, matching
// what a lookup of an unknown id returns.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: presentation %q", deck.ErrNotFound, id)
	}
	return nil
}

func affectedOne(res *gorm.DB) error {
	if res.Error != nil {
		return wrap(res.Error)
	}
	if res.RowsAffected == 0 {
		return deck.ErrNotFound
	}
	return nil
}

func wrap(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", deck.ErrNotFound, err)
	case errors.Is(err, deck.ErrNotFound), errors.Is(err, deck.ErrPersistence):
		return err
	default:
		return fmt.Errorf("%w: %w", deck.ErrPersistence, err)
	}
}
