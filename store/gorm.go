package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"matchday-system/models"
)

// GormStore implements Store on PostgreSQL via GORM.
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

// AutoMigrate creates/updates the engine's tables.
func (s *GormStore) AutoMigrate() error {
	return s.DB.AutoMigrate(
		&models.Match{},
		&models.Player{},
		&models.Team{},
		&models.Trophy{},
		&models.Notification{},
	)
}

// wrapDBErr lifts driver errors into the store taxonomy. Duplicate-key
// mapping relies on gorm.Config{TranslateError: true}.
func wrapDBErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *GormStore) InsertMatch(ctx context.Context, m *models.Match) error {
	if err := s.DB.WithContext(ctx).Create(m).Error; err != nil {
		return wrapDBErr("insert match "+m.ID, err)
	}
	return nil
}

func (s *GormStore) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	var m models.Match
	if err := s.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, wrapDBErr("get match "+id, err)
	}
	return &m, nil
}

// ReplaceMatch is the conditional full-document replace. The WHERE on
// the version column makes the write a compare-and-set; zero affected
// rows means another writer got there first.
func (s *GormStore) ReplaceMatch(ctx context.Context, m *models.Match, expectedVersion int) error {
	next := *m
	next.Version = expectedVersion + 1
	res := s.DB.WithContext(ctx).
		Model(&models.Match{}).
		Where("id = ? AND version = ?", m.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(&next)
	if res.Error != nil {
		return wrapDBErr("replace match "+m.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("replace match %s: %w", m.ID, ErrVersionConflict)
	}
	m.Version = next.Version
	return nil
}

func (s *GormStore) MatchesByStatus(ctx context.Context, statuses ...models.MatchStatus) ([]models.Match, error) {
	var matches []models.Match
	if err := s.DB.WithContext(ctx).Where("status IN ?", statuses).Find(&matches).Error; err != nil {
		return nil, wrapDBErr("scan matches", err)
	}
	return matches, nil
}

func (s *GormStore) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	var p models.Player
	if err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, wrapDBErr("get player "+id, err)
	}
	return &p, nil
}

func (s *GormStore) UpsertPlayer(ctx context.Context, p *models.Player) error {
	if err := s.DB.WithContext(ctx).Save(p).Error; err != nil {
		return wrapDBErr("upsert player "+p.ID, err)
	}
	return nil
}

func (s *GormStore) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	var t models.Team
	if err := s.DB.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, wrapDBErr("get team "+id, err)
	}
	return &t, nil
}

func (s *GormStore) UpsertTeam(ctx context.Context, t *models.Team) error {
	if err := s.DB.WithContext(ctx).Save(t).Error; err != nil {
		return wrapDBErr("upsert team "+t.ID, err)
	}
	return nil
}

func (s *GormStore) GetTrophy(ctx context.Context, id string) (*models.Trophy, error) {
	var t models.Trophy
	if err := s.DB.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, wrapDBErr("get trophy "+id, err)
	}
	return &t, nil
}

func (s *GormStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	if err := s.DB.WithContext(ctx).Create(n).Error; err != nil {
		return wrapDBErr("insert notification", err)
	}
	return nil
}

func (s *GormStore) DeleteNotificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.Notification{})
	if res.Error != nil {
		return 0, wrapDBErr("prune notifications", res.Error)
	}
	return res.RowsAffected, nil
}
