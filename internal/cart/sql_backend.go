package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-cart/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLBackend keeps snapshots in the cart_snapshots table. Rows older than
// ttl read as absent; zero keeps them forever.
type SQLBackend struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewSQLBackend(db *gorm.DB, ttl time.Duration) *SQLBackend {
	return &SQLBackend{db: db, ttl: ttl, now: time.Now}
}

func (s *SQLBackend) Name() string { return "sql" }

func (s *SQLBackend) Get(ctx context.Context, sessionID string) ([]byte, error) {
	var row models.CartSnapshot
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	if s.ttl > 0 && row.UpdatedAt.Before(s.now().Add(-s.ttl)) {
		return nil, ErrSnapshotNotFound
	}
	return []byte(row.Payload), nil
}

func (s *SQLBackend) Put(ctx context.Context, sessionID string, data []byte) error {
	row := models.CartSnapshot{
		SessionID: sessionID,
		Payload:   string(data),
		ItemCount: countEntries(data),
		UpdatedAt: s.now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "item_count", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}

func (s *SQLBackend) Delete(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&models.CartSnapshot{}).Error
}

func (s *SQLBackend) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// PurgeExpired deletes rows that fell out of the retention window.
func (s *SQLBackend) PurgeExpired(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("updated_at < ?", s.now().UTC().Add(-s.ttl)).Delete(&models.CartSnapshot{})
	return res.RowsAffected, res.Error
}

func countEntries(data []byte) int {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0
	}
	return len(raw)
}
