package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a row addressed by id does not exist
var ErrNotFound = errors.New("record not found")

// Store wraps the handful of queries the application needs
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the handle for health checks
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) CreateQueryLog(q *QueryLog) error {
	return s.db.Create(q).Error
}

// RecentQueries returns the newest query logs first
func (s *Store) RecentQueries(limit int) ([]QueryLog, error) {
	var logs []QueryLog
	err := s.db.Order("query_time DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

func (s *Store) CreateWatch(w *Watch) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}
	w.Active = true
	return s.db.Create(w).Error
}

func (s *Store) ListWatches() ([]Watch, error) {
	var watches []Watch
	err := s.db.Order("created_at DESC").Find(&watches).Error
	return watches, err
}

// ActiveWatches returns active watches oldest first, the evaluation order
func (s *Store) ActiveWatches() ([]Watch, error) {
	var watches []Watch
	err := s.db.Where("active = ?", true).Order("id ASC").Find(&watches).Error
	return watches, err
}

func (s *Store) GetWatch(id uint) (*Watch, error) {
	var w Watch
	if err := s.db.First(&w, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// DeactivateWatch stops a watch from being evaluated; the row is kept
func (s *Store) DeactivateWatch(id uint) error {
	res := s.db.Model(&Watch{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordNotification stores the notification and stamps the watch in one
// transaction
func (s *Store) RecordNotification(n *Notification) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		res := tx.Model(&Watch{}).Where("id = ?", n.WatchID).Update("last_notified_at", n.NotifiedAt)
		if res.Error != nil {
			return fmt.Errorf("failed to update watch: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// MarkWatchChecked records when a watch was last evaluated successfully
func (s *Store) MarkWatchChecked(id uint, at time.Time) error {
	res := s.db.Model(&Watch{}).Where("id = ?", id).Update("last_checked_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Notifications lists a watch's notifications, newest first
func (s *Store) Notifications(watchID uint, limit int) ([]Notification, error) {
	var out []Notification
	err := s.db.Where("watch_id = ?", watchID).Order("notified_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (s *Store) CreateJudgment(j *Judgment) error {
	return s.db.Create(j).Error
}

func (s *Store) SaveJudgment(j *Judgment) error {
	return s.db.Save(j).Error
}

// PendingJudgments are judgments not yet downloaded
func (s *Store) PendingJudgments() ([]Judgment, error) {
	var out []Judgment
	err := s.db.Where("url != ? AND downloaded = ?", "", false).Order("id ASC").Find(&out).Error
	return out, err
}

// DownloadedBefore returns judgments downloaded before cutoff whose file is
// still on disk
func (s *Store) DownloadedBefore(cutoff time.Time) ([]Judgment, error) {
	var out []Judgment
	err := s.db.Where("downloaded = ? AND downloaded_at < ? AND purged_at IS NULL", true, cutoff).Order("id ASC").Find(&out).Error
	return out, err
}

func (s *Store) ListJudgments(limit int) ([]Judgment, error) {
	var out []Judgment
	err := s.db.Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}
