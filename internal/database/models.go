package database

import (
	"time"

	"gorm.io/gorm"
)

// QueryLog records one search submission, successful or not
type QueryLog struct {
	gorm.Model
	Mode         string    `json:"mode"`
	State        string    `json:"state"`
	Bench        string    `json:"bench"`
	CaseType     string    `json:"case_type"`
	CaseNumber   string    `json:"case_number"`
	CaseYear     string    `json:"case_year"`
	CaseRef      string    `json:"case_ref"`
	RawResponse  string    `json:"-" gorm:"type:text"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message"`
	QueryTime    time.Time `json:"query_time"`
	IPAddress    string    `json:"ip_address"`
}

// Watch asks for a cause-list URL to be checked for an identifier
type Watch struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	URL             string     `json:"url" gorm:"not null"`
	Identifier      string     `json:"identifier" gorm:"not null"`
	Email           string     `json:"email"`
	IntervalMinutes int        `json:"interval_minutes"`
	Active          bool       `json:"active" gorm:"default:true"`
	CreatedAt       time.Time  `json:"created_at"`
	LastNotifiedAt  *time.Time `json:"last_notified_at"`
	LastCheckedAt   *time.Time `json:"last_checked_at"`
}

// Notification is a recorded match of a watch
type Notification struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	WatchID    uint      `json:"watch_id" gorm:"not null"`
	NotifiedAt time.Time `json:"notified_at"`
	Snippet    string    `json:"snippet"`
	SourceURL  string    `json:"source_url"`
}

// Judgment is a judgment link found on a case detail page. DownloadedAt
// drives retention; PurgedAt is set once the file is removed, after which
// the row is never queued again.
type Judgment struct {
	gorm.Model
	QueryLogID   uint       `json:"query_log_id"`
	CaseRef      string     `json:"case_ref"`
	URL          string     `json:"url"`
	Downloaded   bool       `json:"downloaded"`
	LocalPath    string     `json:"local_path"`
	Size         int64      `json:"size"`
	DownloadedAt *time.Time `json:"downloaded_at"`
	PurgedAt     *time.Time `json:"purged_at"`
}

func (QueryLog) TableName() string {
	return "query_logs"
}

func (Watch) TableName() string {
	return "watches"
}

func (Notification) TableName() string {
	return "notifications"
}

func (Judgment) TableName() string {
	return "judgments"
}
