package store

import (
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"looma/models"
)

// EmailStore is the persistence layer for summarized emails. All mutations
// scoped by user return the affected row count so handlers can turn zero
// rows into a 404 without distinguishing "not found" from "not yours".
type EmailStore struct {
	db *gorm.DB
}

func NewEmailStore(db *gorm.DB) *EmailStore {
	return &EmailStore{db: db}
}

// InsertIfAbsent inserts a summarized email, silently skipping the write
// when a row with the same email_id already exists. Re-running a
// summarization is therefore always safe.
func (s *EmailStore) InsertIfAbsent(email *models.Email) error {
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email_id"}},
		DoNothing: true,
	}).Create(email).Error
}

// ListActive returns the user's non-trashed emails, newest first.
func (s *EmailStore) ListActive(userID uint) ([]models.Email, error) {
	var emails []models.Email
	err := s.db.
		Where("user_id = ? AND is_trashed = ?", userID, false).
		Order("date DESC").
		Find(&emails).Error
	return emails, err
}

// ListTrashed returns the user's trashed emails, most recently deleted
// first.
func (s *EmailStore) ListTrashed(userID uint) ([]models.Email, error) {
	var emails []models.Email
	err := s.db.
		Where("user_id = ? AND is_trashed = ?", userID, true).
		Order("deleted_date DESC").
		Order("date DESC").
		Find(&emails).Error
	return emails, err
}

// SetRead flips the read flag on one email and reports how many rows were
// touched.
func (s *EmailStore) SetRead(emailID string, read bool) (int64, error) {
	res := s.db.Model(&models.Email{}).
		Where("email_id = ?", emailID).
		Update("read", read)
	return res.RowsAffected, res.Error
}

// MoveToTrash soft-deletes one email owned by the user.
func (s *EmailStore) MoveToTrash(emailID string, userID uint) (int64, error) {
	now := time.Now()
	res := s.db.Model(&models.Email{}).
		Where("email_id = ? AND user_id = ?", emailID, userID).
		Updates(map[string]interface{}{
			"is_trashed":   true,
			"deleted_date": &now,
		})
	return res.RowsAffected, res.Error
}

// Restore moves one trashed email back to the active list.
func (s *EmailStore) Restore(emailID string, userID uint) (int64, error) {
	res := s.db.Model(&models.Email{}).
		Where("email_id = ? AND user_id = ? AND is_trashed = ?", emailID, userID, true).
		Updates(map[string]interface{}{
			"is_trashed":   false,
			"deleted_date": nil,
		})
	return res.RowsAffected, res.Error
}

// PermanentlyDelete removes one email for good. The row must already be in
// the trash.
func (s *EmailStore) PermanentlyDelete(emailID string, userID uint) (int64, error) {
	res := s.db.Unscoped().
		Where("email_id = ? AND user_id = ? AND is_trashed = ?", emailID, userID, true).
		Delete(&models.Email{})
	return res.RowsAffected, res.Error
}

// EmptyTrash removes every trashed email for the user and returns the
// number deleted.
func (s *EmailStore) EmptyTrash(userID uint) (int64, error) {
	res := s.db.Unscoped().
		Where("user_id = ? AND is_trashed = ?", userID, true).
		Delete(&models.Email{})
	return res.RowsAffected, res.Error
}

// DashboardStats are the summary counters for the dashboard cards.
type DashboardStats struct {
	TotalEmails   int64 `json:"totalEmails"`
	UnreadEmails  int64 `json:"unreadEmails"`
	ReadEmails    int64 `json:"readEmails"`
	ReadRate      int   `json:"readRate"`
	TrashedEmails int64 `json:"trashedEmails"`
	TodayEmails   int64 `json:"todayEmails"`
	WeekEmails    int64 `json:"weekEmails"`
	DailyAverage  int   `json:"dailyAverage"`
}

// DashboardStats computes the dashboard counters. An empty table yields
// all zeroes rather than an error.
func (s *EmailStore) DashboardStats(userID uint) (*DashboardStats, error) {
	stats := &DashboardStats{}
	active := func() *gorm.DB {
		return s.db.Model(&models.Email{}).Where("user_id = ? AND is_trashed = ?", userID, false)
	}

	if err := active().Count(&stats.TotalEmails).Error; err != nil {
		return nil, err
	}
	if err := active().Where("read = ?", false).Count(&stats.UnreadEmails).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Email{}).
		Where("user_id = ? AND is_trashed = ?", userID, true).
		Count(&stats.TrashedEmails).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	todayStart := startOfDay(now)
	if err := active().Where("date >= ?", todayStart).Count(&stats.TodayEmails).Error; err != nil {
		return nil, err
	}
	if err := active().Where("date >= ?", startOfWeek(now)).Count(&stats.WeekEmails).Error; err != nil {
		return nil, err
	}

	stats.ReadEmails = stats.TotalEmails - stats.UnreadEmails
	if stats.TotalEmails > 0 {
		stats.ReadRate = int(math.Round(float64(stats.ReadEmails) / float64(stats.TotalEmails) * 100))
	}

	var weeklyCount int64
	if err := active().Where("date >= ?", todayStart.AddDate(0, 0, -7)).Count(&weeklyCount).Error; err != nil {
		return nil, err
	}
	stats.DailyAverage = int(math.Round(float64(weeklyCount) / 7))

	return stats, nil
}

// SenderCount is one row of the top-senders ranking.
type SenderCount struct {
	Sender string `json:"sender"`
	Count  int64  `json:"count"`
}

// HourCount is the email volume for one hour of day.
type HourCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// Analytics aggregates sender, weekday, age and hour breakdowns.
type Analytics struct {
	TopSenders   []SenderCount    `json:"topSenders"`
	EmailsByDay  map[string]int64 `json:"emailsByDay"`
	UnreadByAge  map[string]int64 `json:"unreadByAge"`
	EmailsByHour []HourCount      `json:"emailsByHour"`
}

// Analytics computes derived breakdowns over the user's active emails.
// Weekday and hour bucketing happens in Go so the queries stay portable
// across database engines.
func (s *EmailStore) Analytics(userID uint) (*Analytics, error) {
	analytics := &Analytics{
		TopSenders:   []SenderCount{},
		EmailsByDay:  map[string]int64{},
		UnreadByAge:  map[string]int64{"today": 0, "week": 0, "month": 0, "older": 0},
		EmailsByHour: []HourCount{},
	}

	rows := []struct {
		FromEmail string
		Count     int64
	}{}
	if err := s.db.Model(&models.Email{}).
		Select("from_email, COUNT(*) as count").
		Where("user_id = ? AND is_trashed = ?", userID, false).
		Group("from_email").
		Order("count DESC").
		Limit(10).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		analytics.TopSenders = append(analytics.TopSenders, SenderCount{Sender: row.FromEmail, Count: row.Count})
	}

	var emails []models.Email
	if err := s.db.
		Select("date", "read").
		Where("user_id = ? AND is_trashed = ?", userID, false).
		Find(&emails).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	todayStart := startOfDay(now)
	monthAgo := todayStart.AddDate(0, 0, -30)
	hourCounts := map[int]int64{}

	for _, e := range emails {
		analytics.EmailsByDay[e.Date.Format("Mon")]++

		if !e.Read {
			switch {
			case !e.Date.Before(todayStart):
				analytics.UnreadByAge["today"]++
			case !e.Date.Before(todayStart.AddDate(0, 0, -7)):
				analytics.UnreadByAge["week"]++
			case !e.Date.Before(monthAgo):
				analytics.UnreadByAge["month"]++
			default:
				analytics.UnreadByAge["older"]++
			}
		}

		if !e.Date.Before(monthAgo) {
			hourCounts[e.Date.Hour()]++
		}
	}

	for hour := 0; hour < 24; hour++ {
		if count, ok := hourCounts[hour]; ok {
			analytics.EmailsByHour = append(analytics.EmailsByHour, HourCount{Hour: hour, Count: count})
		}
	}

	return analytics, nil
}

// TrendPoint is one day of email volume with its read rate.
type TrendPoint struct {
	Date         string `json:"date"`
	TotalEmails  int64  `json:"totalEmails"`
	ReadEmails   int64  `json:"readEmails"`
	UnreadEmails int64  `json:"unreadEmails"`
	ReadRate     int    `json:"readRate"`
}

// Trends returns per-day counts over the last N days, newest first. Days
// without any email are omitted.
func (s *EmailStore) Trends(userID uint, days int) ([]TrendPoint, error) {
	trends := []TrendPoint{}
	todayStart := startOfDay(time.Now())

	for i := 0; i < days; i++ {
		dayStart := todayStart.AddDate(0, 0, -i)
		dayEnd := dayStart.AddDate(0, 0, 1)

		var total, read int64
		if err := s.db.Model(&models.Email{}).
			Where("user_id = ? AND is_trashed = ? AND date >= ? AND date < ?", userID, false, dayStart, dayEnd).
			Count(&total).Error; err != nil {
			return nil, err
		}
		if total == 0 {
			continue
		}
		if err := s.db.Model(&models.Email{}).
			Where("user_id = ? AND is_trashed = ? AND read = ? AND date >= ? AND date < ?", userID, false, true, dayStart, dayEnd).
			Count(&read).Error; err != nil {
			return nil, err
		}

		trends = append(trends, TrendPoint{
			Date:         dayStart.Format("2006-01-02"),
			TotalEmails:  total,
			ReadEmails:   read,
			UnreadEmails: total - read,
			ReadRate:     int(math.Round(float64(read) / float64(total) * 100)),
		})
	}

	return trends, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek truncates to the preceding Monday.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return day.AddDate(0, 0, -(weekday - 1))
}
