package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"looma/models"
)

func testStore(t *testing.T) *EmailStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Email{}))

	return NewEmailStore(db)
}

func seedEmail(t *testing.T, s *EmailStore, emailID string, userID uint, date time.Time) {
	t.Helper()
	require.NoError(t, s.InsertIfAbsent(&models.Email{
		EmailID:   emailID,
		UserID:    userID,
		FromEmail: "sender@example.com",
		Subject:   "subject " + emailID,
		Summary:   "summary " + emailID,
		Date:      date,
	}))
}

func TestInsertIfAbsentIdempotent(t *testing.T) {
	s := testStore(t)

	first := &models.Email{EmailID: "m1", UserID: 7, Subject: "original", Date: time.Now()}
	require.NoError(t, s.InsertIfAbsent(first))

	dup := &models.Email{EmailID: "m1", UserID: 7, Subject: "replacement", Date: time.Now()}
	require.NoError(t, s.InsertIfAbsent(dup))

	emails, err := s.ListActive(7)
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "original", emails[0].Subject)
}

func TestListActiveExcludesTrashed(t *testing.T) {
	s := testStore(t)
	now := time.Now()
	seedEmail(t, s, "m1", 7, now.Add(-2*time.Hour))
	seedEmail(t, s, "m2", 7, now.Add(-1*time.Hour))
	seedEmail(t, s, "m3", 7, now)

	_, err := s.MoveToTrash("m2", 7)
	require.NoError(t, err)

	active, err := s.ListActive(7)
	require.NoError(t, err)
	require.Len(t, active, 2)
	for _, e := range active {
		assert.False(t, e.IsTrashed)
	}
	// Newest first
	assert.Equal(t, "m3", active[0].EmailID)
	assert.Equal(t, "m1", active[1].EmailID)

	trashed, err := s.ListTrashed(7)
	require.NoError(t, err)
	require.Len(t, trashed, 1)
	assert.True(t, trashed[0].IsTrashed)
	assert.Equal(t, "m2", trashed[0].EmailID)
}

func TestListActiveScopedByUser(t *testing.T) {
	s := testStore(t)
	seedEmail(t, s, "mine", 7, time.Now())
	seedEmail(t, s, "theirs", 8, time.Now())

	emails, err := s.ListActive(7)
	require.NoError(t, err)
	require.Len(t, emails, 1)
	assert.Equal(t, "mine", emails[0].EmailID)
}

func TestSetRead(t *testing.T) {
	s := testStore(t)
	seedEmail(t, s, "m1", 7, time.Now())

	affected, err := s.SetRead("m1", true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	emails, err := s.ListActive(7)
	require.NoError(t, err)
	assert.True(t, emails[0].Read)

	affected, err = s.SetRead("nope", true)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestTrashLifecycle(t *testing.T) {
	s := testStore(t)
	seedEmail(t, s, "m1", 7, time.Now())

	affected, err := s.MoveToTrash("m1", 7)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	trashed, err := s.ListTrashed(7)
	require.NoError(t, err)
	require.Len(t, trashed, 1)
	assert.True(t, trashed[0].IsTrashed)
	require.NotNil(t, trashed[0].DeletedDate)

	active, err := s.ListActive(7)
	require.NoError(t, err)
	assert.Empty(t, active)

	affected, err = s.Restore("m1", 7)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	active, err = s.ListActive(7)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.False(t, active[0].IsTrashed)
	assert.Nil(t, active[0].DeletedDate)
}

func TestMutationsScopedByOwner(t *testing.T) {
	s := testStore(t)
	seedEmail(t, s, "m1", 7, time.Now())

	// Wrong owner affects nothing, indistinguishable from missing id
	affected, err := s.MoveToTrash("m1", 99)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	affected, err = s.Restore("m1", 7)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected, "restore requires the row to be trashed")
}

func TestPermanentlyDeleteRequiresTrash(t *testing.T) {
	s := testStore(t)
	seedEmail(t, s, "m1", 7, time.Now())

	affected, err := s.PermanentlyDelete("m1", 7)
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)

	_, err = s.MoveToTrash("m1", 7)
	require.NoError(t, err)

	affected, err = s.PermanentlyDelete("m1", 7)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	trashed, err := s.ListTrashed(7)
	require.NoError(t, err)
	assert.Empty(t, trashed)
}

func TestEmptyTrash(t *testing.T) {
	s := testStore(t)
	seedEmail(t, s, "m1", 7, time.Now())
	seedEmail(t, s, "m2", 7, time.Now())
	seedEmail(t, s, "m3", 7, time.Now())

	_, err := s.MoveToTrash("m1", 7)
	require.NoError(t, err)
	_, err = s.MoveToTrash("m2", 7)
	require.NoError(t, err)

	deleted, err := s.EmptyTrash(7)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	active, err := s.ListActive(7)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestDashboardStatsEmptyTable(t *testing.T) {
	s := testStore(t)

	stats, err := s.DashboardStats(7)
	require.NoError(t, err)

	assert.Zero(t, stats.TotalEmails)
	assert.Zero(t, stats.UnreadEmails)
	assert.Zero(t, stats.ReadEmails)
	assert.Zero(t, stats.ReadRate)
	assert.Zero(t, stats.TrashedEmails)
	assert.Zero(t, stats.TodayEmails)
	assert.Zero(t, stats.WeekEmails)
	assert.Zero(t, stats.DailyAverage)
}

func TestDashboardStatsCounts(t *testing.T) {
	s := testStore(t)
	now := time.Now()
	seedEmail(t, s, "today1", 7, now)
	seedEmail(t, s, "today2", 7, now)
	seedEmail(t, s, "old", 7, now.AddDate(0, 0, -40))
	seedEmail(t, s, "trashme", 7, now)

	_, err := s.SetRead("today1", true)
	require.NoError(t, err)
	_, err = s.MoveToTrash("trashme", 7)
	require.NoError(t, err)

	stats, err := s.DashboardStats(7)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TotalEmails)
	assert.EqualValues(t, 2, stats.UnreadEmails)
	assert.EqualValues(t, 1, stats.ReadEmails)
	assert.Equal(t, 33, stats.ReadRate)
	assert.EqualValues(t, 1, stats.TrashedEmails)
	assert.EqualValues(t, 2, stats.TodayEmails)
}

func TestAnalyticsBuckets(t *testing.T) {
	s := testStore(t)
	now := time.Now()
	seedEmail(t, s, "m1", 7, now)
	seedEmail(t, s, "m2", 7, now)
	require.NoError(t, s.InsertIfAbsent(&models.Email{
		EmailID: "m3", UserID: 7, FromEmail: "other@example.com", Date: now.AddDate(0, 0, -60),
	}))

	analytics, err := s.Analytics(7)
	require.NoError(t, err)

	require.NotEmpty(t, analytics.TopSenders)
	assert.Equal(t, "sender@example.com", analytics.TopSenders[0].Sender)
	assert.EqualValues(t, 2, analytics.TopSenders[0].Count)

	assert.EqualValues(t, 2, analytics.UnreadByAge["today"])
	assert.EqualValues(t, 1, analytics.UnreadByAge["older"])

	var hourTotal int64
	for _, h := range analytics.EmailsByHour {
		hourTotal += h.Count
	}
	// Only the last 30 days feed the hourly histogram
	assert.EqualValues(t, 2, hourTotal)
}

func TestTrends(t *testing.T) {
	s := testStore(t)
	now := time.Now()
	seedEmail(t, s, "t1", 7, now)
	seedEmail(t, s, "t2", 7, now)
	seedEmail(t, s, "y1", 7, now.AddDate(0, 0, -1))

	_, err := s.SetRead("t1", true)
	require.NoError(t, err)

	trends, err := s.Trends(7, 7)
	require.NoError(t, err)

	require.Len(t, trends, 2)
	today := trends[0]
	assert.EqualValues(t, 2, today.TotalEmails)
	assert.EqualValues(t, 1, today.ReadEmails)
	assert.EqualValues(t, 1, today.UnreadEmails)
	assert.Equal(t, 50, today.ReadRate)

	yesterday := trends[1]
	assert.EqualValues(t, 1, yesterday.TotalEmails)
	assert.Zero(t, yesterday.ReadEmails)
}
