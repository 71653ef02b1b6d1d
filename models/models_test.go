package models

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestReadingMinutesFor(t *testing.T) {
	tests := []struct {
		name  string
		words int
		want  int
	}{
		{"empty", 0, 1},
		{"short", 50, 1},
		{"exactly one minute", 200, 1},
		{"just over", 201, 2},
		{"long", 1000, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.TrimSpace(strings.Repeat("word ", tt.words))
			assert.Equal(t, tt.want, ReadingMinutesFor(content))
		})
	}
}

func TestValidPostStatus(t *testing.T) {
	for _, status := range []string{PostStatusDraft, PostStatusPending, PostStatusPublished, PostStatusRejected} {
		assert.True(t, ValidPostStatus(status), status)
	}
	assert.False(t, ValidPostStatus("archived"))
	assert.False(t, ValidPostStatus(""))
}

func TestSessionExpired(t *testing.T) {
	now := time.Now()
	s := Session{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, s.Expired(now))
	assert.True(t, s.Expired(now.Add(time.Minute)))
}

func TestRoles(t *testing.T) {
	assert.True(t, User{Role: RoleAdmin}.IsAdmin())
	assert.False(t, User{Role: RoleEditor}.IsAdmin())
	assert.True(t, ValidRole(RoleEditor))
	assert.False(t, ValidRole("owner"))
}

func TestFindColumnMismatches(t *testing.T) {
	got := findColumnMismatches([]string{"id", "Title", "legacy_author"}, []string{"id", "title"})

	assert.Equal(t, []string{"legacy_author"}, got)
}

func TestColumnDrift(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	report, err := ColumnDrift(db)
	require.NoError(t, err)
	require.Len(t, report, len(All()))
	for _, table := range report {
		assert.True(t, table.Missing, table.Table)
	}

	require.NoError(t, Migrate(db))
	require.NoError(t, db.Exec("ALTER TABLE tags ADD COLUMN legacy_color TEXT").Error)

	var out bytes.Buffer
	total, err := WriteColumnReport(db, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	assert.Contains(t, out.String(), "tags: legacy_color")
	assert.Contains(t, out.String(), "users: ok")
}
