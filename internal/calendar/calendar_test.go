package calendar

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeHolidayFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadsHolidaysFromCSV(t *testing.T) {
	dir := t.TempDir()
	writeHolidayFile(t, dir, "holidays.csv", `Subject,Start Date,All Day Event
元日,2025/1/1,True
成人の日,2025/1/13,True

,2025/2/11,True
建国記念の日,not-a-date,True
short-row
`)

	s := New(dir)
	require.Equal(t, 2, s.HolidayCount())
	require.True(t, s.IsHoliday(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))
	require.True(t, s.IsHoliday(time.Date(2025, time.January, 13, 0, 0, 0, 0, time.UTC)))
	require.False(t, s.IsHoliday(time.Date(2025, time.February, 11, 0, 0, 0, 0, time.UTC)))
}

func TestClassifyPrecedence(t *testing.T) {
	dir := t.TempDir()
	// 2025-01-13 is a Monday holiday, 2025-01-11 a plain Saturday.
	writeHolidayFile(t, dir, "holidays.csv", "Subject,Start Date\n成人の日,2025/1/13\n山の日,2025/8/10\n")

	s := New(dir)
	require.Equal(t, DayTypeHoliday, s.Classify(time.Date(2025, time.January, 13, 0, 0, 0, 0, time.UTC)))
	// A holiday landing on a Sunday still classifies as holiday.
	require.Equal(t, DayTypeHoliday, s.Classify(time.Date(2025, time.August, 10, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, DayTypeWeekend, s.Classify(time.Date(2025, time.January, 11, 0, 0, 0, 0, time.UTC)))
	require.Equal(t, DayTypeWorkday, s.Classify(time.Date(2025, time.January, 14, 0, 0, 0, 0, time.UTC)))
}

func TestMissingDirectoryIsTolerated(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Equal(t, 0, s.HolidayCount())
	require.Equal(t, DayTypeWorkday, s.Classify(time.Date(2025, time.January, 14, 0, 0, 0, 0, time.UTC)))
}

func TestIgnoresNonCSVFiles(t *testing.T) {
	dir := t.TempDir()
	writeHolidayFile(t, dir, "notes.txt", "Subject,Start Date\n元日,2025/1/1\n")

	s := New(dir)
	require.Equal(t, 0, s.HolidayCount())
}

func TestParseSlashDate(t *testing.T) {
	parsed, err := parseSlashDate("2025/1/5")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC), parsed)

	parsed, err = parseSlashDate("2025/12/31")
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), parsed)

	for _, bad := range []string{"2025-01-05", "2025/13/1", "2025/0/1", "2025/1/32", "2025/1", "x/1/2"} {
		_, err := parseSlashDate(bad)
		require.Error(t, err, bad)
	}
}
