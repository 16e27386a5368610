package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockedRepo(t *testing.T) (TaskRepository, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewTaskRepository(db), mock
}

func TestPauseActiveChildrenSkipsCompletedStates(t *testing.T) {
	repo, mock := newMockedRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `tasks` SET `status`=.+ WHERE parent_task_id = \\? AND status NOT IN \\(\\?,\\?\\)").
		WithArgs(4, sqlmock.AnyArg(), "parent-1", 2, 6).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	affected, err := repo.PauseActiveChildren("parent-1")
	require.NoError(t, err)
	require.Equal(t, int64(3), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteActiveChildrenSkipsCompletedStates(t *testing.T) {
	repo, mock := newMockedRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `tasks` WHERE parent_task_id = \\? AND status NOT IN \\(\\?,\\?\\)").
		WithArgs("parent-1", 2, 6).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	affected, err := repo.DeleteActiveChildren("parent-1")
	require.NoError(t, err)
	require.Equal(t, int64(2), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestCancellation(t *testing.T) {
	repo, mock := newMockedRepo(t)

	stamp := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT MAX\\(last_cancelled_at\\) FROM `tasks` WHERE user_id = \\? AND last_cancelled_at IS NOT NULL").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(stamp))

	latest, err := repo.LatestCancellation("user-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	require.True(t, latest.Equal(stamp))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestCancellationWithoutHistory(t *testing.T) {
	repo, mock := newMockedRepo(t)

	mock.ExpectQuery("SELECT MAX\\(last_cancelled_at\\) FROM `tasks`").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

	latest, err := repo.LatestCancellation("user-1")
	require.NoError(t, err)
	require.Nil(t, latest)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountCompletedWithSkillTagQuotesTheTag(t *testing.T) {
	repo, mock := newMockedRepo(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `tasks`").
		WithArgs("user-1", 2, 6, `%"learning"%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.CountCompletedWithSkillTag("user-1", "learning")
	require.NoError(t, err)
	require.Equal(t, int64(4), count)
	require.NoError(t, mock.ExpectationsWereMet())
}
