package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ds124wfegd/learnlink/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonRepository_Delete(t *testing.T) {
	tests := []struct {
		name      string
		published bool
		deleted   int64
		remaining int
		wantErr   error
	}{
		{name: "missing lesson on published course", published: true, deleted: 0, wantErr: entity.ErrLessonNotFound},
		{name: "last lesson of published course", published: true, deleted: 1, remaining: 0, wantErr: entity.ErrLastLesson},
		{name: "published course keeps a lesson", published: true, deleted: 1, remaining: 2},
		{name: "draft course may drop its last lesson", published: false, deleted: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta("SELECT published FROM courses WHERE id = $1 FOR UPDATE")).
				WithArgs(int64(5)).
				WillReturnRows(sqlmock.NewRows([]string{"published"}).AddRow(tt.published))
			mock.ExpectExec(regexp.QuoteMeta("DELETE FROM lessons WHERE id = $1 AND course_id = $2")).
				WithArgs(int64(9), int64(5)).
				WillReturnResult(sqlmock.NewResult(0, tt.deleted))
			if tt.published && tt.deleted > 0 {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM lessons WHERE course_id = $1")).
					WithArgs(int64(5)).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(tt.remaining))
			}
			if tt.wantErr != nil {
				mock.ExpectRollback()
			} else {
				mock.ExpectCommit()
			}

			err = NewLessonRepository(db).Delete(context.Background(), 5, 9)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
