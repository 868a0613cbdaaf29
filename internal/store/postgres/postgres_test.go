package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/domain/department"
)

func TestInsertErr(t *testing.T) {
	dept := &department.Department{}

	tests := []struct {
		name      string
		err       error
		duplicate error
		want      error
	}{
		{"success", nil, department.ErrNameTaken, nil},
		{"translated duplicate", gorm.ErrDuplicatedKey, department.ErrNameTaken, department.ErrNameTaken},
		{"wrapped duplicate", fmt.Errorf("exec: %w", gorm.ErrDuplicatedKey), domain.ErrUsernameTaken, domain.ErrUsernameTaken},
		{"raw unique violation", &pgconn.PgError{Code: "23505"}, domain.ErrUsernameTaken, domain.ErrUsernameTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := insertErr(tt.err, dept, tt.duplicate)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, err)
		})
	}

	t.Run("duplicate without sentinel is wrapped", func(t *testing.T) {
		err := insertErr(gorm.ErrDuplicatedKey, dept, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
		assert.Contains(t, err.Error(), "inserting *department.Department")
	})

	t.Run("other constraint is wrapped", func(t *testing.T) {
		fk := &pgconn.PgError{Code: "23503"}
		err := insertErr(fk, dept, department.ErrNameTaken)
		assert.NotErrorIs(t, err, department.ErrNameTaken)
		var pgErr *pgconn.PgError
		require.ErrorAs(t, err, &pgErr)
		assert.Equal(t, "23503", pgErr.Code)
	})
}

func TestLoadErr(t *testing.T) {
	var dept department.Department

	assert.NoError(t, loadErr(nil, dept, department.ErrDepartmentNotFound))
	assert.Equal(t, department.ErrDepartmentNotFound, loadErr(gorm.ErrRecordNotFound, dept, department.ErrDepartmentNotFound))
	assert.Equal(t, department.ErrDepartmentNotFound,
		loadErr(fmt.Errorf("query: %w", gorm.ErrRecordNotFound), dept, department.ErrDepartmentNotFound))

	err := loadErr(context.DeadlineExceeded, dept, department.ErrDepartmentNotFound)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, errors.Is(err, department.ErrDepartmentNotFound))
	assert.Contains(t, err.Error(), "loading department.Department")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: uniqueViolation})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23502"}))
	assert.False(t, isUniqueViolation(gorm.ErrRecordNotFound))
	assert.False(t, isUniqueViolation(errors.New("unique")))
}
