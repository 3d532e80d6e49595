package repository

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Homd11/CAFESYSTEM/internal/domain/domainerr"
	"github.com/Homd11/CAFESYSTEM/internal/domain/student"
)

var studentColumns = []string{"id", "student_code", "name", "account_id", "points"}

func TestStudentRepository_FindByID(t *testing.T) {
	mock := newMock(t)
	repo := NewStudentRepository(mock)

	mock.ExpectQuery("FROM students s JOIN loyalty_accounts a").
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(studentColumns).AddRow(int64(1), "S-1", "Mona", int64(10), 120))

	st, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "S-1", st.Code)
	assert.Equal(t, "Mona", st.Name)
	require.NotNil(t, st.Account)
	assert.Equal(t, int64(10), st.Account.ID())
	assert.Equal(t, 120, st.Account.Balance())
}

func TestStudentRepository_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewStudentRepository(mock)

	mock.ExpectQuery("FROM students").WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(studentColumns))
	_, err := repo.FindByID(context.Background(), 7)
	var nf *student.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(7), nf.ID)
	assert.ErrorIs(t, err, domainerr.ErrNotFound)

	mock.ExpectQuery("FROM students").WithArgs("S-404").
		WillReturnRows(pgxmock.NewRows(studentColumns))
	_, err = repo.FindByCode(context.Background(), "S-404")
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "S-404", nf.Code)

	mock.ExpectQuery("FROM students").WithArgs("S-1").WillReturnError(errors.New("timeout"))
	_, err = repo.FindByCode(context.Background(), "S-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domainerr.ErrNotFound)
}

func TestStudentRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := NewStudentRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO loyalty_accounts").WithArgs(50).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery("INSERT INTO students").WithArgs("S-3", "Omar", int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectCommit()

	st, err := repo.Create(context.Background(), "S-3", "Omar", 50)
	require.NoError(t, err)
	assert.Equal(t, int64(9), st.ID)
	assert.Equal(t, int64(3), st.Account.ID())
	assert.Equal(t, 50, st.Account.Balance())
}

func TestStudentRepository_CreateRollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewStudentRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO loyalty_accounts").WithArgs(0).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery("INSERT INTO students").WithArgs("S-3", "Omar", int64(3)).
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), "S-3", "Omar", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inserting student")

	_, err = repo.Create(context.Background(), "S-4", "Neg", -1)
	assert.ErrorIs(t, err, domainerr.ErrValidation)
}

func TestStudentRepository_Register(t *testing.T) {
	tests := []struct {
		name        string
		overwrite   bool
		setup       func(mock pgxmock.PgxPoolIface)
		wantCreated bool
	}{
		{
			name: "new code",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("WITH acc AS").WithArgs("S-1", "Mona").
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
			wantCreated: true,
		},
		{
			name: "existing code kept",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("WITH acc AS").WithArgs("S-1", "Mona").
					WillReturnResult(pgxmock.NewResult("INSERT", 0))
			},
		},
		{
			name:      "existing code renamed",
			overwrite: true,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("UPDATE students SET name").WithArgs("S-1", "Mona").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name:      "overwrite of new code inserts",
			overwrite: true,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("UPDATE students SET name").WithArgs("S-1", "Mona").
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				mock.ExpectExec("WITH acc AS").WithArgs("S-1", "Mona").
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
			wantCreated: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			tt.setup(mock)

			created, err := NewStudentRepository(mock).Register(context.Background(), "S-1", "Mona", tt.overwrite)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)
		})
	}
}
