package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/Homd11/CAFESYSTEM/internal/domain/student"
)

const (
	selectStudentSQL = `SELECT s.id, s.student_code, s.name, a.id, a.points
		FROM students s JOIN loyalty_accounts a ON a.id = s.loyalty_account_id`

	getStudentByIDSQL   = selectStudentSQL + ` WHERE s.id = $1`
	getStudentByCodeSQL = selectStudentSQL + ` WHERE s.student_code = $1`

	insertAccountSQL = `INSERT INTO loyalty_accounts (points) VALUES ($1) RETURNING id`

	insertStudentSQL = `INSERT INTO students (student_code, name, loyalty_account_id)
		VALUES ($1, $2, $3) RETURNING id`

	renameStudentSQL = `UPDATE students SET name = $2 WHERE student_code = $1`

	// Creates the account only when the code is new, so a conflict never
	// leaves an orphan account behind.
	insertStudentIfAbsentSQL = `WITH acc AS (
			INSERT INTO loyalty_accounts (points)
			SELECT 0 WHERE NOT EXISTS (SELECT 1 FROM students WHERE student_code = $1)
			RETURNING id
		)
		INSERT INTO students (student_code, name, loyalty_account_id)
		SELECT $1, $2, id FROM acc
		ON CONFLICT (student_code) DO NOTHING`
)

var _ student.Repository = (*StudentRepository)(nil)

// StudentRepository implements student.Repository backed by PostgreSQL.
type StudentRepository struct {
	db DB
}

// NewStudentRepository returns a StudentRepository that uses the given connection.
func NewStudentRepository(db DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns the student with its loyalty account.
func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*student.Student, error) {
	st, err := r.findOne(ctx, getStudentByIDSQL, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &student.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("getting student %d: %w", id, err)
	}
	return st, nil
}

// FindByCode returns the student registered under code.
func (r *StudentRepository) FindByCode(ctx context.Context, code string) (*student.Student, error) {
	st, err := r.findOne(ctx, getStudentByCodeSQL, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &student.NotFoundError{Code: code}
	}
	if err != nil {
		return nil, fmt.Errorf("getting student %q: %w", code, err)
	}
	return st, nil
}

func (r *StudentRepository) findOne(ctx context.Context, sql string, arg any) (*student.Student, error) {
	rows, err := r.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, scanStudent)
}

// Create registers a student with a fresh loyalty account holding points.
func (r *StudentRepository) Create(ctx context.Context, code, name string, points int) (*student.Student, error) {
	if _, err := student.NewAccount(0, points); err != nil {
		return nil, err
	}

	st := &student.Student{Code: code, Name: name}
	err := withinTx(ctx, r.db, func(tx pgx.Tx) error {
		var accountID int64
		if err := tx.QueryRow(ctx, insertAccountSQL, points).Scan(&accountID); err != nil {
			return fmt.Errorf("inserting loyalty account: %w", err)
		}
		if err := tx.QueryRow(ctx, insertStudentSQL, code, name, accountID).Scan(&st.ID); err != nil {
			return fmt.Errorf("inserting student: %w", err)
		}
		acc, err := student.NewAccount(accountID, points)
		if err != nil {
			return err
		}
		st.Account = acc
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating student %q: %w", code, err)
	}
	return st, nil
}

// Register adds a roster entry. An existing student is renamed when
// overwrite is set and left untouched otherwise. It reports whether a new
// student was created.
func (r *StudentRepository) Register(ctx context.Context, code, name string, overwrite bool) (bool, error) {
	if overwrite {
		tag, err := r.db.Exec(ctx, renameStudentSQL, code, name)
		if err != nil {
			return false, fmt.Errorf("renaming student %q: %w", code, err)
		}
		if tag.RowsAffected() > 0 {
			return false, nil
		}
	}
	tag, err := r.db.Exec(ctx, insertStudentIfAbsentSQL, code, name)
	if err != nil {
		return false, fmt.Errorf("registering student %q: %w", code, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanStudent(row pgx.CollectableRow) (*student.Student, error) {
	var (
		st        student.Student
		accountID int64
		points    int
	)
	if err := row.Scan(&st.ID, &st.Code, &st.Name, &accountID, &points); err != nil {
		return nil, err
	}
	acc, err := student.NewAccount(accountID, points)
	if err != nil {
		return nil, err
	}
	st.Account = acc
	return &st, nil
}
