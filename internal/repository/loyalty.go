package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/Homd11/CAFESYSTEM/internal/domain/domainerr"
	"github.com/Homd11/CAFESYSTEM/internal/domain/loyalty"
	"github.com/Homd11/CAFESYSTEM/internal/domain/student"
)

const (
	addPointsSQL = `UPDATE loyalty_accounts SET points = points + $2 WHERE id = $1`

	// The balance guard makes concurrent redemptions against one account
	// serialize on the row; the loser affects zero rows.
	deductPointsSQL = `UPDATE loyalty_accounts SET points = points - $2
		WHERE id = $1 AND points >= $2`

	getPointsSQL = `SELECT points FROM loyalty_accounts WHERE id = $1`
)

var _ loyalty.AccountRepository = (*LoyaltyRepository)(nil)

// LoyaltyRepository implements loyalty.AccountRepository backed by PostgreSQL.
type LoyaltyRepository struct {
	db DB
}

// NewLoyaltyRepository returns a LoyaltyRepository that uses the given connection.
func NewLoyaltyRepository(db DB) *LoyaltyRepository {
	return &LoyaltyRepository{db: db}
}

// AddPoints credits points to the account.
func (r *LoyaltyRepository) AddPoints(ctx context.Context, accountID int64, points int) error {
	if points < 0 {
		return domainerr.Invalid("points", "cannot be negative")
	}
	tag, err := r.db.Exec(ctx, addPointsSQL, accountID, points)
	if err != nil {
		return fmt.Errorf("adding points to account %d: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loyalty account %d: %w", accountID, domainerr.ErrNotFound)
	}
	return nil
}

// DeductPoints debits points only if the stored balance covers them.
func (r *LoyaltyRepository) DeductPoints(ctx context.Context, accountID int64, points int) error {
	tag, err := r.db.Exec(ctx, deductPointsSQL, accountID, points)
	if err != nil {
		return fmt.Errorf("deducting points from account %d: %w", accountID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	available, err := r.Balance(ctx, accountID)
	if err != nil {
		return err
	}
	return &student.InsufficientPointsError{Available: available, Required: points}
}

// Balance returns the stored points of the account.
func (r *LoyaltyRepository) Balance(ctx context.Context, accountID int64) (int, error) {
	var points int
	err := r.db.QueryRow(ctx, getPointsSQL, accountID).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("loyalty account %d: %w", accountID, domainerr.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("getting points of account %d: %w", accountID, err)
	}
	return points, nil
}
