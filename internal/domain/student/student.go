// Package student models a cafeteria customer and the loyalty account they own.
package student

import (
	"context"
	"fmt"

	"github.com/Homd11/CAFESYSTEM/internal/domain/domainerr"
)

// Student is a registered cafeteria customer. Every student owns exactly one
// loyalty account.
type Student struct {
	ID      int64
	Code    string
	Name    string
	Account *Account
}

// Account is a student's loyalty points ledger. Points never go negative.
type Account struct {
	id     int64
	points int
}

// NewAccount restores an account with the given balance.
func NewAccount(id int64, points int) (*Account, error) {
	if points < 0 {
		return nil, domainerr.Invalid("points", "cannot be negative")
	}
	return &Account{id: id, points: points}, nil
}

// ID returns the account identifier.
func (a *Account) ID() int64 { return a.id }

// Balance returns the current points.
func (a *Account) Balance() int { return a.points }

// Add credits points to the account.
func (a *Account) Add(points int) error {
	if points < 0 {
		return domainerr.Invalid("points", "cannot be negative")
	}
	a.points += points
	return nil
}

// Deduct debits points. It fails without changing the balance when points
// exceed the balance.
func (a *Account) Deduct(points int) error {
	if points < 0 {
		return domainerr.Invalid("points", "cannot be negative")
	}
	if points > a.points {
		return &InsufficientPointsError{Available: a.points, Required: points}
	}
	a.points -= points
	return nil
}

// InsufficientPointsError reports a deduction larger than the balance.
type InsufficientPointsError struct {
	Available int
	Required  int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: available %d, required %d", e.Available, e.Required)
}

func (e *InsufficientPointsError) Unwrap() error { return domainerr.ErrInsufficientPoints }

// NotFoundError indicates an unknown student.
type NotFoundError struct {
	ID   int64
	Code string
}

func (e *NotFoundError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("student %q not found", e.Code)
	}
	return fmt.Sprintf("student %d not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return domainerr.ErrNotFound }

// Repository loads students together with their loyalty account.
type Repository interface {
	FindByID(ctx context.Context, id int64) (*Student, error)
	FindByCode(ctx context.Context, code string) (*Student, error)
}
