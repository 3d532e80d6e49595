// Package loyalty implements the points ledger operations: awarding points for
// paid orders and redeeming points into pending discounts.
package loyalty

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/Homd11/CAFESYSTEM/internal/domain/domainerr"
	"github.com/Homd11/CAFESYSTEM/internal/domain/money"
	"github.com/Homd11/CAFESYSTEM/internal/domain/student"
)

// PointsPerDiscountUnit is the number of points exchanged for one currency
// unit of discount.
const PointsPerDiscountUnit = 10

// AccountRepository persists loyalty balance changes. DeductPoints must be
// conditional on the stored balance and return an error matching
// domainerr.ErrInsufficientPoints when it would go negative.
type AccountRepository interface {
	AddPoints(ctx context.Context, accountID int64, points int) error
	DeductPoints(ctx context.Context, accountID int64, points int) error
}

// Program awards and redeems loyalty points.
type Program struct {
	accounts  AccountRepository
	discounts DiscountStore
}

// NewProgram creates a Program backed by the given account repository and
// pending discount store.
func NewProgram(accounts AccountRepository, discounts DiscountStore) *Program {
	return &Program{accounts: accounts, discounts: discounts}
}

// Balance returns the student's current points, or 0 when unknown.
func (p *Program) Balance(st *student.Student) int {
	if st == nil || st.Account == nil {
		return 0
	}
	return st.Account.Balance()
}

// Award credits one point per whole currency unit paid. A payment below one
// unit awards nothing. It returns the number of points awarded.
func (p *Program) Award(ctx context.Context, st *student.Student, paid money.Money) (int, error) {
	if err := checkStudent(st); err != nil {
		return 0, err
	}
	points := int(paid.Floor())
	if points == 0 {
		return 0, nil
	}
	if err := p.accounts.AddPoints(ctx, st.Account.ID(), points); err != nil {
		return 0, domainerr.Persistence(err, "award points")
	}
	if err := st.Account.Add(points); err != nil {
		return 0, err
	}
	return points, nil
}

// Redeem converts points into a Discount at PointsPerDiscountUnit points per
// unit. The points are deducted immediately; the discount is parked in the
// pending store until the next checkout consumes it.
func (p *Program) Redeem(ctx context.Context, st *student.Student, points int) (Discount, error) {
	if err := checkStudent(st); err != nil {
		return Discount{}, err
	}
	if points <= 0 {
		return Discount{}, domainerr.Invalid("points", "must be greater than 0")
	}
	if err := st.Account.Deduct(points); err != nil {
		return Discount{}, err
	}
	if err := p.accounts.DeductPoints(ctx, st.Account.ID(), points); err != nil {
		// Restore the in-memory balance; the stored one was not changed.
		_ = st.Account.Add(points)
		if errors.Is(err, domainerr.ErrInsufficientPoints) {
			return Discount{}, err
		}
		return Discount{}, domainerr.Persistence(err, "redeem points")
	}

	d := Discount{
		Amount:      DiscountValue(points),
		Description: fmt.Sprintf("Loyalty points redemption: %d points", points),
	}
	p.discounts.Add(st.ID, d)
	return d, nil
}

// PendingTotal sums the student's pending discounts without consuming them.
func (p *Program) PendingTotal(studentID int64) decimal.Decimal {
	return Total(p.discounts.Pending(studentID))
}

// TakePending removes and returns every pending discount for the student in
// one step. Discounts redeemed afterwards stay pending for a later order.
func (p *Program) TakePending(studentID int64) []Discount {
	return p.discounts.Take(studentID)
}

// Restore puts discounts taken by TakePending back, for a checkout that did
// not go through.
func (p *Program) Restore(studentID int64, discounts []Discount) {
	for _, d := range discounts {
		p.discounts.Add(studentID, d)
	}
}

// ApplyDiscounts consumes every pending discount for the student and returns
// max(0, gross - total discount).
func (p *Program) ApplyDiscounts(studentID int64, gross money.Money) money.Money {
	return gross.SubFloor(Total(p.TakePending(studentID)))
}

// DiscountValue returns the discount amount worth points.
func DiscountValue(points int) decimal.Decimal {
	return decimal.NewFromInt(int64(points)).Div(decimal.NewFromInt(PointsPerDiscountUnit))
}

func checkStudent(st *student.Student) error {
	if st == nil {
		return domainerr.Invalid("student", "required")
	}
	if st.Account == nil {
		return domainerr.Invalid("student.account", "required")
	}
	return nil
}
