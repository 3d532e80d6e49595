// Package payment authorizes checkout charges through a closed set of payment
// methods. There is no external gateway: every valid amount is approved.
package payment

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Homd11/CAFESYSTEM/internal/domain/domainerr"
	"github.com/Homd11/CAFESYSTEM/internal/domain/money"
)

// Tag identifies a payment method.
type Tag string

const (
	TagCash       Tag = "CASH"
	TagVisa       Tag = "VISA"
	TagMasterCard Tag = "MASTERCARD"
)

// Tags returns every supported tag in display order.
func Tags() []Tag {
	return []Tag{TagCash, TagVisa, TagMasterCard}
}

// ParseTag parses a tag case-insensitively.
func ParseTag(s string) (Tag, error) {
	t := Tag(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Tags() {
		if t == known {
			return t, nil
		}
	}
	return "", errors.Wrapf(domainerr.Invalid("paymentMethod", "unsupported"), "parse %q", s)
}

// DisplayName returns the human-readable method name.
func (t Tag) DisplayName() string {
	switch t {
	case TagCash:
		return "Cash Payment"
	case TagVisa:
		return "Visa Card"
	case TagMasterCard:
		return "MasterCard"
	default:
		return string(t)
	}
}

// Confirmation describes an approved charge.
type Confirmation struct {
	Method            Tag
	Amount            money.Money
	TransactionID     string
	AuthorizationCode string
	Details           string
}

// Method authorizes a charge for one payment method.
type Method interface {
	Tag() Tag
	Name() string
	Validate(amount money.Money) bool
	Process(amount money.Money) (Confirmation, bool)
}

// validAmount is the business rule shared by all methods.
func validAmount(amount money.Money) bool {
	return amount.Currency() != "" && amount.IsPositive()
}

// Cash is paid at the counter and carries no reference.
type Cash struct{}

func (Cash) Tag() Tag     { return TagCash }
func (Cash) Name() string { return TagCash.DisplayName() }

func (Cash) Validate(amount money.Money) bool { return validAmount(amount) }

func (c Cash) Process(amount money.Money) (Confirmation, bool) {
	if !c.Validate(amount) {
		return Confirmation{}, false
	}
	return Confirmation{
		Method:  TagCash,
		Amount:  amount,
		Details: "Cash Payment: " + amount.String() + " - Paid in full",
	}, true
}

// Visa approves card charges with a generated transaction ID.
type Visa struct {
	newID func() string
}

// NewVisa returns a Visa method generating UUID based transaction IDs.
func NewVisa() *Visa {
	return &Visa{newID: func() string { return "VISA-" + uuid.NewString() }}
}

func (*Visa) Tag() Tag     { return TagVisa }
func (*Visa) Name() string { return TagVisa.DisplayName() }

func (*Visa) Validate(amount money.Money) bool { return validAmount(amount) }

func (v *Visa) Process(amount money.Money) (Confirmation, bool) {
	if !v.Validate(amount) {
		return Confirmation{}, false
	}
	id := v.newID()
	return Confirmation{
		Method:        TagVisa,
		Amount:        amount,
		TransactionID: id,
		Details:       "Visa Payment: " + amount.String() + " | Transaction ID: " + id,
	}, true
}

// MasterCard approves card charges with a generated authorization code.
type MasterCard struct {
	newCode func() string
}

// NewMasterCard returns a MasterCard method generating six character codes.
func NewMasterCard() *MasterCard {
	return &MasterCard{newCode: func() string {
		id := uuid.New()
		return "MC" + strings.ToUpper(id.String()[:6])
	}}
}

func (*MasterCard) Tag() Tag     { return TagMasterCard }
func (*MasterCard) Name() string { return TagMasterCard.DisplayName() }

func (*MasterCard) Validate(amount money.Money) bool { return validAmount(amount) }

func (m *MasterCard) Process(amount money.Money) (Confirmation, bool) {
	if !m.Validate(amount) {
		return Confirmation{}, false
	}
	code := m.newCode()
	return Confirmation{
		Method:            TagMasterCard,
		Amount:            amount,
		AuthorizationCode: code,
		Details:           "MasterCard Payment: " + amount.String() + " | Auth Code: " + code,
	}, true
}
