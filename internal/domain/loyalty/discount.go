package loyalty

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Discount is a redeemed amount waiting to be applied to the student's next
// order. It is never persisted.
type Discount struct {
	Amount      decimal.Decimal
	Description string
}

// DiscountStore holds pending discounts per student.
type DiscountStore interface {
	Add(studentID int64, d Discount)
	Pending(studentID int64) []Discount
	// Take returns all pending discounts for the student and clears them in
	// one step.
	Take(studentID int64) []Discount
	Clear(studentID int64)
}

var _ DiscountStore = (*MemoryDiscountStore)(nil)

// MemoryDiscountStore is an in-process DiscountStore. Discounts are lost on
// restart, matching their "consumed on next order" lifetime.
type MemoryDiscountStore struct {
	mu        sync.Mutex
	discounts map[int64][]Discount
}

// NewMemoryDiscountStore returns an empty store.
func NewMemoryDiscountStore() *MemoryDiscountStore {
	return &MemoryDiscountStore{discounts: make(map[int64][]Discount)}
}

func (s *MemoryDiscountStore) Add(studentID int64, d Discount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discounts[studentID] = append(s.discounts[studentID], d)
}

func (s *MemoryDiscountStore) Pending(studentID int64) []Discount {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.discounts[studentID]
	out := make([]Discount, len(pending))
	copy(out, pending)
	return out
}

func (s *MemoryDiscountStore) Take(studentID int64) []Discount {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := s.discounts[studentID]
	delete(s.discounts, studentID)
	return pending
}

func (s *MemoryDiscountStore) Clear(studentID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.discounts, studentID)
}

// Total sums the discount amounts.
func Total(discounts []Discount) decimal.Decimal {
	total := decimal.Zero
	for _, d := range discounts {
		total = total.Add(d.Amount)
	}
	return total
}
