package loyalty

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMemoryDiscountStore_PendingIsCopy(t *testing.T) {
	s := NewMemoryDiscountStore()
	s.Add(1, Discount{Amount: decimal.NewFromInt(2), Description: "a"})

	pending := s.Pending(1)
	pending[0].Amount = decimal.NewFromInt(99)

	assert.True(t, decimal.NewFromInt(2).Equal(s.Pending(1)[0].Amount))
}

func TestMemoryDiscountStore_Take(t *testing.T) {
	s := NewMemoryDiscountStore()
	s.Add(1, Discount{Amount: decimal.NewFromInt(2)})
	s.Add(1, Discount{Amount: decimal.NewFromInt(3)})

	taken := s.Take(1)
	assert.Len(t, taken, 2)
	assert.Empty(t, s.Take(1))
	assert.Empty(t, s.Pending(1))
}

func TestMemoryDiscountStore_Clear(t *testing.T) {
	s := NewMemoryDiscountStore()
	s.Add(1, Discount{Amount: decimal.NewFromInt(2)})
	s.Add(2, Discount{Amount: decimal.NewFromInt(3)})

	s.Clear(1)
	assert.Empty(t, s.Pending(1))
	assert.Len(t, s.Pending(2), 1)
}

func TestMemoryDiscountStore_ConcurrentTakeConsumesOnce(t *testing.T) {
	s := NewMemoryDiscountStore()
	for range 100 {
		s.Add(1, Discount{Amount: decimal.NewFromInt(1)})
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := len(s.Take(1))
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, total)
}
