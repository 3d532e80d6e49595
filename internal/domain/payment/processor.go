package payment

import (
	"context"
	"sync"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/Homd11/CAFESYSTEM/internal/domain/money"
)

// Processor dispatches authorization to the registered Method for a tag.
type Processor struct {
	methods map[Tag]Method

	mu   sync.Mutex
	last *Confirmation
}

// NewProcessor returns a Processor with Cash, Visa and MasterCard registered.
func NewProcessor() *Processor {
	return newProcessor(Cash{}, NewVisa(), NewMasterCard())
}

func newProcessor(methods ...Method) *Processor {
	p := &Processor{methods: make(map[Tag]Method, len(methods))}
	for _, m := range methods {
		p.methods[m.Tag()] = m
	}
	return p
}

// Methods lists the supported tags.
func (p *Processor) Methods() []Tag {
	var tags []Tag
	for _, t := range Tags() {
		if _, ok := p.methods[t]; ok {
			tags = append(tags, t)
		}
	}
	return tags
}

// Authorize charges amount with the method registered for tag. It fails closed:
// an unknown tag or an invalid amount returns false with no confirmation.
func (p *Processor) Authorize(ctx context.Context, amount money.Money, tag Tag) (Confirmation, bool) {
	lg := zctx.From(ctx)

	m, ok := p.methods[tag]
	if !ok {
		lg.Warn("Unsupported payment method", zap.String("method", string(tag)))
		return Confirmation{}, false
	}
	if !m.Validate(amount) {
		lg.Warn("Payment validation failed",
			zap.String("method", string(tag)),
			zap.Stringer("amount", amount),
		)
		return Confirmation{}, false
	}

	c, ok := m.Process(amount)
	if !ok {
		return Confirmation{}, false
	}

	p.mu.Lock()
	p.last = &c
	p.mu.Unlock()

	lg.Info("Payment authorized",
		zap.String("method", string(tag)),
		zap.Stringer("amount", amount),
	)
	return c, true
}

// Last returns the most recent successful confirmation.
func (p *Processor) Last() (Confirmation, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return Confirmation{}, false
	}
	return *p.last, true
}

// Receipt returns the last confirmation's details for display.
func (p *Processor) Receipt() string {
	if c, ok := p.Last(); ok {
		return c.Details
	}
	return "No payment processed"
}
