// Package storage combines the durable and in-memory lead stores behind a
// one-way failover: the first durable-store failure switches the process to
// the memory store for good, and the failing call is replayed there so it
// still succeeds.
package storage

import (
	"context"
	"errors"
	"sync/atomic"

	leadqual "github.com/leadqual/leadqual"
	"github.com/leadqual/leadqual/pkg/metrics"
	"go.uber.org/zap"
)

// Mode identifies which store serves operations.
type Mode int32

const (
	ModeDurable Mode = iota
	ModeMemory
)

func (m Mode) String() string {
	if m == ModeMemory {
		return "memory"
	}
	return "durable"
}

// Failover implements leadqual.Store over a durable store with a permanent
// in-memory fallback.
type Failover struct {
	durable leadqual.Store
	memory  leadqual.Store
	mode    atomic.Int32
	log     *zap.SugaredLogger
}

// NewFailover starts in durable mode unless startInMemory is set.
func NewFailover(durable, memory leadqual.Store, startInMemory bool, log *zap.SugaredLogger) *Failover {
	f := &Failover{
		durable: durable,
		memory:  memory,
		log:     log,
	}
	if startInMemory || durable == nil {
		f.mode.Store(int32(ModeMemory))
	}
	return f
}

// Mode reports the store currently serving operations.
func (f *Failover) Mode() Mode {
	return Mode(f.mode.Load())
}

func (f *Failover) GetAll(ctx context.Context) ([]leadqual.Lead, error) {
	if f.Mode() == ModeMemory {
		return f.memory.GetAll(ctx)
	}
	leads, err := f.durable.GetAll(ctx)
	if err != nil && f.tripped("GetAll", err) {
		return f.memory.GetAll(ctx)
	}
	return leads, err
}

func (f *Failover) FindByEmail(ctx context.Context, email string) (leadqual.Lead, error) {
	if f.Mode() == ModeMemory {
		return f.memory.FindByEmail(ctx, email)
	}
	lead, err := f.durable.FindByEmail(ctx, email)
	if err != nil && f.tripped("FindByEmail", err) {
		return f.memory.FindByEmail(ctx, email)
	}
	return lead, err
}

func (f *Failover) Create(ctx context.Context, lead leadqual.Lead) (leadqual.Lead, error) {
	if f.Mode() == ModeMemory {
		return f.memory.Create(ctx, lead)
	}
	created, err := f.durable.Create(ctx, lead)
	if err != nil && f.tripped("Create", err) {
		return f.memory.Create(ctx, lead)
	}
	return created, err
}

func (f *Failover) Update(ctx context.Context, id string, patch leadqual.LeadPatch) (leadqual.Lead, error) {
	if f.Mode() == ModeMemory {
		return f.memory.Update(ctx, id, patch)
	}
	updated, err := f.durable.Update(ctx, id, patch)
	if err != nil && f.tripped("Update", err) {
		return f.memory.Update(ctx, id, patch)
	}
	return updated, err
}

// tripped decides whether err is a store failure. Domain outcomes (duplicate
// email, missing lead) pass through untouched; anything else flips the mode
// to memory, once, for the rest of the process lifetime.
func (f *Failover) tripped(op string, err error) bool {
	if errors.Is(err, leadqual.ErrDuplicatedLead) || errors.Is(err, leadqual.ErrLeadNotFound) {
		return false
	}

	if f.mode.CompareAndSwap(int32(ModeDurable), int32(ModeMemory)) {
		metrics.RecordStoreFailover()
		f.log.Errorw("storage failover", "op", op, "error", err.Error(),
			"mode", ModeMemory.String())
	}
	return true
}
