package storage_test

import (
	"context"
	"errors"
	"testing"

	leadqual "github.com/leadqual/leadqual"
	"github.com/leadqual/leadqual/memstore"
	"github.com/leadqual/leadqual/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errDown = errors.New("connection refused")

// durableStub counts calls and fails on demand.
type durableStub struct {
	inner leadqual.Store
	fail  bool
	calls int
}

func (d *durableStub) GetAll(ctx context.Context) ([]leadqual.Lead, error) {
	d.calls++
	if d.fail {
		return nil, errDown
	}
	return d.inner.GetAll(ctx)
}

func (d *durableStub) FindByEmail(ctx context.Context, email string) (leadqual.Lead, error) {
	d.calls++
	if d.fail {
		return leadqual.Lead{}, errDown
	}
	return d.inner.FindByEmail(ctx, email)
}

func (d *durableStub) Create(ctx context.Context, lead leadqual.Lead) (leadqual.Lead, error) {
	d.calls++
	if d.fail {
		return leadqual.Lead{}, errDown
	}
	return d.inner.Create(ctx, lead)
}

func (d *durableStub) Update(ctx context.Context, id string, patch leadqual.LeadPatch) (leadqual.Lead, error) {
	d.calls++
	if d.fail {
		return leadqual.Lead{}, errDown
	}
	return d.inner.Update(ctx, id, patch)
}

func newFailover(durable leadqual.Store, startInMemory bool) (*storage.Failover, *memstore.Store) {
	memory := memstore.NewStore()
	return storage.NewFailover(durable, memory, startInMemory, zap.NewNop().Sugar()), memory
}

func TestDurableModeServesDurable(t *testing.T) {
	ctx := context.Background()
	durable := &durableStub{inner: memstore.NewStore()}
	f, memory := newFailover(durable, false)

	assert.Equal(t, storage.ModeDurable, f.Mode())

	created, err := f.Create(ctx, leadqual.NewLead("Jane", "jane@x.com", ""))
	require.NoError(t, err)

	// The record went to the durable store, not the fallback.
	_, err = durable.inner.FindByEmail(ctx, created.Email)
	assert.NoError(t, err)
	_, err = memory.FindByEmail(ctx, created.Email)
	assert.ErrorIs(t, err, leadqual.ErrLeadNotFound)
}

func TestFailoverIsOneWayAndReplaysTriggeringCall(t *testing.T) {
	ctx := context.Background()
	durable := &durableStub{inner: memstore.NewStore(), fail: true}
	f, _ := newFailover(durable, false)

	// The triggering call still succeeds, served by the memory store.
	created, err := f.Create(ctx, leadqual.NewLead("Jane", "jane@x.com", ""))
	require.NoError(t, err)
	assert.Equal(t, storage.ModeMemory, f.Mode())

	// The durable store recovers, but the mode never transitions back.
	durable.fail = false
	callsAfterTrip := durable.calls

	found, err := f.FindByEmail(ctx, created.Email)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, callsAfterTrip, durable.calls)
	assert.Equal(t, storage.ModeMemory, f.Mode())
}

func TestFailoverRetainsMemoryRecords(t *testing.T) {
	ctx := context.Background()
	durable := &durableStub{inner: memstore.NewStore(), fail: true}
	f, _ := newFailover(durable, false)

	first, err := f.Create(ctx, leadqual.NewLead("A", "a@x.com", ""))
	require.NoError(t, err)
	second, err := f.Create(ctx, leadqual.NewLead("B", "b@x.com", ""))
	require.NoError(t, err)

	leads, err := f.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 2)

	ids := []string{leads[0].ID, leads[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}

func TestDomainErrorsDoNotTripFailover(t *testing.T) {
	ctx := context.Background()
	durable := &durableStub{inner: memstore.NewStore()}
	f, _ := newFailover(durable, false)

	_, err := f.FindByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, leadqual.ErrLeadNotFound)
	assert.Equal(t, storage.ModeDurable, f.Mode())

	_, err = f.Update(ctx, "no-such-id", leadqual.LeadPatch{})
	assert.ErrorIs(t, err, leadqual.ErrLeadNotFound)
	assert.Equal(t, storage.ModeDurable, f.Mode())
}

func TestStartInMemorySkipsDurable(t *testing.T) {
	ctx := context.Background()
	durable := &durableStub{inner: memstore.NewStore()}
	f, _ := newFailover(durable, true)

	assert.Equal(t, storage.ModeMemory, f.Mode())

	_, err := f.Create(ctx, leadqual.NewLead("Jane", "jane@x.com", ""))
	require.NoError(t, err)
	assert.Equal(t, 0, durable.calls)
}

func TestColdMemoryStoreAfterFailover(t *testing.T) {
	ctx := context.Background()
	durable := &durableStub{inner: memstore.NewStore()}
	f, _ := newFailover(durable, false)

	// Seed the durable store, then take it down.
	_, err := f.Create(ctx, leadqual.NewLead("Jane", "jane@x.com", ""))
	require.NoError(t, err)
	durable.fail = true

	// The cold memory store legitimately knows nothing.
	leads, err := f.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, leads)
	assert.Equal(t, storage.ModeMemory, f.Mode())
}
