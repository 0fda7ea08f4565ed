package memstore_test

import (
	"context"
	"testing"
	"time"

	leadqual "github.com/leadqual/leadqual"
	"github.com/leadqual/leadqual/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAllOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewStore()

	base := time.Now().UTC()
	for i, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		lead := leadqual.NewLead("lead", email, "")
		lead.CreatedAt = base.Add(time.Duration(i) * time.Second)
		_, err := store.Create(ctx, lead)
		require.NoError(t, err)
	}

	leads, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, "c@x.com", leads[0].Email)
	assert.Equal(t, "b@x.com", leads[1].Email)
	assert.Equal(t, "a@x.com", leads[2].Email)
}

func TestFindByEmail(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewStore()

	created, err := store.Create(ctx, leadqual.NewLead("Jane", "jane@x.com", ""))
	require.NoError(t, err)

	found, err := store.FindByEmail(ctx, "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = store.FindByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, leadqual.ErrLeadNotFound)
}

func TestUpdateMergesPatch(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewStore()

	created, err := store.Create(ctx, leadqual.NewLead("Jane", "jane@x.com", "https://x.com"))
	require.NoError(t, err)

	updated, err := store.Update(ctx, created.ID, leadqual.LeadPatch{
		CompanyName: leadqual.String("X"),
		Score:       leadqual.Int(35),
		Status:      leadqual.Status(leadqual.StatusQualified),
	})
	require.NoError(t, err)

	assert.Equal(t, "X", *updated.CompanyName)
	assert.Equal(t, 35, updated.Score)
	assert.Equal(t, leadqual.StatusQualified, updated.Status)
	assert.Nil(t, updated.Country)

	// Identity fields are untouched.
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestUpdateEmptyPatchOnlyTouchesUpdatedAt(t *testing.T) {
	ctx := context.Background()
	store := memstore.NewStore()

	created, err := store.Create(ctx, leadqual.NewLead("Jane", "jane@x.com", ""))
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	updated, err := store.Update(ctx, created.ID, leadqual.LeadPatch{})
	require.NoError(t, err)

	assert.Equal(t, created.Score, updated.Score)
	assert.Equal(t, created.Status, updated.Status)
	assert.Equal(t, created.Name, updated.Name)
	assert.Nil(t, updated.CompanyName)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestUpdateUnknownID(t *testing.T) {
	store := memstore.NewStore()

	_, err := store.Update(context.Background(), "no-such-id", leadqual.LeadPatch{})
	assert.ErrorIs(t, err, leadqual.ErrLeadNotFound)
}
