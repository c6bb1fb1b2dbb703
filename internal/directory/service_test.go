package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockroom/stockroom/internal/shared"
)

type memoryRepo struct {
	recipients map[string]Recipient
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{recipients: map[string]Recipient{}}
}

func (r *memoryRepo) List(ctx context.Context, search string, page, limit int) ([]Recipient, int, error) {
	out := []Recipient{}
	for _, rec := range r.recipients {
		out = append(out, rec)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(ctx context.Context, id string) (Recipient, error) {
	if rec, ok := r.recipients[id]; ok {
		return rec, nil
	}
	return Recipient{}, shared.E(shared.CategoryNotFound, "recipient %s not found", id)
}

func (r *memoryRepo) Lookup(ctx context.Context, id string) (RecipientInfo, error) {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return RecipientInfo{}, err
	}
	return RecipientInfo{Name: rec.Name, Active: rec.Status == StatusActive}, nil
}

func (r *memoryRepo) Create(ctx context.Context, rec Recipient) (Recipient, error) {
	r.recipients[rec.ID] = rec
	return rec, nil
}

func (r *memoryRepo) Update(ctx context.Context, id string, rec Recipient) error {
	if _, ok := r.recipients[id]; !ok {
		return shared.E(shared.CategoryNotFound, "recipient %s not found", id)
	}
	rec.ID = id
	r.recipients[id] = rec
	return nil
}

func TestCreateDefaultsToActive(t *testing.T) {
	svc := NewService(newMemoryRepo())

	created, err := svc.Create(context.Background(), Recipient{Name: "  Asha Varma "})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "Asha Varma", created.Name)
	require.Equal(t, StatusActive, created.Status)
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Recipient{Name: "   "})
	require.Equal(t, shared.CategoryValidation, shared.CategoryOf(err))
}

func TestLookupReflectsEmploymentStatus(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, Recipient{Name: "Jonas Berg"})
	require.NoError(t, err)

	info, err := svc.Lookup(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, info.Active)

	created.Status = StatusLeft
	require.NoError(t, svc.Update(ctx, created.ID, created))

	info, err = svc.Lookup(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, info.Active)
}
