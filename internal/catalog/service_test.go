package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockroom/stockroom/internal/shared"
)

type memoryRepo struct {
	items      map[string]Item
	referenced map[string]bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[string]Item{}, referenced: map[string]bool{}}
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	out := []Item{}
	for _, it := range r.items {
		if filters.ActiveOnly && !it.Active {
			continue
		}
		if filters.Category != "" && it.Category != filters.Category {
			continue
		}
		out = append(out, it)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(ctx context.Context, id string) (Item, error) {
	if it, ok := r.items[id]; ok {
		return it, nil
	}
	return Item{}, shared.E(shared.CategoryNotFound, "item %s not found", id)
}

func (r *memoryRepo) Lookup(ctx context.Context, id string) (ItemInfo, error) {
	it, err := r.Get(ctx, id)
	if err != nil {
		return ItemInfo{}, err
	}
	return ItemInfo{Name: it.Name, Active: it.Active, LifeQty: it.LifeQty, LifeUnit: it.LifeUnit}, nil
}

func (r *memoryRepo) Create(ctx context.Context, item Item) (Item, error) {
	for _, existing := range r.items {
		if existing.Code == item.Code {
			return Item{}, shared.E(shared.CategoryConflict, "item code %s already exists", item.Code)
		}
	}
	r.items[item.ID] = item
	return item, nil
}

func (r *memoryRepo) Update(ctx context.Context, id string, item Item) error {
	if _, ok := r.items[id]; !ok {
		return shared.E(shared.CategoryNotFound, "item %s not found", id)
	}
	item.ID = id
	r.items[id] = item
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id string) error {
	if r.referenced[id] {
		return shared.E(shared.CategoryReferentialIntegrity, "item %s has movement history and cannot be deleted", id)
	}
	if _, ok := r.items[id]; !ok {
		return shared.E(shared.CategoryNotFound, "item %s not found", id)
	}
	delete(r.items, id)
	return nil
}

func TestCreateNormalisesAndActivates(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Item{
		Code:     " ppe-hel ",
		Name:     "  safety helmet ",
		Category: "head",
		LifeQty:  6,
		LifeUnit: LifeUnitMonth,
	}, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "PPE-HEL", created.Code)
	require.Equal(t, "Safety Helmet", created.Name)
	require.True(t, created.Active)
	require.Equal(t, "admin", created.CreatedBy)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	cases := []Item{
		{Name: "Helmet", LifeQty: 6, LifeUnit: LifeUnitMonth},
		{Code: "A", LifeQty: 6, LifeUnit: LifeUnitMonth},
		{Code: "A", Name: "Helmet", LifeQty: 0, LifeUnit: LifeUnitMonth},
		{Code: "A", Name: "Helmet", LifeQty: 6, LifeUnit: LifeUnit("decade")},
	}
	for _, item := range cases {
		_, err := svc.Create(ctx, item, "admin")
		require.Equal(t, shared.CategoryValidation, shared.CategoryOf(err))
	}
}

func TestCreateDuplicateCode(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, Item{Code: "HEL", Name: "Helmet", LifeQty: 6, LifeUnit: LifeUnitMonth}, "admin")
	require.NoError(t, err)
	_, err = svc.Create(ctx, Item{Code: "hel", Name: "Another Helmet", LifeQty: 6, LifeUnit: LifeUnitMonth}, "admin")
	require.Equal(t, shared.CategoryConflict, shared.CategoryOf(err))
}

func TestDeactivateKeepsItem(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, Item{Code: "HEL", Name: "Helmet", LifeQty: 6, LifeUnit: LifeUnitMonth}, "admin")
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, created.ID, "admin"))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, got.Active)
}

func TestDeleteReferencedItemRefused(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, Item{Code: "HEL", Name: "Helmet", LifeQty: 6, LifeUnit: LifeUnitMonth}, "admin")
	require.NoError(t, err)
	repo.referenced[created.ID] = true

	err = svc.Delete(ctx, created.ID)
	require.Equal(t, shared.CategoryReferentialIntegrity, shared.CategoryOf(err))

	_, err = svc.Get(ctx, created.ID)
	require.NoError(t, err)
}
