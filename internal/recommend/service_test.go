package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/fitting-room/internal/apperr"
	"github.com/spigell/fitting-room/internal/catalog"
	"github.com/spigell/fitting-room/internal/measurement"
	"github.com/spigell/fitting-room/internal/sizing"
)

type fakeStore struct {
	bodies  map[string]*measurement.Body
	items   map[string]*catalog.Item
	findErr error
}

func (f *fakeStore) FindMeasurements(_ context.Context, userID string) (*measurement.Body, error) {
	if body, ok := f.bodies[userID]; ok {
		return body, nil
	}
	return nil, apperr.NotFound("measurements not found")
}

func (f *fakeStore) FindItem(_ context.Context, id string) (*catalog.Item, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if item, ok := f.items[id]; ok {
		return item, nil
	}
	return nil, apperr.NotFound("item %s not found", id)
}

func (f *fakeStore) FindItems(_ context.Context, ids []string) ([]*catalog.Item, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*catalog.Item
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		bodies: map[string]*measurement.Body{
			"user-1": {UserID: "user-1", Chest: 100, Waist: 85, Hips: 100, Height: 180, Weight: 80, Unit: measurement.UnitCentimeters},
		},
		items: map[string]*catalog.Item{
			"shirt": {
				ID: "shirt", Name: "Oxford Shirt", Brand: "Acme",
				Sizes: []sizing.Option{
					{Size: sizing.SizeS, Measurements: sizing.Measurements{Chest: 90, Waist: 75}, Stock: 2},
					{Size: sizing.SizeM, Measurements: sizing.Measurements{Chest: 100, Waist: 85}, Stock: 5},
					{Size: sizing.SizeL, Measurements: sizing.Measurements{Chest: 110, Waist: 95}, Stock: 0},
				},
			},
			"coat": {
				ID: "coat", Name: "Wool Coat", Brand: "North",
				Sizes: []sizing.Option{{Size: sizing.SizeXL, Measurements: sizing.Measurements{Chest: 125}}},
			},
			"scarf": {ID: "scarf", Name: "Scarf", Brand: "North"},
		},
	}
}

func TestRecommend(t *testing.T) {
	svc := NewService(newFakeStore(), newFakeStore(), nil)

	result, err := svc.Recommend(context.Background(), "user-1", "shirt")
	require.NoError(t, err)

	assert.Equal(t, catalog.Summary{ID: "shirt", Name: "Oxford Shirt", Brand: "Acme"}, result.Clothing)
	require.NotNil(t, result.Best)
	assert.Equal(t, sizing.SizeM, result.Best.Size)
	assert.Equal(t, 100, result.Best.FitScore)
	assert.Equal(t, sizing.PerfectFit, result.Best.FitDescription)
	assert.Equal(t, 5, result.Best.Stock)
	assert.Equal(t, AdviceGoodFit, result.Advice)
	require.Len(t, result.AllSizes, 3)
	assert.Equal(t, sizing.SizeS, result.AllSizes[1].Size)
	assert.Equal(t, 180.0, result.Measurements.Height)
}

func TestRecommendAdvice(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, store, nil)

	result, err := svc.Recommend(context.Background(), "user-1", "coat")
	require.NoError(t, err)
	assert.Equal(t, 50, result.Best.FitScore)
	assert.Equal(t, AdviceTryOther, result.Advice)

	result, err = svc.Recommend(context.Background(), "user-1", "scarf")
	require.NoError(t, err)
	assert.Nil(t, result.Best)
	assert.Empty(t, result.AllSizes)
	assert.Equal(t, AdviceNoSizes, result.Advice)
}

func TestRecommendErrors(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, store, nil)

	_, err := svc.Recommend(context.Background(), "user-2", "shirt")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = svc.Recommend(context.Background(), "user-1", "missing")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = svc.Recommend(context.Background(), "", "shirt")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	dbErr := apperr.Persistence(errors.New("connection reset"), "find clothing item")
	store.findErr = dbErr
	_, err = svc.Recommend(context.Background(), "user-1", "shirt")
	assert.ErrorIs(t, err, dbErr)
	assert.True(t, apperr.IsKind(err, apperr.KindPersistence))
}

func TestRecommendBulk(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, store, nil)

	results, err := svc.RecommendBulk(context.Background(), "user-1", []string{"coat", "missing", "shirt", "coat", " ", "scarf"})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "coat", results[0].ClothingID)
	assert.Equal(t, "Wool Coat", results[0].Name)
	assert.Equal(t, sizing.SizeXL, results[0].Best.Size)

	assert.Equal(t, "shirt", results[1].ClothingID)
	assert.Equal(t, "Acme", results[1].Brand)
	assert.Equal(t, sizing.SizeM, results[1].Best.Size)

	assert.Equal(t, "scarf", results[2].ClothingID)
	assert.Nil(t, results[2].Best)
}

func TestRecommendBulkErrors(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, store, nil)

	_, err := svc.RecommendBulk(context.Background(), "user-1", nil)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.RecommendBulk(context.Background(), "user-1", []string{" "})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.RecommendBulk(context.Background(), "nobody", []string{"shirt"})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
