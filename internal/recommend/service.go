// Package recommend computes size recommendations for catalog items.
package recommend

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/fitting-room/internal/apperr"
	"github.com/spigell/fitting-room/internal/catalog"
	"github.com/spigell/fitting-room/internal/measurement"
	"github.com/spigell/fitting-room/internal/sizing"
)

const (
	wellFittingScore = 75

	AdviceGoodFit   = "This size should fit you well!"
	AdviceTryOther  = "Consider trying the next size up or down for better fit."
	AdviceNoSizes   = "No sizes are listed for this item."
	measurementHint = "please add your body measurements first"
)

type MeasurementStore interface {
	FindMeasurements(ctx context.Context, userID string) (*measurement.Body, error)
}

// CatalogStore looks catalog items up. FindItems returns only the items that exist.
type CatalogStore interface {
	FindItem(ctx context.Context, id string) (*catalog.Item, error)
	FindItems(ctx context.Context, ids []string) ([]*catalog.Item, error)
}

// Result is the recommendation for a single item.
type Result struct {
	Clothing     catalog.Summary         `json:"clothing"`
	Measurements measurement.Body        `json:"userMeasurements"`
	Best         *sizing.Recommendation  `json:"best,omitempty"`
	AllSizes     []sizing.Recommendation `json:"allSizes"`
	Advice       string                  `json:"advice"`
}

// BulkItem is the best size for one item of a bulk request.
type BulkItem struct {
	ClothingID string                 `json:"clothingId"`
	Name       string                 `json:"name"`
	Brand      string                 `json:"brand"`
	Best       *sizing.Recommendation `json:"best,omitempty"`
}

type Service struct {
	measurements MeasurementStore
	catalog      CatalogStore
	logger       *zap.Logger
}

func NewService(measurements MeasurementStore, catalog CatalogStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{measurements: measurements, catalog: catalog, logger: logger}
}

// Recommend scores every size of the item against the user's measurements.
func (s *Service) Recommend(ctx context.Context, userID, clothingID string) (*Result, error) {
	userID, clothingID = strings.TrimSpace(userID), strings.TrimSpace(clothingID)
	if userID == "" || clothingID == "" {
		return nil, apperr.Validation("user id and clothing id are required")
	}

	body, err := s.userMeasurements(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.catalog.FindItem(ctx, clothingID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("clothing item not found")
		}
		return nil, err
	}

	all := sizing.Score(*body, item.Sizes)
	result := &Result{
		Clothing:     item.Summary(),
		Measurements: *body,
		AllSizes:     all,
		Advice:       AdviceNoSizes,
	}
	if best, ok := sizing.Best(all); ok {
		result.Best = &best
		result.Advice = advice(best.FitScore)
	}

	s.logger.Debug("size recommendation computed",
		zap.String("user_id", userID),
		zap.String("clothing_id", item.ID),
		zap.Int("sizes", len(all)),
	)

	return result, nil
}

// RecommendBulk returns the best size for each existing item. Unknown ids are skipped.
func (s *Service) RecommendBulk(ctx context.Context, userID string, clothingIDs []string) ([]BulkItem, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}

	ids := uniqueIDs(clothingIDs)
	if len(ids) == 0 {
		return nil, apperr.Validation("please provide at least one clothing id")
	}

	body, err := s.userMeasurements(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.catalog.FindItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]BulkItem, 0, len(items))
	for _, item := range items {
		entry := BulkItem{ClothingID: item.ID, Name: item.Name, Brand: item.Brand}
		if best, ok := sizing.Best(sizing.Score(*body, item.Sizes)); ok {
			entry.Best = &best
		}
		results = append(results, entry)
	}

	if skipped := len(ids) - len(items); skipped > 0 {
		s.logger.Debug("bulk recommendation skipped unknown items",
			zap.String("user_id", userID),
			zap.Int("skipped", skipped),
		)
	}

	return results, nil
}

func (s *Service) userMeasurements(ctx context.Context, userID string) (*measurement.Body, error) {
	body, err := s.measurements.FindMeasurements(ctx, userID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.NotFound(measurementHint)
		}
		return nil, err
	}
	return body, nil
}

func advice(score int) string {
	if score >= wellFittingScore {
		return AdviceGoodFit
	}
	return AdviceTryOther
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
