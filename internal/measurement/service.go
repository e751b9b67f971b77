package measurement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/fitting-room/internal/apperr"
)

// Store persists one measurement record per user.
type Store interface {
	SaveMeasurements(ctx context.Context, body *Body) error
	FindMeasurements(ctx context.Context, userID string) (*Body, error)
}

type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Save validates body and replaces the user's stored measurements with it.
func (s *Service) Save(ctx context.Context, body Body) (*Body, error) {
	body.UserID = strings.TrimSpace(body.UserID)
	if body.UserID == "" {
		return nil, apperr.Validation("user id is required")
	}
	if body.Unit == "" {
		body.Unit = UnitCentimeters
	}
	if err := body.Validate(); err != nil {
		return nil, err
	}

	body.LastUpdated = s.now().UTC()
	if err := s.store.SaveMeasurements(ctx, &body); err != nil {
		return nil, fmt.Errorf("save measurements: %w", err)
	}

	s.logger.Info("measurements saved",
		zap.String("user_id", body.UserID),
		zap.String("unit", string(body.Unit)),
	)

	return &body, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*Body, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}
	return s.store.FindMeasurements(ctx, userID)
}
