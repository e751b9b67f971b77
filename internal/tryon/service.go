package tryon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/fitting-room/internal/ai"
	"github.com/spigell/fitting-room/internal/apperr"
	"github.com/spigell/fitting-room/internal/catalog"
	"github.com/spigell/fitting-room/internal/logger"
	"github.com/spigell/fitting-room/internal/measurement"
)

const DefaultAnalyzerTimeout = 60 * time.Second

type MeasurementStore interface {
	FindMeasurements(ctx context.Context, userID string) (*measurement.Body, error)
}

type CatalogStore interface {
	FindItem(ctx context.Context, id string) (*catalog.Item, error)
}

type PresetImageStore interface {
	FindPresetImage(ctx context.Context, userID, id string) (*PresetImage, error)
	FindDefaultPresetImage(ctx context.Context, userID string) (*PresetImage, error)
}

// RequestStore persists try-on requests. Lookups are scoped to the owning user.
// An empty status in ListTryOns matches every status; results are newest first.
type RequestStore interface {
	SaveTryOn(ctx context.Context, req *Request) error
	FindTryOn(ctx context.Context, userID, id string) (*Request, error)
	ListTryOns(ctx context.Context, userID string, status Status) ([]*Request, error)
	DeleteTryOn(ctx context.Context, userID, id string) error
}

type Stores struct {
	Measurements MeasurementStore
	Catalog      CatalogStore
	Presets      PresetImageStore
	Requests     RequestStore
}

// CreateInput describes a new try-on. PresetImageID falls back to the user's
// default preset image and ClothingImageRef to the item's primary image.
type CreateInput struct {
	UserID           string
	ClothingID       string
	PresetImageID    string
	ClothingImageRef string
}

type Service struct {
	stores   Stores
	analyzer ai.Analyzer
	timeout  time.Duration
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

func NewService(stores Stores, analyzer ai.Analyzer, analyzerTimeout time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if analyzerTimeout <= 0 {
		analyzerTimeout = DefaultAnalyzerTimeout
	}
	return &Service{
		stores:   stores,
		analyzer: analyzer,
		timeout:  analyzerTimeout,
		logger:   log.With(zap.String("analyzer", analyzer.Name())),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Create validates preconditions, persists the request as processing and runs
// the analysis. Analyzer and parse failures end in a failed request, not an error.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Request, error) {
	userID := strings.TrimSpace(in.UserID)
	clothingID := strings.TrimSpace(in.ClothingID)
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}
	if clothingID == "" {
		return nil, apperr.Validation("clothing id is required")
	}

	preset, err := s.presetImage(ctx, userID, strings.TrimSpace(in.PresetImageID))
	if err != nil {
		return nil, err
	}

	item, err := s.stores.Catalog.FindItem(ctx, clothingID)
	if err != nil {
		return nil, notFoundAs(err, "clothing item not found")
	}

	body, err := s.stores.Measurements.FindMeasurements(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "please add your body measurements first")
	}

	clothingImage := strings.TrimSpace(in.ClothingImageRef)
	if clothingImage == "" {
		clothingImage = item.PrimaryImage()
	}

	req := &Request{
		ID:               s.newID(),
		UserID:           userID,
		ClothingID:       item.ID,
		PresetImageID:    preset.ID,
		PresetImageRef:   preset.ImageRef,
		ClothingImageRef: clothingImage,
		Status:           StatusPending,
		CreatedAt:        s.now().UTC(),
	}
	if err := req.Start(); err != nil {
		return nil, err
	}
	if err := s.stores.Requests.SaveTryOn(ctx, req); err != nil {
		return nil, fmt.Errorf("save try-on: %w", err)
	}

	log := s.logger.With(logger.TryOnFields(req.ID, req.UserID, req.ClothingID)...)
	log.Info("try-on processing started")

	analysis, resultRef, err := s.analyze(ctx, &ai.Request{
		Measurements:     *body,
		Item:             item,
		ClothingImageRef: req.ClothingImageRef,
		PresetImageRef:   req.PresetImageRef,
	})
	if err != nil {
		log.Warn("try-on analysis failed", zap.Error(err))
		if ferr := req.Fail(err.Error()); ferr != nil {
			return nil, ferr
		}
	} else if cerr := req.Complete(resultRef, analysis, s.now()); cerr != nil {
		return nil, cerr
	}

	// The terminal state is recorded even when the caller has gone away.
	if err := s.stores.Requests.SaveTryOn(context.WithoutCancel(ctx), req); err != nil {
		return nil, fmt.Errorf("save try-on result: %w", err)
	}

	log.Info("try-on processing finished", zap.String("status", string(req.Status)))

	return req, nil
}

func (s *Service) presetImage(ctx context.Context, userID, presetID string) (*PresetImage, error) {
	var (
		preset *PresetImage
		err    error
	)
	if presetID != "" {
		preset, err = s.stores.Presets.FindPresetImage(ctx, userID, presetID)
	} else {
		preset, err = s.stores.Presets.FindDefaultPresetImage(ctx, userID)
	}
	if err != nil {
		return nil, notFoundAs(err, "please upload a preset image first")
	}
	return preset, nil
}

func (s *Service) analyze(ctx context.Context, req *ai.Request) (*ai.FitAnalysis, string, error) {
	actx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.analyzer.Analyze(actx, req)
	if err != nil {
		if actx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, "", s.interruption(ctx)
		}
		return nil, "", err
	}

	analysis, err := ai.ParseFitAnalysis(resp.Raw)
	if err != nil {
		return nil, "", err
	}
	return analysis, resp.ResultImageRef, nil
}

func (s *Service) interruption(ctx context.Context) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return apperr.Wrap(apperr.KindAnalysisUnavailable, context.Canceled, "analysis cancelled before completion")
	case ctx.Err() != nil:
		return apperr.Wrap(apperr.KindAnalysisUnavailable, context.DeadlineExceeded, "analysis timed out: caller deadline exceeded")
	default:
		return apperr.Wrap(apperr.KindAnalysisUnavailable, context.DeadlineExceeded, "analysis timed out after %s", s.timeout)
	}
}

// Get returns a request owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (*Request, error) {
	userID, id = strings.TrimSpace(userID), strings.TrimSpace(id)
	if userID == "" || id == "" {
		return nil, apperr.Validation("user id and try-on id are required")
	}
	req, err := s.stores.Requests.FindTryOn(ctx, userID, id)
	if err != nil {
		return nil, notFoundAs(err, "try-on not found")
	}
	return req, nil
}

// List returns the user's requests, newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, userID string, status Status) ([]*Request, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.Validation("user id is required")
	}
	status, err := ParseStatus(string(status))
	if err != nil {
		return nil, err
	}
	return s.stores.Requests.ListTryOns(ctx, userID, status)
}

// Delete removes a request owned by userID.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	userID, id = strings.TrimSpace(userID), strings.TrimSpace(id)
	if userID == "" || id == "" {
		return apperr.Validation("user id and try-on id are required")
	}
	if err := s.stores.Requests.DeleteTryOn(ctx, userID, id); err != nil {
		return notFoundAs(err, "try-on not found")
	}
	s.logger.Info("try-on deleted", logger.TryOnFields(id, userID, "")...)
	return nil
}

// notFoundAs replaces a not-found error with one carrying message. Other errors pass through.
func notFoundAs(err error, message string) error {
	if apperr.IsKind(err, apperr.KindNotFound) {
		return apperr.NotFound("%s", message)
	}
	return err
}
