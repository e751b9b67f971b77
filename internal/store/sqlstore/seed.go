package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/spigell/fitting-room/internal/apperr"
	"github.com/spigell/fitting-room/internal/catalog"
	"github.com/spigell/fitting-room/internal/measurement"
	"github.com/spigell/fitting-room/internal/tryon"
)

// Seed is the YAML document accepted by Import.
type Seed struct {
	Items        []catalog.Item      `yaml:"items"`
	PresetImages []tryon.PresetImage `yaml:"presetImages"`
	Measurements []measurement.Body  `yaml:"measurements"`
}

type ImportSummary struct {
	Items        int
	PresetImages int
	Measurements int
}

// LoadSeed decodes a seed document. Unknown keys are rejected.
func LoadSeed(r io.Reader) (*Seed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var seed Seed
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return &seed, nil
		}
		return nil, apperr.Wrap(apperr.KindValidation, err, "decode seed")
	}
	return &seed, nil
}

// Import validates the seed and writes it in a single transaction.
func (s *Store) Import(ctx context.Context, seed *Seed) (ImportSummary, error) {
	var summary ImportSummary
	if err := seed.normalize(time.Now().UTC()); err != nil {
		return summary, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := New(tx)
		for i := range seed.Items {
			if err := repos.Catalog.SaveItem(ctx, &seed.Items[i]); err != nil {
				return err
			}
			summary.Items++
		}
		for i := range seed.PresetImages {
			if err := repos.Presets.SavePresetImage(ctx, &seed.PresetImages[i]); err != nil {
				return err
			}
			summary.PresetImages++
		}
		for i := range seed.Measurements {
			if err := repos.Measurements.SaveMeasurements(ctx, &seed.Measurements[i]); err != nil {
				return err
			}
			summary.Measurements++
		}
		return nil
	})
	if err != nil {
		return ImportSummary{}, err
	}
	return summary, nil
}

func (seed *Seed) normalize(now time.Time) error {
	for i := range seed.Items {
		item := &seed.Items[i]
		item.ID = strings.TrimSpace(item.ID)
		if item.ID == "" || strings.TrimSpace(item.Name) == "" {
			return apperr.Validation("item %d: id and name are required", i)
		}
		for _, option := range item.Sizes {
			if !option.Size.Valid() {
				return apperr.Validation("item %s: unknown size %q", item.ID, option.Size)
			}
			if option.Stock < 0 {
				return apperr.Validation("item %s: stock of size %s must not be negative", item.ID, option.Size)
			}
		}
	}

	for i := range seed.PresetImages {
		preset := &seed.PresetImages[i]
		if preset.ID == "" {
			preset.ID = uuid.NewString()
		}
		if preset.UserID == "" || preset.ImageRef == "" {
			return apperr.Validation("preset image %s: userId and imageRef are required", preset.ID)
		}
		switch preset.ImageType {
		case "":
			preset.ImageType = tryon.ImageFront
		case tryon.ImageFront, tryon.ImageSide, tryon.ImageBack, tryon.ImageCustom:
		default:
			return apperr.Validation("preset image %s: unknown image type %q", preset.ID, preset.ImageType)
		}
		if preset.UploadedAt.IsZero() {
			preset.UploadedAt = now
		}
	}

	for i := range seed.Measurements {
		body := &seed.Measurements[i]
		if body.UserID == "" {
			return apperr.Validation("measurements %d: userId is required", i)
		}
		unit, err := measurement.ParseUnit(string(body.Unit))
		if err != nil {
			return fmt.Errorf("measurements for %s: %w", body.UserID, err)
		}
		body.Unit = unit
		if err := body.Validate(); err != nil {
			return fmt.Errorf("measurements for %s: %w", body.UserID, err)
		}
		body.LastUpdated = now
	}

	return nil
}
