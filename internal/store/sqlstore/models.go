package sqlstore

import (
	"time"

	"github.com/spigell/fitting-room/internal/ai"
	"github.com/spigell/fitting-room/internal/catalog"
	"github.com/spigell/fitting-room/internal/measurement"
	"github.com/spigell/fitting-room/internal/sizing"
	"github.com/spigell/fitting-room/internal/tryon"
)

type MeasurementModel struct {
	UserID        string  `gorm:"primaryKey"`
	Chest         float64 `gorm:"not null"`
	Waist         float64 `gorm:"not null"`
	Hips          float64 `gorm:"not null"`
	Height        float64 `gorm:"not null"`
	Weight        float64 `gorm:"not null"`
	ShoulderWidth float64
	Inseam        float64
	Unit          string `gorm:"not null;default:'cm'"`
	LastUpdated   time.Time
}

func (MeasurementModel) TableName() string {
	return "body_measurements"
}

func measurementFromDomain(b *measurement.Body) *MeasurementModel {
	return &MeasurementModel{
		UserID:        b.UserID,
		Chest:         b.Chest,
		Waist:         b.Waist,
		Hips:          b.Hips,
		Height:        b.Height,
		Weight:        b.Weight,
		ShoulderWidth: b.ShoulderWidth,
		Inseam:        b.Inseam,
		Unit:          string(b.Unit),
		LastUpdated:   b.LastUpdated,
	}
}

func (m *MeasurementModel) ToDomain() *measurement.Body {
	return &measurement.Body{
		UserID:        m.UserID,
		Chest:         m.Chest,
		Waist:         m.Waist,
		Hips:          m.Hips,
		Height:        m.Height,
		Weight:        m.Weight,
		ShoulderWidth: m.ShoulderWidth,
		Inseam:        m.Inseam,
		Unit:          measurement.Unit(m.Unit),
		LastUpdated:   m.LastUpdated.UTC(),
	}
}

type ClothingItemModel struct {
	ID          string          `gorm:"primaryKey"`
	Name        string          `gorm:"not null"`
	Brand       string          `gorm:"index"`
	Category    string          `gorm:"index"`
	Gender      string
	Description string
	Images      []string        `gorm:"type:text;serializer:json"`
	Sizes       []sizing.Option `gorm:"type:text;serializer:json"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (ClothingItemModel) TableName() string {
	return "clothing_items"
}

func clothingItemFromDomain(i *catalog.Item) *ClothingItemModel {
	return &ClothingItemModel{
		ID:          i.ID,
		Name:        i.Name,
		Brand:       i.Brand,
		Category:    string(i.Category),
		Gender:      i.Gender,
		Description: i.Description,
		Images:      i.Images,
		Sizes:       i.Sizes,
	}
}

func (m *ClothingItemModel) ToDomain() *catalog.Item {
	return &catalog.Item{
		ID:          m.ID,
		Name:        m.Name,
		Brand:       m.Brand,
		Category:    catalog.Category(m.Category),
		Gender:      m.Gender,
		Description: m.Description,
		Images:      m.Images,
		Sizes:       m.Sizes,
	}
}

type PresetImageModel struct {
	ID         string `gorm:"primaryKey"`
	UserID     string `gorm:"not null;index"`
	ImageRef   string `gorm:"not null"`
	ImageType  string `gorm:"not null;default:'front'"`
	IsDefault  bool   `gorm:"not null;default:false"`
	UploadedAt time.Time
}

func (PresetImageModel) TableName() string {
	return "preset_images"
}

func presetImageFromDomain(p *tryon.PresetImage) *PresetImageModel {
	return &PresetImageModel{
		ID:         p.ID,
		UserID:     p.UserID,
		ImageRef:   p.ImageRef,
		ImageType:  string(p.ImageType),
		IsDefault:  p.IsDefault,
		UploadedAt: p.UploadedAt,
	}
}

func (m *PresetImageModel) ToDomain() *tryon.PresetImage {
	return &tryon.PresetImage{
		ID:         m.ID,
		UserID:     m.UserID,
		ImageRef:   m.ImageRef,
		ImageType:  tryon.ImageType(m.ImageType),
		IsDefault:  m.IsDefault,
		UploadedAt: m.UploadedAt.UTC(),
	}
}

type TryOnModel struct {
	ID               string `gorm:"primaryKey"`
	UserID           string `gorm:"not null;index:idx_try_on_user_status"`
	ClothingID       string `gorm:"not null"`
	PresetImageID    string
	PresetImageRef   string
	ClothingImageRef string
	ResultImageRef   string
	FitAnalysis      *ai.FitAnalysis `gorm:"type:text;serializer:json"`
	Status           string          `gorm:"not null;index:idx_try_on_user_status"`
	ErrorMessage     string
	CreatedAt        time.Time `gorm:"index"`
	CompletedAt      *time.Time
}

func (TryOnModel) TableName() string {
	return "try_on_requests"
}

func tryOnFromDomain(r *tryon.Request) *TryOnModel {
	return &TryOnModel{
		ID:               r.ID,
		UserID:           r.UserID,
		ClothingID:       r.ClothingID,
		PresetImageID:    r.PresetImageID,
		PresetImageRef:   r.PresetImageRef,
		ClothingImageRef: r.ClothingImageRef,
		ResultImageRef:   r.ResultImageRef,
		FitAnalysis:      r.FitAnalysis,
		Status:           string(r.Status),
		ErrorMessage:     r.ErrorMessage,
		CreatedAt:        r.CreatedAt,
		CompletedAt:      r.CompletedAt,
	}
}

func (m *TryOnModel) ToDomain() *tryon.Request {
	req := &tryon.Request{
		ID:               m.ID,
		UserID:           m.UserID,
		ClothingID:       m.ClothingID,
		PresetImageID:    m.PresetImageID,
		PresetImageRef:   m.PresetImageRef,
		ClothingImageRef: m.ClothingImageRef,
		ResultImageRef:   m.ResultImageRef,
		FitAnalysis:      m.FitAnalysis,
		Status:           tryon.Status(m.Status),
		ErrorMessage:     m.ErrorMessage,
		CreatedAt:        m.CreatedAt.UTC(),
	}
	if m.CompletedAt != nil {
		completed := m.CompletedAt.UTC()
		req.CompletedAt = &completed
	}
	return req
}

func allModels() []any {
	return []any{&MeasurementModel{}, &ClothingItemModel{}, &PresetImageModel{}, &TryOnModel{}}
}
