package sqlstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/spigell/fitting-room/internal/apperr"
	"github.com/spigell/fitting-room/internal/catalog"
	"github.com/spigell/fitting-room/internal/measurement"
	"github.com/spigell/fitting-room/internal/tryon"
)

// GormMeasurementRepository stores one measurement record per user.
type GormMeasurementRepository struct {
	db *gorm.DB
}

func NewGormMeasurementRepository(db *gorm.DB) *GormMeasurementRepository {
	return &GormMeasurementRepository{db: db}
}

// SaveMeasurements replaces the user's record wholesale.
func (r *GormMeasurementRepository) SaveMeasurements(ctx context.Context, body *measurement.Body) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(measurementFromDomain(body)).Error
	return dbError(err, "save measurements for %s", body.UserID)
}

func (r *GormMeasurementRepository) FindMeasurements(ctx context.Context, userID string) (*measurement.Body, error) {
	var model MeasurementModel
	if err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error; err != nil {
		return nil, dbError(err, "measurements for user %s", userID)
	}
	return model.ToDomain(), nil
}

// GormCatalogRepository stores clothing items with their sizes.
type GormCatalogRepository struct {
	db *gorm.DB
}

func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

func (r *GormCatalogRepository) SaveItem(ctx context.Context, item *catalog.Item) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "brand", "category", "gender", "description", "images", "sizes", "updated_at"}),
	}).Create(clothingItemFromDomain(item)).Error
	return dbError(err, "save clothing item %s", item.ID)
}

func (r *GormCatalogRepository) FindItem(ctx context.Context, id string) (*catalog.Item, error) {
	var model ClothingItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, dbError(err, "clothing item %s", id)
	}
	return model.ToDomain(), nil
}

// FindItems returns the existing items among ids, in the order of ids.
func (r *GormCatalogRepository) FindItems(ctx context.Context, ids []string) ([]*catalog.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var rows []ClothingItemModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, dbError(err, "find clothing items")
	}

	byID := make(map[string]*ClothingItemModel, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	items := make([]*catalog.Item, 0, len(rows))
	for _, id := range ids {
		if model, ok := byID[id]; ok {
			items = append(items, model.ToDomain())
			delete(byID, id)
		}
	}
	return items, nil
}

func (r *GormCatalogRepository) ListItems(ctx context.Context) ([]*catalog.Item, error) {
	var rows []ClothingItemModel
	if err := r.db.WithContext(ctx).Order("brand ASC, name ASC").Find(&rows).Error; err != nil {
		return nil, dbError(err, "list clothing items")
	}
	items := make([]*catalog.Item, len(rows))
	for i := range rows {
		items[i] = rows[i].ToDomain()
	}
	return items, nil
}

// GormPresetImageRepository stores users' preset body images.
type GormPresetImageRepository struct {
	db *gorm.DB
}

func NewGormPresetImageRepository(db *gorm.DB) *GormPresetImageRepository {
	return &GormPresetImageRepository{db: db}
}

// SavePresetImage upserts a preset image. A default image clears the flag on the user's other images.
func (r *GormPresetImageRepository) SavePresetImage(ctx context.Context, preset *tryon.PresetImage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if preset.IsDefault {
			if err := tx.Model(&PresetImageModel{}).
				Where("user_id = ? AND id <> ?", preset.UserID, preset.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(presetImageFromDomain(preset)).Error
	})
	return dbError(err, "save preset image %s", preset.ID)
}

func (r *GormPresetImageRepository) FindPresetImage(ctx context.Context, userID, id string) (*tryon.PresetImage, error) {
	var model PresetImageModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&model).Error; err != nil {
		return nil, dbError(err, "preset image %s", id)
	}
	return model.ToDomain(), nil
}

func (r *GormPresetImageRepository) FindDefaultPresetImage(ctx context.Context, userID string) (*tryon.PresetImage, error) {
	var model PresetImageModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&model).Error; err != nil {
		return nil, dbError(err, "default preset image for user %s", userID)
	}
	return model.ToDomain(), nil
}

// GormTryOnRepository stores try-on requests.
type GormTryOnRepository struct {
	db *gorm.DB
}

func NewGormTryOnRepository(db *gorm.DB) *GormTryOnRepository {
	return &GormTryOnRepository{db: db}
}

func (r *GormTryOnRepository) SaveTryOn(ctx context.Context, req *tryon.Request) error {
	err := r.db.WithContext(ctx).Save(tryOnFromDomain(req)).Error
	return dbError(err, "save try-on %s", req.ID)
}

func (r *GormTryOnRepository) FindTryOn(ctx context.Context, userID, id string) (*tryon.Request, error) {
	var model TryOnModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&model).Error; err != nil {
		return nil, dbError(err, "try-on %s", id)
	}
	return model.ToDomain(), nil
}

func (r *GormTryOnRepository) ListTryOns(ctx context.Context, userID string, status tryon.Status) ([]*tryon.Request, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	var rows []TryOnModel
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, dbError(err, "list try-ons for user %s", userID)
	}

	requests := make([]*tryon.Request, len(rows))
	for i := range rows {
		requests[i] = rows[i].ToDomain()
	}
	return requests, nil
}

func (r *GormTryOnRepository) DeleteTryOn(ctx context.Context, userID, id string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&TryOnModel{})
	if result.Error != nil {
		return dbError(result.Error, "delete try-on %s", id)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("try-on %s not found", id)
	}
	return nil
}
