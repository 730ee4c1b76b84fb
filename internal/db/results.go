package db

import (
	"context"

	"github.com/elucidare/tonewise/internal/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ListOptions controls the paging and ordering of result listings.
type ListOptions struct {
	Offset    int
	Limit     int
	SortOrder string
}

func (o ListOptions) apply(db *gorm.DB) *gorm.DB {
	order := "created_at asc"
	if o.SortOrder == "desc" {
		order = "created_at desc"
	}
	db = db.Order(order)
	if o.Limit > 0 {
		db = db.Limit(o.Limit)
	}
	if o.Offset > 0 {
		db = db.Offset(o.Offset)
	}
	return db
}

// SaveToneAnalysis stores a tone analysis.
func SaveToneAnalysis(ctx context.Context, db *gorm.DB, analysis *model.ToneAnalysis) error {
	if err := db.WithContext(ctx).Create(analysis).Error; err != nil {
		return errors.Wrap(err, "unable to save the tone analysis")
	}
	return nil
}

// SaveScriptGeneration stores a script generation.
func SaveScriptGeneration(ctx context.Context, db *gorm.DB, generation *model.ScriptGeneration) error {
	if err := db.WithContext(ctx).Create(generation).Error; err != nil {
		return errors.Wrap(err, "unable to save the script generation")
	}
	return nil
}

// ListToneAnalyses lists the stored tone analyses for a user.
func ListToneAnalyses(ctx context.Context, db *gorm.DB, userID string, opts ListOptions) ([]model.ToneAnalysis, error) {
	analyses := make([]model.ToneAnalysis, 0)
	err := opts.apply(db.WithContext(ctx).Where("user_id = ?", userID)).Find(&analyses).Error
	if err != nil {
		return nil, errors.Wrap(err, "unable to list the tone analyses")
	}
	return analyses, nil
}

// ListScriptGenerations lists the stored script generations for a user.
func ListScriptGenerations(ctx context.Context, db *gorm.DB, userID string, opts ListOptions) ([]model.ScriptGeneration, error) {
	generations := make([]model.ScriptGeneration, 0)
	err := opts.apply(db.WithContext(ctx).Where("user_id = ?", userID)).Find(&generations).Error
	if err != nil {
		return nil, errors.Wrap(err, "unable to list the script generations")
	}
	return generations, nil
}

// GetToneAnalysis looks up one of a user's tone analyses. Nil is returned if it doesn't exist.
func GetToneAnalysis(ctx context.Context, db *gorm.DB, userID, id string) (*model.ToneAnalysis, error) {
	var analyses []model.ToneAnalysis
	err := db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Limit(1).Find(&analyses).Error
	if err != nil {
		return nil, errors.Wrap(err, "unable to look up the tone analysis")
	}
	if len(analyses) == 0 {
		return nil, nil
	}
	return &analyses[0], nil
}

// GetScriptGeneration looks up one of a user's script generations. Nil is returned if it doesn't exist.
func GetScriptGeneration(ctx context.Context, db *gorm.DB, userID, id string) (*model.ScriptGeneration, error) {
	var generations []model.ScriptGeneration
	err := db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).Limit(1).Find(&generations).Error
	if err != nil {
		return nil, errors.Wrap(err, "unable to look up the script generation")
	}
	if len(generations) == 0 {
		return nil, nil
	}
	return &generations[0], nil
}
