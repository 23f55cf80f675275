package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ielts-prep/internal/domain"
	"ielts-prep/internal/repository/models"
	"ielts-prep/internal/util"

	"github.com/jmoiron/sqlx"
)

type sqlxPresetRepository struct {
	db *sqlx.DB
}

func NewPresetRepository(db *sqlx.DB) domain.PresetRepository {
	return &sqlxPresetRepository{db: db}
}

func toDomainPreset(m *models.TestPreset) *domain.Preset {
	return &domain.Preset{
		ID:          m.ID,
		Module:      domain.Module(m.Module),
		Topic:       m.Topic.String,
		Payload:     json.RawMessage(m.Payload),
		IsPublished: m.IsPublished == 1,
		CreatedAt:   m.CreatedAt,
	}
}

func (r *sqlxPresetRepository) ListPublished(ctx context.Context, module domain.Module) ([]*domain.Preset, error) {
	query := `SELECT ID, MODULE, TOPIC, PAYLOAD, IS_PUBLISHED, CREATED_AT
	          FROM TEST_PRESETS WHERE MODULE = :1 AND IS_PUBLISHED = 1 ORDER BY CREATED_AT`

	var rows []models.TestPreset
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, string(module)); err != nil {
		return nil, fmt.Errorf("failed to list presets for %s: %w", module, err)
	}

	presets := make([]*domain.Preset, 0, len(rows))
	for i := range rows {
		presets = append(presets, toDomainPreset(&rows[i]))
	}
	return presets, nil
}

func (r *sqlxPresetRepository) SavePreset(ctx context.Context, preset *domain.Preset) error {
	if preset.ID == "" {
		preset.ID = util.NewULID()
	}
	if preset.CreatedAt.IsZero() {
		preset.CreatedAt = time.Now()
	}

	query := `INSERT INTO TEST_PRESETS (ID, MODULE, TOPIC, PAYLOAD, IS_PUBLISHED, CREATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6)`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		preset.ID,
		string(preset.Module),
		util.StringToNullString(preset.Topic),
		string(preset.Payload),
		boolToNumber(preset.IsPublished),
		preset.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save preset: %w", err)
	}
	return nil
}
