// Package orm persists catalog assets in a relational store beneath the
// in-memory index. The index stays authoritative at runtime; this store is
// replayed into it at boot.
package orm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"asset-catalog/catalog"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SaveAsset upserts the record and rewrites its tag rows in one
// transaction.
func (s *Store) SaveAsset(ctx context.Context, asset *catalog.Asset) error {
	record, tags := toRecord(asset)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).
			Create(&record).Error; err != nil {
			return err
		}

		if err := tx.Where("asset_id = ?", record.ID).
			Delete(&AssetTag{}).Error; err != nil {
			return err
		}

		if len(tags) == 0 {
			return nil
		}

		return tx.Create(&tags).Error
	})

	return wrapErrorWithDetails(
		err,
		"save asset",
		fmt.Sprintf("id=%s, name=%q", record.ID, record.Name),
	)
}

// DeleteAsset removes the record and its tag rows.
func (s *Store) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("asset_id = ?", id.String()).
			Delete(&AssetTag{}).Error; err != nil {
			return err
		}

		return tx.Delete(&AssetRecord{ID: id.String()}).Error
	})

	return wrapErrorWithDetails(
		err,
		"delete asset",
		fmt.Sprintf("id=%s", id),
	)
}

// LoadAll reads every persisted asset, for replay into the index at boot.
// Rows with a malformed id are skipped with a warning instead of failing
// the whole load.
func (s *Store) LoadAll(ctx context.Context) ([]*catalog.Asset, error) {
	var records []AssetRecord
	if err := s.db.WithContext(ctx).Preload("Tags").
		Find(&records).Error; err != nil {
		return nil, wrapErrorWithDetails(err, "load assets", "full scan")
	}

	assets := make([]*catalog.Asset, 0, len(records))
	for _, record := range records {
		asset, err := fromRecord(&record)
		if err != nil {
			log.Warn().Err(err).
				Str("record_id", record.ID).
				Msg("Skipping unreadable asset record")

			continue
		}
		assets = append(assets, asset)
	}

	return assets, nil
}

func toRecord(asset *catalog.Asset) (AssetRecord, []AssetTag) {
	record := AssetRecord{
		ID:           asset.ID.String(),
		Name:         asset.Name,
		MimeType:     asset.MimeType,
		Owner:        asset.Owner,
		Visibility:   string(asset.Visibility),
		UserMetadata: asset.UserMetadata,
		CreatedAt:    asset.CreatedAt,
	}

	if asset.PreviewID != nil {
		previewID := asset.PreviewID.String()
		record.PreviewID = &previewID
	}

	tags := make([]AssetTag, 0, len(asset.Tags))
	for _, tag := range asset.Tags {
		tags = append(tags, AssetTag{AssetID: record.ID, TagName: tag})
	}

	return record, tags
}

func fromRecord(record *AssetRecord) (*catalog.Asset, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return nil, &BadInputError{
			Reason: fmt.Sprintf("record id %q is not a UUID", record.ID),
		}
	}

	asset := &catalog.Asset{
		ID:           id,
		Name:         record.Name,
		MimeType:     record.MimeType,
		Owner:        record.Owner,
		Visibility:   catalog.Visibility(record.Visibility),
		UserMetadata: record.UserMetadata,
		CreatedAt:    record.CreatedAt,
	}

	if record.PreviewID != nil {
		previewID, err := uuid.Parse(*record.PreviewID)
		if err != nil {
			return nil, &BadInputError{
				Reason: fmt.Sprintf("preview id %q is not a UUID", *record.PreviewID),
			}
		}
		asset.PreviewID = &previewID
	}

	tags := make([]string, 0, len(record.Tags))
	for _, tag := range record.Tags {
		tags = append(tags, tag.TagName)
	}
	asset.Tags = tags

	return asset, nil
}
