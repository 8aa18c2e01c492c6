package postgres

import (
	"context"
	"errors"

	"github.com/researchdex/dataset-marketplace/internal/domain"
	"github.com/researchdex/dataset-marketplace/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type purchaseRepository struct {
	db *gorm.DB
}

func (r *purchaseRepository) GetByDatasetAndAddress(ctx context.Context, datasetID, address string) (domain.PurchaseRecord, error) {
	var row purchaseModel
	err := r.db.WithContext(ctx).
		Where("dataset_id = ?", datasetID).
		Where("purchaser_address = ?", address).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PurchaseRecord{}, domain.ErrNotFound
		}
		return domain.PurchaseRecord{}, storeErr(err)
	}
	return row.toDomain(), nil
}

// UpsertWithOutboxTx writes the purchase and its event in one transaction.
// The unique (dataset_id, purchaser_address) index resolves concurrent
// first-purchase races: the losing insert becomes an update and the most
// recent values win.
func (r *purchaseRepository) UpsertWithOutboxTx(ctx context.Context, record domain.PurchaseRecord, event ports.OutboxEvent) error {
	rec := toPurchaseModel(record)
	outbox := outboxModel{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      string(event.Payload),
		CreatedAt:    event.OccurredAt,
		FirstSeenAt:  event.OccurredAt,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "dataset_id"},
				{Name: "purchaser_address"},
			},
			DoUpdates: clause.Assignments(map[string]any{
				"purchaser_token_id": rec.PurchaserTokenID,
				"tx_hash":            rec.TxHash,
				"decryption_key":     rec.DecryptionKey,
				"title":              rec.Title,
				"updated_at":         rec.UpdatedAt,
			}),
		}).Create(&rec).Error; err != nil {
			return err
		}
		return tx.Create(&outbox).Error
	})
	if err != nil {
		return storeErr(err)
	}
	return nil
}

func (r *purchaseRepository) ListByAddress(ctx context.Context, address string) ([]domain.PurchaseRecord, error) {
	var rows []purchaseModel
	if err := r.db.WithContext(ctx).
		Where("purchaser_address = ?", address).
		Order("purchased_at DESC").
		Find(&rows).Error; err != nil {
		return nil, storeErr(err)
	}
	out := make([]domain.PurchaseRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
