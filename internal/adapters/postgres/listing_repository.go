package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/researchdex/dataset-marketplace/internal/domain"
	"github.com/researchdex/dataset-marketplace/internal/ports"
	"gorm.io/gorm"
)

type listingRepository struct {
	db *gorm.DB
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}

func (r *listingRepository) CreateWithOutboxTx(ctx context.Context, listing domain.Listing, event ports.OutboxEvent) error {
	rec := toListingModel(listing)
	outbox := outboxModel{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      string(event.Payload),
		CreatedAt:    event.OccurredAt,
		FirstSeenAt:  event.OccurredAt,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		return tx.Create(&outbox).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrConflict
		}
		return storeErr(err)
	}
	return nil
}

func (r *listingRepository) List(ctx context.Context) ([]domain.Listing, error) {
	var rows []listingModel
	if err := r.db.WithContext(ctx).
		Order("uploaded_at DESC").
		Find(&rows).Error; err != nil {
		return nil, storeErr(err)
	}
	out := make([]domain.Listing, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *listingRepository) GetLatestByTitle(ctx context.Context, title string) (domain.Listing, error) {
	var row listingModel
	err := r.db.WithContext(ctx).
		Where("title = ?", title).
		Order("version DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Listing{}, domain.ErrNotFound
		}
		return domain.Listing{}, storeErr(err)
	}
	return row.toDomain(), nil
}

// GetByRef applies the dual lookup rule: a structured ref is matched
// case-insensitively against stored hex ids first, then the raw string form
// is tried verbatim. Raw refs only get the verbatim match.
func (r *listingRepository) GetByRef(ctx context.Context, ref domain.DatasetRef) (domain.Listing, error) {
	var row listingModel
	if ref.Structured() {
		err := r.db.WithContext(ctx).
			Where("lower(id) = ?", strings.ToLower(ref.String())).
			First(&row).Error
		if err == nil {
			return row.toDomain(), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Listing{}, storeErr(err)
		}
	}
	err := r.db.WithContext(ctx).
		Where("id = ?", ref.String()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Listing{}, domain.ErrNotFound
		}
		return domain.Listing{}, storeErr(err)
	}
	return row.toDomain(), nil
}

const recordAccessSQL = `
UPDATE listings
SET views = views + 1,
    purchasers = CASE
        WHEN purchasers @> to_jsonb(@purchaser::text) THEN purchasers
        ELSE purchasers || to_jsonb(@purchaser::text)
    END
WHERE %s
RETURNING *`

// RecordAccess issues the view increment and the set-add as one UPDATE so
// concurrent purchases of the same listing never lose either effect.
func (r *listingRepository) RecordAccess(ctx context.Context, ref domain.DatasetRef, purchaser string) (domain.Listing, error) {
	attempt := func(where string, idArg any) (listingModel, bool, error) {
		var row listingModel
		res := r.db.WithContext(ctx).
			Raw(fmt.Sprintf(recordAccessSQL, where),
				sql.Named("purchaser", purchaser), sql.Named("id", idArg)).
			Scan(&row)
		if res.Error != nil {
			return listingModel{}, false, storeErr(res.Error)
		}
		return row, res.RowsAffected > 0, nil
	}

	if ref.Structured() {
		row, found, err := attempt("lower(id) = @id", strings.ToLower(ref.String()))
		if err != nil {
			return domain.Listing{}, err
		}
		if found {
			return row.toDomain(), nil
		}
	}
	row, found, err := attempt("id = @id", ref.String())
	if err != nil {
		return domain.Listing{}, err
	}
	if !found {
		return domain.Listing{}, domain.ErrNotFound
	}
	return row.toDomain(), nil
}

func (r *listingRepository) ListByPurchaser(ctx context.Context, address string) ([]domain.Listing, error) {
	var rows []listingModel
	if err := r.db.WithContext(ctx).
		Where("purchasers @> to_jsonb(?::text)", address).
		Order("uploaded_at DESC").
		Find(&rows).Error; err != nil {
		return nil, storeErr(err)
	}
	out := make([]domain.Listing, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
