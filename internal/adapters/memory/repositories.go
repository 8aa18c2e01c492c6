// Package memory provides mutex-guarded in-process repositories.
// They back unit and contract tests and the DB-less local runtime mode,
// honoring the same atomicity contracts as the Postgres adapter.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/researchdex/dataset-marketplace/internal/domain"
	"github.com/researchdex/dataset-marketplace/internal/ports"
)

type Repositories struct {
	Listings  *ListingRepository
	Purchases *PurchaseRepository
	Outbox    *OutboxRepository
}

func NewRepositories() *Repositories {
	outbox := &OutboxRepository{rows: map[uuid.UUID]ports.OutboxRecord{}}
	return &Repositories{
		Listings:  &ListingRepository{rows: map[string]domain.Listing{}, outbox: outbox},
		Purchases: &PurchaseRepository{rows: map[string]domain.PurchaseRecord{}, outbox: outbox},
		Outbox:    outbox,
	}
}

type ListingRepository struct {
	mu     sync.Mutex
	rows   map[string]domain.Listing
	outbox *OutboxRepository
}

func (r *ListingRepository) CreateWithOutboxTx(ctx context.Context, listing domain.Listing, event ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rows[listing.ID]; exists {
		return domain.ErrConflict
	}
	r.rows[listing.ID] = listing
	// the listing lock is held across the enqueue, matching the write+event
	// transaction the SQL adapter provides
	return r.outbox.Enqueue(ctx, event)
}

func (r *ListingRepository) List(_ context.Context) ([]domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Listing, 0, len(r.rows))
	for _, row := range r.rows {
		out = append(out, row)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *ListingRepository) GetLatestByTitle(_ context.Context, title string) (domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest domain.Listing
	found := false
	for _, row := range r.rows {
		if row.Title != title {
			continue
		}
		if !found || row.Version > latest.Version {
			latest = row
			found = true
		}
	}
	if !found {
		return domain.Listing{}, domain.ErrNotFound
	}
	return latest, nil
}

func (r *ListingRepository) GetByRef(_ context.Context, ref domain.DatasetRef) (domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.lookup(ref)
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *ListingRepository) RecordAccess(_ context.Context, ref domain.DatasetRef, purchaser string) (domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.lookup(ref)
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}
	row.Views++
	if !row.HasPurchaser(purchaser) {
		row.Purchasers = append(append([]string{}, row.Purchasers...), purchaser)
	}
	r.rows[row.ID] = row
	return row, nil
}

func (r *ListingRepository) ListByPurchaser(_ context.Context, address string) ([]domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Listing, 0)
	for _, row := range r.rows {
		if row.HasPurchaser(address) {
			out = append(out, row)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// lookup mirrors the store's dual matching: structured refs compare hex ids
// case-insensitively first, then fall back to the verbatim string.
func (r *ListingRepository) lookup(ref domain.DatasetRef) (domain.Listing, bool) {
	if ref.Structured() {
		want := strings.ToLower(ref.String())
		for id, row := range r.rows {
			if strings.ToLower(id) == want {
				return row, true
			}
		}
	}
	row, ok := r.rows[ref.String()]
	return row, ok
}

func sortNewestFirst(items []domain.Listing) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UploadedAt.After(items[j].UploadedAt)
	})
}

type PurchaseRepository struct {
	mu     sync.Mutex
	rows   map[string]domain.PurchaseRecord
	outbox *OutboxRepository
}

func purchaseKey(datasetID, address string) string {
	return datasetID + "|" + address
}

func (r *PurchaseRepository) GetByDatasetAndAddress(_ context.Context, datasetID, address string) (domain.PurchaseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[purchaseKey(datasetID, address)]
	if !ok {
		return domain.PurchaseRecord{}, domain.ErrNotFound
	}
	return row, nil
}

func (r *PurchaseRepository) UpsertWithOutboxTx(ctx context.Context, record domain.PurchaseRecord, event ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := purchaseKey(record.DatasetID, record.PurchaserAddress)
	if existing, ok := r.rows[key]; ok {
		// at most one record per pair; keep the original identity and
		// purchase time, latest values win for the rest
		record.ID = existing.ID
		record.PurchasedAt = existing.PurchasedAt
	}
	r.rows[key] = record
	return r.outbox.Enqueue(ctx, event)
}

func (r *PurchaseRepository) ListByAddress(_ context.Context, address string) ([]domain.PurchaseRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.PurchaseRecord, 0)
	for _, row := range r.rows {
		if row.PurchaserAddress == address {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PurchasedAt.After(out[j].PurchasedAt)
	})
	return out, nil
}

type OutboxRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]ports.OutboxRecord
}

func (r *OutboxRepository) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[event.EventID] = ports.OutboxRecord{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      event.Payload,
		CreatedAt:    event.OccurredAt,
		FirstSeenAt:  event.OccurredAt,
	}
	return nil
}

func (r *OutboxRepository) ClaimUnpublished(_ context.Context, limit int, claimToken string, claimUntil time.Time) ([]ports.OutboxRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	out := make([]ports.OutboxRecord, 0, limit)
	for id, row := range r.rows {
		if len(out) >= limit {
			break
		}
		if row.PublishedAt != nil || row.DeadLetteredAt != nil {
			continue
		}
		if row.ClaimUntil != nil && row.ClaimUntil.After(now) {
			continue
		}
		token := claimToken
		until := claimUntil
		row.ClaimToken = &token
		row.ClaimUntil = &until
		r.rows[id] = row
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *OutboxRepository) MarkPublished(_ context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[outboxID]
	if !ok || row.ClaimToken == nil || *row.ClaimToken != claimToken {
		return nil
	}
	row.PublishedAt = &at
	row.ClaimToken = nil
	row.ClaimUntil = nil
	r.rows[outboxID] = row
	return nil
}

func (r *OutboxRepository) MarkFailed(_ context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[outboxID]
	if !ok || row.ClaimToken == nil || *row.ClaimToken != claimToken {
		return nil
	}
	row.RetryCount++
	row.LastError = &errMsg
	row.LastErrorAt = &at
	row.ClaimToken = nil
	row.ClaimUntil = nil
	r.rows[outboxID] = row
	return nil
}

func (r *OutboxRepository) MarkDeadLettered(_ context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[outboxID]
	if !ok || row.ClaimToken == nil || *row.ClaimToken != claimToken {
		return nil
	}
	row.RetryCount++
	row.LastError = &errMsg
	row.LastErrorAt = &at
	row.DeadLetteredAt = &at
	row.ClaimToken = nil
	row.ClaimUntil = nil
	r.rows[outboxID] = row
	return nil
}
