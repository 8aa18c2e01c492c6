package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/researchdex/dataset-marketplace/internal/domain"
)

// ListingRepository defines persistence operations for dataset listings.
// Ref-based reads apply the dual lookup rule: structured-id match first,
// raw-string fallback second.
type ListingRepository interface {
	CreateWithOutboxTx(ctx context.Context, listing domain.Listing, event OutboxEvent) error
	List(ctx context.Context) ([]domain.Listing, error)
	GetLatestByTitle(ctx context.Context, title string) (domain.Listing, error)
	GetByRef(ctx context.Context, ref domain.DatasetRef) (domain.Listing, error)
	// RecordAccess applies views+1 and add-if-absent purchaser as one atomic
	// store-level update so concurrent callers never lose an increment.
	RecordAccess(ctx context.Context, ref domain.DatasetRef, purchaser string) (domain.Listing, error)
	ListByPurchaser(ctx context.Context, address string) ([]domain.Listing, error)
}

// PurchaseRepository owns purchase records keyed by (dataset id, purchaser
// address). Upsert must resolve concurrent inserts for the same pair to a
// single row with the most recent values winning.
type PurchaseRepository interface {
	GetByDatasetAndAddress(ctx context.Context, datasetID, address string) (domain.PurchaseRecord, error)
	UpsertWithOutboxTx(ctx context.Context, record domain.PurchaseRecord, event OutboxEvent) error
	ListByAddress(ctx context.Context, address string) ([]domain.PurchaseRecord, error)
}

// OutboxEvent is the write-side event payload prior to storage.
// It is adapter-neutral to keep application code independent of broker specifics.
type OutboxEvent struct {
	EventID      uuid.UUID
	EventType    string
	PartitionKey string
	Payload      []byte
	OccurredAt   time.Time
}

// OutboxRecord represents durable outbox state, including retry/error metadata.
type OutboxRecord struct {
	OutboxID       uuid.UUID
	EventType      string
	PartitionKey   string
	Payload        []byte
	RetryCount     int
	LastError      *string
	CreatedAt      time.Time
	PublishedAt    *time.Time
	LastErrorAt    *time.Time
	FirstSeenAt    time.Time
	ClaimToken     *string
	ClaimUntil     *time.Time
	DeadLetteredAt *time.Time
}

// OutboxRepository controls publish-retry workflow for domain events.
// This explicit contract enables transactional outbox patterns without leaking DB details.
type OutboxRepository interface {
	Enqueue(ctx context.Context, event OutboxEvent) error
	ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]OutboxRecord, error)
	MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error
	MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
	MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error
}
