package application

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/researchdex/dataset-marketplace/internal/domain"
	"github.com/researchdex/dataset-marketplace/internal/ports"
)

const (
	EventListingCreated   = "listing.created"
	EventPurchaseRecorded = "purchase.recorded"
)

// Events are enqueued in the same transaction as the triggering write and
// published asynchronously by the outbox worker, so request handling never
// blocks on the broker.

func listingCreatedEvent(listing domain.Listing, at time.Time) ports.OutboxEvent {
	payload, _ := json.Marshal(map[string]any{
		"listing_id":     listing.ID,
		"title":          listing.Title,
		"version":        listing.Version,
		"author_address": listing.AuthorAddress,
		"cid":            listing.CID,
	})
	return ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    EventListingCreated,
		PartitionKey: listing.ID,
		Payload:      payload,
		OccurredAt:   at,
	}
}

func purchaseRecordedEvent(record domain.PurchaseRecord, created bool, at time.Time) ports.OutboxEvent {
	payload, _ := json.Marshal(map[string]any{
		"dataset_id":         record.DatasetID,
		"purchaser_address":  record.PurchaserAddress,
		"purchaser_token_id": record.PurchaserTokenID,
		"created":            created,
	})
	return ports.OutboxEvent{
		EventID:      uuid.New(),
		EventType:    EventPurchaseRecorded,
		PartitionKey: record.DatasetID,
		Payload:      payload,
		OccurredAt:   at,
	}
}
