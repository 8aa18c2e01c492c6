package ports

import (
	"context"
	"time"
)

// ListingInfo is the cached projection served by the dataset info endpoint.
type ListingInfo struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	DecryptionKey string  `json:"decryption_key"`
	ImageCID      *string `json:"image_cid"`
	MetadataCID   *string `json:"metadata_cid"`
}

// ListingInfoCache is a best-effort cache-aside store for listing info.
// A miss or cache failure always falls through to the repository read.
type ListingInfoCache interface {
	Get(ctx context.Context, datasetID string) (*ListingInfo, error)
	Set(ctx context.Context, datasetID string, info ListingInfo, ttl time.Duration) error
}
