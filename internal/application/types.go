package application

import "time"

// Config carries the tunables the application layer needs at runtime.
type Config struct {
	ServiceID    string
	InfoCacheTTL time.Duration
}

// CreateListingInput mirrors the submit-listing operation. Optional refs are
// pointers so absent and empty stay distinguishable in storage.
type CreateListingInput struct {
	Title         string
	Description   string
	CID           string
	ImageCID      *string
	MetadataCID   *string
	AuthorAddress string
	DecryptionKey string
	TokenID       *int64
	TxHash        *string
}

type CreateListingResult struct {
	Version     int     `json:"version"`
	TokenID     *int64  `json:"token_id"`
	MetadataCID *string `json:"metadata_cid"`
}

type RecordPurchaseInput struct {
	PurchaserAddress string
	PurchaserTokenID *int64
	TxHash           string
	DecryptionKey    string
}

type RecordPurchaseResult struct {
	Created bool `json:"created"`
}

type ListPurchasesInput struct {
	Address string
	TokenID *int64
}
