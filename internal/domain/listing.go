package domain

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Listing is a published dataset record. Versions chain by exact title:
// version N+1 stores the CID of version N as PreviousCID. Views and the
// purchaser set only ever grow; listings are never deleted.
type Listing struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CID           string    `json:"cid"`
	ImageCID      *string   `json:"image_cid"`
	MetadataCID   *string   `json:"metadata_cid"`
	Version       int       `json:"version"`
	PreviousCID   *string   `json:"previous_cid"`
	Views         int64     `json:"views"`
	Purchasers    []string  `json:"purchasers"`
	AuthorAddress string    `json:"author_address"`
	DecryptionKey string    `json:"decryption_key,omitempty"`
	TokenID       *int64    `json:"token_id"`
	TxHash        *string   `json:"tx_hash"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

// HasPurchaser reports set membership with the address case preserved as submitted.
func (l Listing) HasPurchaser(address string) bool {
	for _, p := range l.Purchasers {
		if p == address {
			return true
		}
	}
	return false
}

// NewListingID produces a store-assigned 24-hex structured id, so both
// lookup forms of DatasetRef stay meaningful against stored documents.
func NewListingID() string {
	buf := make([]byte, 12)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
