package domain

import "time"

// DefaultTitle is substituted when a purchase can no longer resolve its listing.
const DefaultTitle = "Untitled"

// PurchaseRecord is evidence that an address paid for and holds token-gated
// access to a listing. At most one record exists per (DatasetID,
// PurchaserAddress) pair; repeat purchases update the record in place.
// Title and DecryptionKey are optional snapshots taken at write time so the
// purchase view survives listing drift.
type PurchaseRecord struct {
	ID               string    `json:"id"`
	DatasetID        string    `json:"dataset_id"`
	PurchaserAddress string    `json:"purchaser_address"`
	PurchaserTokenID int64     `json:"purchaser_token_id"`
	TxHash           string    `json:"tx_hash,omitempty"`
	Title            string    `json:"title,omitempty"`
	DecryptionKey    string    `json:"decryption_key,omitempty"`
	PurchasedAt      time.Time `json:"purchased_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PurchaseView is the purchaser-facing join of a purchase record with its
// originating listing. Dataset fields are null when the listing is missing.
type PurchaseView struct {
	DatasetID        string    `json:"dataset_id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	CID              string    `json:"cid,omitempty"`
	ImageCID         *string   `json:"image_cid"`
	MetadataCID      *string   `json:"metadata_cid"`
	DecryptionKey    string    `json:"decryption_key,omitempty"`
	PurchaserTokenID int64     `json:"purchaser_token_id"`
	PurchaseTxHash   string    `json:"purchase_tx_hash,omitempty"`
	PurchasedAt      time.Time `json:"purchased_at"`
}
