package contracts

import (
	"encoding/json"
	"strconv"
	"strings"
)

// TokenID accepts a JSON number or a numeric string; anything else decodes
// as absent. Clients serialize chain token ids both ways.
type TokenID struct {
	value *int64
}

func (t *TokenID) UnmarshalJSON(data []byte) error {
	t.value = nil
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		t.value = &n
	}
	return nil
}

func (t TokenID) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.value)
}

// Int64 returns the parsed value, nil when absent or non-numeric.
func (t TokenID) Int64() *int64 { return t.value }

// CreateDatasetRequest is the submit-listing payload. CID fields are opaque
// references produced by the storage collaborator; they are stored, not
// validated.
type CreateDatasetRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	CID           string  `json:"cid"`
	ImageCID      *string `json:"image_cid"`
	MetadataCID   *string `json:"metadata_cid"`
	AuthorAddress string  `json:"author_address"`
	DecryptionKey string  `json:"decryption_key"`
	TokenID       TokenID `json:"token_id"`
	TxHash        *string `json:"tx_hash"`
}

// RecordAccessRequest carries the dataset id in whatever shape the client
// serialized it (plain string or document-id wrapper); the handler normalizes
// it exactly once at this boundary.
type RecordAccessRequest struct {
	ID        any    `json:"id"`
	Purchaser string `json:"purchaser"`
}

type RecordPurchaseRequest struct {
	DatasetID        any     `json:"dataset_id"`
	PurchaserAddress string  `json:"purchaser_address"`
	PurchaserTokenID TokenID `json:"purchaser_token_id"`
	TxHash           string  `json:"tx_hash"`
	DecryptionKey    string  `json:"decryption_key"`
}

type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
