package postgres

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/researchdex/dataset-marketplace/internal/domain"
)

type listingModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	Title         string    `gorm:"column:title"`
	Description   string    `gorm:"column:description"`
	CID           string    `gorm:"column:cid"`
	ImageCID      *string   `gorm:"column:image_cid"`
	MetadataCID   *string   `gorm:"column:metadata_cid"`
	Version       int       `gorm:"column:version"`
	PreviousCID   *string   `gorm:"column:previous_cid"`
	Views         int64     `gorm:"column:views"`
	Purchasers    string    `gorm:"column:purchasers;type:jsonb"`
	AuthorAddress string    `gorm:"column:author_address"`
	DecryptionKey string    `gorm:"column:decryption_key"`
	TokenID       *int64    `gorm:"column:token_id"`
	TxHash        *string   `gorm:"column:tx_hash"`
	UploadedAt    time.Time `gorm:"column:uploaded_at"`
}

func (listingModel) TableName() string { return "listings" }

func toListingModel(l domain.Listing) listingModel {
	purchasers := l.Purchasers
	if purchasers == nil {
		purchasers = []string{}
	}
	raw, _ := json.Marshal(purchasers)
	return listingModel{
		ID:            l.ID,
		Title:         l.Title,
		Description:   l.Description,
		CID:           l.CID,
		ImageCID:      l.ImageCID,
		MetadataCID:   l.MetadataCID,
		Version:       l.Version,
		PreviousCID:   l.PreviousCID,
		Views:         l.Views,
		Purchasers:    string(raw),
		AuthorAddress: l.AuthorAddress,
		DecryptionKey: l.DecryptionKey,
		TokenID:       l.TokenID,
		TxHash:        l.TxHash,
		UploadedAt:    l.UploadedAt,
	}
}

func (m listingModel) toDomain() domain.Listing {
	purchasers := []string{}
	if m.Purchasers != "" {
		_ = json.Unmarshal([]byte(m.Purchasers), &purchasers)
	}
	return domain.Listing{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		CID:           m.CID,
		ImageCID:      m.ImageCID,
		MetadataCID:   m.MetadataCID,
		Version:       m.Version,
		PreviousCID:   m.PreviousCID,
		Views:         m.Views,
		Purchasers:    purchasers,
		AuthorAddress: m.AuthorAddress,
		DecryptionKey: m.DecryptionKey,
		TokenID:       m.TokenID,
		TxHash:        m.TxHash,
		UploadedAt:    m.UploadedAt,
	}
}

type purchaseModel struct {
	ID               string    `gorm:"column:id;primaryKey"`
	DatasetID        string    `gorm:"column:dataset_id"`
	PurchaserAddress string    `gorm:"column:purchaser_address"`
	PurchaserTokenID int64     `gorm:"column:purchaser_token_id"`
	TxHash           string    `gorm:"column:tx_hash"`
	Title            string    `gorm:"column:title"`
	DecryptionKey    string    `gorm:"column:decryption_key"`
	PurchasedAt      time.Time `gorm:"column:purchased_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (purchaseModel) TableName() string { return "purchases" }

func toPurchaseModel(p domain.PurchaseRecord) purchaseModel {
	return purchaseModel{
		ID:               p.ID,
		DatasetID:        p.DatasetID,
		PurchaserAddress: p.PurchaserAddress,
		PurchaserTokenID: p.PurchaserTokenID,
		TxHash:           p.TxHash,
		Title:            p.Title,
		DecryptionKey:    p.DecryptionKey,
		PurchasedAt:      p.PurchasedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (m purchaseModel) toDomain() domain.PurchaseRecord {
	return domain.PurchaseRecord{
		ID:               m.ID,
		DatasetID:        m.DatasetID,
		PurchaserAddress: m.PurchaserAddress,
		PurchaserTokenID: m.PurchaserTokenID,
		TxHash:           m.TxHash,
		Title:            m.Title,
		DecryptionKey:    m.DecryptionKey,
		PurchasedAt:      m.PurchasedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

type outboxModel struct {
	OutboxID       uuid.UUID  `gorm:"column:outbox_id;primaryKey"`
	EventType      string     `gorm:"column:event_type"`
	PartitionKey   string     `gorm:"column:partition_key"`
	Payload        string     `gorm:"column:payload;type:jsonb"`
	RetryCount     int        `gorm:"column:retry_count"`
	LastError      *string    `gorm:"column:last_error"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	FirstSeenAt    time.Time  `gorm:"column:first_seen_at"`
	PublishedAt    *time.Time `gorm:"column:published_at"`
	LastErrorAt    *time.Time `gorm:"column:last_error_at"`
	ClaimToken     *string    `gorm:"column:claim_token"`
	ClaimUntil     *time.Time `gorm:"column:claim_until"`
	DeadLetteredAt *time.Time `gorm:"column:dead_lettered_at"`
}

func (outboxModel) TableName() string { return "marketplace_outbox" }
