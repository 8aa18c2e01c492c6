package postgres

import (
	"github.com/researchdex/dataset-marketplace/internal/ports"
	"gorm.io/gorm"
)

type Repositories struct {
	Listings  ports.ListingRepository
	Purchases ports.PurchaseRepository
	Outbox    ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Listings:  &listingRepository{db: db},
		Purchases: &purchaseRepository{db: db},
		Outbox:    &outboxRepository{db: db},
	}
}
