package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/researchdex/dataset-marketplace/internal/domain"
	"github.com/researchdex/dataset-marketplace/internal/ports"
)

// Service implements the marketplace core: the listing store, the purchase
// ledger and the enrichment join. All coordination is delegated to the
// repositories' atomic single-document updates; the service itself holds no
// shared mutable state.
type Service struct {
	cfg       Config
	listings  ports.ListingRepository
	purchases ports.PurchaseRepository
	infoCache ports.ListingInfoCache
	nowFn     func() time.Time
}

type Dependencies struct {
	Config    Config
	Listings  ports.ListingRepository
	Purchases ports.PurchaseRepository
	InfoCache ports.ListingInfoCache
}

func NewService(deps Dependencies) *Service {
	s := &Service{
		cfg:       deps.Config,
		listings:  deps.Listings,
		purchases: deps.Purchases,
		infoCache: deps.InfoCache,
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
	if s.cfg.InfoCacheTTL == 0 {
		s.cfg.InfoCacheTTL = 5 * time.Minute
	}
	return s
}

// CreateListing inserts a new listing version. The most recent listing with
// the same exact title determines version and previous-CID chaining; a
// duplicate CID is allowed.
func (s *Service) CreateListing(ctx context.Context, input CreateListingInput) (CreateListingResult, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || strings.TrimSpace(input.CID) == "" || strings.TrimSpace(input.AuthorAddress) == "" {
		return CreateListingResult{}, fmt.Errorf("%w: title, cid and author_address are required", domain.ErrInvalidInput)
	}

	version := 1
	var previousCID *string
	latest, err := s.listings.GetLatestByTitle(ctx, title)
	switch {
	case err == nil:
		version = latest.Version + 1
		prev := latest.CID
		previousCID = &prev
	case errors.Is(err, domain.ErrNotFound):
		// first version for this title
	default:
		return CreateListingResult{}, err
	}

	now := s.nowFn()
	listing := domain.Listing{
		ID:            domain.NewListingID(),
		Title:         title,
		Description:   input.Description,
		CID:           strings.TrimSpace(input.CID),
		ImageCID:      input.ImageCID,
		MetadataCID:   input.MetadataCID,
		Version:       version,
		PreviousCID:   previousCID,
		Views:         0,
		Purchasers:    []string{},
		AuthorAddress: strings.TrimSpace(input.AuthorAddress),
		DecryptionKey: input.DecryptionKey,
		TokenID:       input.TokenID,
		TxHash:        input.TxHash,
		UploadedAt:    now,
	}

	if err := s.listings.CreateWithOutboxTx(ctx, listing, listingCreatedEvent(listing, now)); err != nil {
		return CreateListingResult{}, err
	}
	return CreateListingResult{Version: version, TokenID: listing.TokenID, MetadataCID: listing.MetadataCID}, nil
}

// ListListings returns all listings, most recently uploaded first.
func (s *Service) ListListings(ctx context.Context) ([]domain.Listing, error) {
	return s.listings.List(ctx)
}

// GetListing resolves a listing by either lookup form of the ref.
func (s *Service) GetListing(ctx context.Context, ref domain.DatasetRef) (domain.Listing, error) {
	if ref.IsZero() {
		return domain.Listing{}, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	return s.listings.GetByRef(ctx, ref)
}

// GetListingInfo serves the projection the download flow needs, cache-aside.
// Cache failures are best-effort and fall through to the repository read.
func (s *Service) GetListingInfo(ctx context.Context, ref domain.DatasetRef) (ports.ListingInfo, error) {
	if ref.IsZero() {
		return ports.ListingInfo{}, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	if s.infoCache != nil {
		if cached, err := s.infoCache.Get(ctx, ref.String()); err == nil && cached != nil {
			return *cached, nil
		}
	}
	listing, err := s.listings.GetByRef(ctx, ref)
	if err != nil {
		return ports.ListingInfo{}, err
	}
	info := ports.ListingInfo{
		Title:         listing.Title,
		Description:   listing.Description,
		DecryptionKey: listing.DecryptionKey,
		ImageCID:      listing.ImageCID,
		MetadataCID:   listing.MetadataCID,
	}
	if info.Title == "" {
		info.Title = domain.DefaultTitle
	}
	if s.infoCache != nil {
		_ = s.infoCache.Set(ctx, ref.String(), info, s.cfg.InfoCacheTTL)
	}
	return info, nil
}

// RecordAccess bumps the view counter and adds the purchaser to the listing's
// purchaser set. The repository applies both as one atomic update; the set-add
// is idempotent while views increment on every call.
func (s *Service) RecordAccess(ctx context.Context, ref domain.DatasetRef, purchaser string) (domain.Listing, error) {
	if ref.IsZero() {
		return domain.Listing{}, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(purchaser) == "" {
		return domain.Listing{}, fmt.Errorf("%w: purchaser address is required", domain.ErrInvalidInput)
	}
	return s.listings.RecordAccess(ctx, ref, strings.TrimSpace(purchaser))
}

// RecordPurchase upserts the purchase record for (dataset, purchaser).
// The second purchase for the same pair updates token/tx in place and reports
// created=false. Concurrent first purchases collapse to one row at the store
// level; last write wins on the mutable fields.
func (s *Service) RecordPurchase(ctx context.Context, ref domain.DatasetRef, input RecordPurchaseInput) (RecordPurchaseResult, error) {
	address := strings.ToLower(strings.TrimSpace(input.PurchaserAddress))
	if ref.IsZero() || address == "" || input.PurchaserTokenID == nil {
		return RecordPurchaseResult{}, fmt.Errorf("%w: dataset_id, purchaser_address and purchaser_token_id are required", domain.ErrInvalidInput)
	}

	datasetID := ref.String()
	now := s.nowFn()

	created := false
	record, err := s.purchases.GetByDatasetAndAddress(ctx, datasetID, address)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		created = true
		record = domain.PurchaseRecord{
			ID:               uuid.NewString(),
			DatasetID:        datasetID,
			PurchaserAddress: address,
			PurchasedAt:      now,
		}
	case err != nil:
		return RecordPurchaseResult{}, err
	}

	record.PurchaserTokenID = *input.PurchaserTokenID
	record.TxHash = input.TxHash
	if input.DecryptionKey != "" {
		record.DecryptionKey = input.DecryptionKey
	}
	record.UpdatedAt = now

	if err := s.purchases.UpsertWithOutboxTx(ctx, record, purchaseRecordedEvent(record, created, now)); err != nil {
		return RecordPurchaseResult{}, err
	}
	return RecordPurchaseResult{Created: created}, nil
}

// ListPurchases returns the enriched purchase views for an address, optionally
// filtered to one token. Enrichment runs one pass per call with no caching.
func (s *Service) ListPurchases(ctx context.Context, input ListPurchasesInput) ([]domain.PurchaseView, error) {
	address := strings.ToLower(strings.TrimSpace(input.Address))
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", domain.ErrInvalidInput)
	}
	records, err := s.purchases.ListByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	if input.TokenID != nil {
		filtered := records[:0]
		for _, rec := range records {
			if rec.PurchaserTokenID == *input.TokenID {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}
	return s.enrich(ctx, records)
}

// MyPurchases lists the datasets whose purchaser set contains the address,
// newest first. The set stores addresses with the case they were submitted in.
func (s *Service) MyPurchases(ctx context.Context, address string) ([]domain.Listing, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, fmt.Errorf("%w: address is required", domain.ErrInvalidInput)
	}
	return s.listings.ListByPurchaser(ctx, address)
}

// enrich joins each purchase with its listing. A missing listing never drops
// the record: the view falls back to the purchase's own snapshots and the
// default title. Snapshots stored on the purchase win over listing fields.
func (s *Service) enrich(ctx context.Context, records []domain.PurchaseRecord) ([]domain.PurchaseView, error) {
	views := make([]domain.PurchaseView, 0, len(records))
	for _, rec := range records {
		view := domain.PurchaseView{
			DatasetID:        rec.DatasetID,
			PurchaserTokenID: rec.PurchaserTokenID,
			PurchaseTxHash:   rec.TxHash,
			PurchasedAt:      rec.PurchasedAt,
		}
		listing, err := s.listings.GetByRef(ctx, domain.ParseDatasetRef(rec.DatasetID))
		switch {
		case err == nil:
			view.Title = listing.Title
			view.Description = listing.Description
			view.CID = listing.CID
			view.ImageCID = listing.ImageCID
			view.MetadataCID = listing.MetadataCID
			view.DecryptionKey = listing.DecryptionKey
		case errors.Is(err, domain.ErrNotFound):
			// best-effort view from the purchase record alone
		default:
			return nil, err
		}
		if rec.Title != "" {
			view.Title = rec.Title
		}
		if rec.DecryptionKey != "" {
			view.DecryptionKey = rec.DecryptionKey
		}
		if view.Title == "" {
			view.Title = domain.DefaultTitle
		}
		views = append(views, view)
	}
	return views, nil
}
