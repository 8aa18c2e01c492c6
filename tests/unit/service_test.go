package unit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/researchdex/dataset-marketplace/internal/adapters/memory"
	"github.com/researchdex/dataset-marketplace/internal/application"
	"github.com/researchdex/dataset-marketplace/internal/domain"
	"github.com/researchdex/dataset-marketplace/internal/ports"
)

type fixture struct {
	service *application.Service
	repos   *memory.Repositories
}

func newFixture() *fixture {
	repos := memory.NewRepositories()
	svc := application.NewService(application.Dependencies{
		Config:    application.Config{ServiceID: "unit-test"},
		Listings:  repos.Listings,
		Purchases: repos.Purchases,
	})
	return &fixture{service: svc, repos: repos}
}

func int64Ptr(v int64) *int64 { return &v }

func (f *fixture) createDataset(t *testing.T, title, cid string) string {
	t.Helper()
	_, err := f.service.CreateListing(context.Background(), application.CreateListingInput{
		Title:         title,
		CID:           cid,
		AuthorAddress: "0xAuthor",
		DecryptionKey: "key-" + cid,
	})
	if err != nil {
		t.Fatalf("create listing failed: %v", err)
	}
	latest, err := f.repos.Listings.GetLatestByTitle(context.Background(), title)
	if err != nil {
		t.Fatalf("lookup created listing: %v", err)
	}
	return latest.ID
}

func TestCreateListingVersionChaining(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	for i, cid := range []string{"cid-1", "cid-2", "cid-3"} {
		res, err := f.service.CreateListing(ctx, application.CreateListingInput{
			Title:         "Climate Sensor Readings",
			CID:           cid,
			AuthorAddress: "0xAuthor",
		})
		if err != nil {
			t.Fatalf("create version %d failed: %v", i+1, err)
		}
		if res.Version != i+1 {
			t.Fatalf("expected version %d, got %d", i+1, res.Version)
		}
	}

	latest, err := f.repos.Listings.GetLatestByTitle(ctx, "Climate Sensor Readings")
	if err != nil {
		t.Fatalf("latest lookup failed: %v", err)
	}
	if latest.Version != 3 || latest.CID != "cid-3" {
		t.Fatalf("unexpected latest version: %+v", latest)
	}
	if latest.PreviousCID == nil || *latest.PreviousCID != "cid-2" {
		t.Fatalf("expected previous cid cid-2, got %v", latest.PreviousCID)
	}

	// a different title starts its own chain
	res, err := f.service.CreateListing(ctx, application.CreateListingInput{
		Title:         "Ocean Salinity Readings",
		CID:           "cid-other",
		AuthorAddress: "0xAuthor",
	})
	if err != nil {
		t.Fatalf("create unrelated listing failed: %v", err)
	}
	if res.Version != 1 {
		t.Fatalf("expected fresh chain at version 1, got %d", res.Version)
	}
}

func TestCreateListingValidation(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.service.CreateListing(context.Background(), application.CreateListingInput{
		Title: "   ",
		CID:   "cid-1",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestRecordAccessCountsViewsAndDeduplicatesPurchasers(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	id := f.createDataset(t, "Genome Index", "cid-g1")
	ref := domain.ParseDatasetRef(id)

	first, err := f.service.RecordAccess(ctx, ref, "0xBuyerA")
	if err != nil {
		t.Fatalf("first access failed: %v", err)
	}
	if first.Views != 1 || len(first.Purchasers) != 1 {
		t.Fatalf("unexpected state after first access: views=%d purchasers=%v", first.Views, first.Purchasers)
	}

	second, err := f.service.RecordAccess(ctx, ref, "0xBuyerA")
	if err != nil {
		t.Fatalf("repeat access failed: %v", err)
	}
	if second.Views != 2 {
		t.Fatalf("views must increment on every call, got %d", second.Views)
	}
	if len(second.Purchasers) != 1 {
		t.Fatalf("purchaser set must deduplicate, got %v", second.Purchasers)
	}

	third, err := f.service.RecordAccess(ctx, ref, "0xBuyerB")
	if err != nil {
		t.Fatalf("second purchaser access failed: %v", err)
	}
	if third.Views != 3 || len(third.Purchasers) != 2 {
		t.Fatalf("unexpected state after new purchaser: views=%d purchasers=%v", third.Views, third.Purchasers)
	}
}

func TestRecordAccessUnknownDataset(t *testing.T) {
	t.Parallel()

	f := newFixture()
	_, err := f.service.RecordAccess(context.Background(), domain.ParseDatasetRef("no-such-id"), "0xBuyer")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecordPurchaseUpsert(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	id := f.createDataset(t, "Market Ticks", "cid-m1")
	ref := domain.ParseDatasetRef(id)

	res, err := f.service.RecordPurchase(ctx, ref, application.RecordPurchaseInput{
		PurchaserAddress: "0xBUYER",
		PurchaserTokenID: int64Ptr(7),
		TxHash:           "0xtx1",
	})
	if err != nil {
		t.Fatalf("first purchase failed: %v", err)
	}
	if !res.Created {
		t.Fatalf("first purchase must report created")
	}

	res, err = f.service.RecordPurchase(ctx, ref, application.RecordPurchaseInput{
		PurchaserAddress: "0xbuyer",
		PurchaserTokenID: int64Ptr(9),
		TxHash:           "0xtx2",
	})
	if err != nil {
		t.Fatalf("repeat purchase failed: %v", err)
	}
	if res.Created {
		t.Fatalf("repeat purchase for the same pair must update, not create")
	}

	views, err := f.service.ListPurchases(ctx, application.ListPurchasesInput{Address: "0xBuyer"})
	if err != nil {
		t.Fatalf("list purchases failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected one purchase row per (dataset, purchaser), got %d", len(views))
	}
	if views[0].PurchaserTokenID != 9 || views[0].PurchaseTxHash != "0xtx2" {
		t.Fatalf("latest purchase values must win: %+v", views[0])
	}
	if views[0].Title != "Market Ticks" {
		t.Fatalf("expected enriched title, got %q", views[0].Title)
	}
}

func TestRecordPurchaseRequiresTokenID(t *testing.T) {
	t.Parallel()

	f := newFixture()
	id := f.createDataset(t, "Weather Grids", "cid-w1")
	_, err := f.service.RecordPurchase(context.Background(), domain.ParseDatasetRef(id), application.RecordPurchaseInput{
		PurchaserAddress: "0xBuyer",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestListPurchasesTokenFilter(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	idA := f.createDataset(t, "Set A", "cid-a")
	idB := f.createDataset(t, "Set B", "cid-b")

	for _, p := range []struct {
		id    string
		token int64
	}{
		{idA, 1},
		{idB, 2},
	} {
		if _, err := f.service.RecordPurchase(ctx, domain.ParseDatasetRef(p.id), application.RecordPurchaseInput{
			PurchaserAddress: "0xBuyer",
			PurchaserTokenID: int64Ptr(p.token),
		}); err != nil {
			t.Fatalf("purchase failed: %v", err)
		}
	}

	views, err := f.service.ListPurchases(ctx, application.ListPurchasesInput{
		Address: "0xBuyer",
		TokenID: int64Ptr(2),
	})
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if len(views) != 1 || views[0].Title != "Set B" {
		t.Fatalf("token filter returned wrong rows: %+v", views)
	}
}

func TestEnrichmentFallsBackToDefaultTitle(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	// purchase referencing a dataset the listing store no longer resolves
	if _, err := f.service.RecordPurchase(ctx, domain.ParseDatasetRef("legacy-raw-id"), application.RecordPurchaseInput{
		PurchaserAddress: "0xBuyer",
		PurchaserTokenID: int64Ptr(3),
	}); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	views, err := f.service.ListPurchases(ctx, application.ListPurchasesInput{Address: "0xBuyer"})
	if err != nil {
		t.Fatalf("list purchases failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("unresolvable dataset must not drop the record, got %d rows", len(views))
	}
	if views[0].Title != domain.DefaultTitle {
		t.Fatalf("expected default title, got %q", views[0].Title)
	}
	if views[0].DatasetID != "legacy-raw-id" {
		t.Fatalf("view must keep the purchase's dataset id, got %q", views[0].DatasetID)
	}
}

func TestMyPurchasesListsDatasetsContainingAddress(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	idA := f.createDataset(t, "Bought One", "cid-b1")
	f.createDataset(t, "Not Bought", "cid-n1")

	if _, err := f.service.RecordAccess(ctx, domain.ParseDatasetRef(idA), "0xBuyer"); err != nil {
		t.Fatalf("record access failed: %v", err)
	}

	items, err := f.service.MyPurchases(ctx, "0xBuyer")
	if err != nil {
		t.Fatalf("my purchases failed: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Bought One" {
		t.Fatalf("unexpected my-purchases result: %+v", items)
	}
}

func TestWritesEnqueueOutboxEvents(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	id := f.createDataset(t, "Evented Corpus", "cid-e1")

	if _, err := f.service.RecordPurchase(ctx, domain.ParseDatasetRef(id), application.RecordPurchaseInput{
		PurchaserAddress: "0xBuyer",
		PurchaserTokenID: int64Ptr(5),
	}); err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	records, err := f.repos.Outbox.ClaimUnpublished(ctx, 10, "claim-1", time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("claim unpublished failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected one event per write, got %d", len(records))
	}
	types := map[string]string{}
	for _, rec := range records {
		types[rec.EventType] = rec.PartitionKey
	}
	if types[application.EventListingCreated] != id {
		t.Fatalf("listing event missing or mis-keyed: %v", types)
	}
	if types[application.EventPurchaseRecorded] != id {
		t.Fatalf("purchase event missing or mis-keyed: %v", types)
	}
}

func seedListing(t *testing.T, f *fixture, listing domain.Listing) {
	t.Helper()
	if listing.Purchasers == nil {
		listing.Purchasers = []string{}
	}
	event := ports.OutboxEvent{
		EventID:    uuid.New(),
		EventType:  application.EventListingCreated,
		Payload:    []byte("{}"),
		OccurredAt: time.Now().UTC(),
	}
	if err := f.repos.Listings.CreateWithOutboxTx(context.Background(), listing, event); err != nil {
		t.Fatalf("seed listing: %v", err)
	}
}

func TestGetListingResolvesRawIDFallback(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	// a migrated row can carry an id that never qualifies as structured
	seedListing(t, f, domain.Listing{
		ID:            "legacy-dataset-001",
		Title:         "Legacy Corpus",
		CID:           "cid-legacy",
		Version:       1,
		AuthorAddress: "0xAuthor",
		UploadedAt:    time.Now().UTC(),
	})

	ref := domain.ParseDatasetRef("legacy-dataset-001")
	if ref.Structured() {
		t.Fatalf("fixture id must take the raw lookup path")
	}

	listing, err := f.service.GetListing(ctx, ref)
	if err != nil {
		t.Fatalf("raw fallback lookup failed: %v", err)
	}
	if listing.Title != "Legacy Corpus" {
		t.Fatalf("wrong listing resolved: %+v", listing)
	}

	updated, err := f.service.RecordAccess(ctx, ref, "0xBuyer")
	if err != nil {
		t.Fatalf("raw fallback access failed: %v", err)
	}
	if updated.Views != 1 || len(updated.Purchasers) != 1 {
		t.Fatalf("unexpected state after raw-id access: %+v", updated)
	}
}

func TestGetListingStructuredMatchIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	id := f.createDataset(t, "Hex Cased", "cid-h1")

	upper := domain.ParseDatasetRef(strings.ToUpper(id))
	if !upper.Structured() {
		t.Fatalf("uppercased hex id must stay structured")
	}

	listing, err := f.service.GetListing(ctx, upper)
	if err != nil {
		t.Fatalf("case-insensitive structured lookup failed: %v", err)
	}
	if listing.ID != id {
		t.Fatalf("expected stored id %q, got %q", id, listing.ID)
	}

	if _, err := f.service.RecordAccess(ctx, upper, "0xBuyer"); err != nil {
		t.Fatalf("case-insensitive structured access failed: %v", err)
	}
}

func TestGetListingInfoProjection(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	id := f.createDataset(t, "Projected", "cid-p1")

	info, err := f.service.GetListingInfo(ctx, domain.ParseDatasetRef(id))
	if err != nil {
		t.Fatalf("listing info failed: %v", err)
	}
	if info.Title != "Projected" || info.DecryptionKey != "key-cid-p1" {
		t.Fatalf("unexpected info projection: %+v", info)
	}
}
