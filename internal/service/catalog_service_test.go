package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/Leganyst/roadmate/internal/access"
)

func TestCanonicalSlug(t *testing.T) {
	cases := []struct {
		in   string
		slug string
		ok   bool
	}{
		{"towing", "towing", true},
		{"fuel", "fuel-delivery", true},
		{"fuel-delivery", "fuel-delivery", true},
		{" Battery ", "battery", true},
		{"lockout", "lockout", true},
		{"helicopter", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		slug, ok := CanonicalSlug(tc.in)
		if slug != tc.slug || ok != tc.ok {
			t.Fatalf("CanonicalSlug(%q) = %q, %t; want %q, %t", tc.in, slug, ok, tc.slug, tc.ok)
		}
	}
}

func TestCatalogService_CategoryPage_ListsBookableProviders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	towing := f.category(t, "Towing Service")
	fuel := f.category(t, "Fuel Delivery")

	f.approvedProvider(t, "zed", "Zed Tow", towing)
	f.approvedProvider(t, "acme", "Acme Towing", towing, fuel)
	f.register(t, "bob", "Bob Tow", towing)
	suspended := f.approvedProvider(t, "cid", "Cid Tow", towing)
	if err := f.db.Model(suspended.Provider).Update("is_active", false).Error; err != nil {
		t.Fatalf("suspend: %v", err)
	}

	page, err := f.catalog.CategoryPage(ctx, "towing")
	if err != nil {
		t.Fatalf("category page: %v", err)
	}
	if page.Category.ID != towing.ID {
		t.Fatalf("category = %s, want towing", page.Category.Name)
	}
	var names []string
	for _, p := range page.Providers {
		names = append(names, p.CompanyName)
	}
	if len(names) != 2 || names[0] != "Acme Towing" || names[1] != "Zed Tow" {
		t.Fatalf("providers = %v, want [Acme Towing Zed Tow]", names)
	}

	fuelPage, err := f.catalog.CategoryPage(ctx, "fuel")
	if err != nil {
		t.Fatalf("legacy fuel page: %v", err)
	}
	if fuelPage.Slug != "fuel-delivery" || len(fuelPage.Providers) != 1 {
		t.Fatalf("fuel page = %s with %d providers", fuelPage.Slug, len(fuelPage.Providers))
	}
}

func TestCatalogService_CategoryPage_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.catalog.CategoryPage(ctx, "helicopter"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown slug: err = %v, want ErrNotFound", err)
	}
	// slug известен, но категории в базе нет
	if _, err := f.catalog.CategoryPage(ctx, "tire"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing category: err = %v, want ErrNotFound", err)
	}
}

func TestCatalogService_AddListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	towing := f.category(t, "Towing Service")
	fuel := f.category(t, "Fuel Delivery")
	acme := f.approvedProvider(t, "acme", "Acme Towing", towing)

	listing, err := f.catalog.AddListing(ctx, acme, ListingInput{
		Title:      "City tow",
		CategoryID: towing.ID.String(),
		Price:      "49.90",
	})
	if err != nil {
		t.Fatalf("add listing: %v", err)
	}
	if !listing.IsAvailable || listing.Price != 49.90 || listing.ProviderID != acme.Provider.ID {
		t.Fatalf("listing = %+v", listing)
	}

	_, err = f.catalog.AddListing(ctx, acme, ListingInput{Title: "Fuel", CategoryID: fuel.ID.String(), Price: "-1"})
	fields := fieldsOf(t, err)
	if len(fields["category"]) == 0 || len(fields["price"]) == 0 {
		t.Fatalf("fields = %v, want category and price errors", fields)
	}

	for _, price := range []string{"NaN", "Inf", "-Inf", "1e12", "100000000"} {
		_, err := f.catalog.AddListing(ctx, acme, ListingInput{Title: "Tow", CategoryID: towing.ID.String(), Price: price})
		if fields := fieldsOf(t, err); len(fields["price"]) == 0 {
			t.Fatalf("price %q: fields = %v, want price error", price, fields)
		}
	}
	if _, err := f.catalog.AddListing(ctx, acme, ListingInput{Title: "Long tow", CategoryID: towing.ID.String(), Price: "99999999.99"}); err != nil {
		t.Fatalf("max price: %v", err)
	}

	customer := access.Customer(f.customer(t, "alice"))
	if _, err := f.catalog.AddListing(ctx, customer, ListingInput{Title: "x", CategoryID: towing.ID.String(), Price: "1"}); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("customer: err = %v, want ErrPermissionDenied", err)
	}

	listings, total, err := f.catalog.Listings(ctx, acme.Provider.ID)
	if err != nil {
		t.Fatalf("listings: %v", err)
	}
	if total != 2 || len(listings) != 2 || listings[0].Category == nil {
		t.Fatalf("listings = %d/%d, category preloaded = %t", len(listings), total, len(listings) > 0 && listings[0].Category != nil)
	}
}

func TestCatalogService_SetListingAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	towing := f.category(t, "Towing Service")
	acme := f.approvedProvider(t, "acme", "Acme Towing", towing)
	rival := f.approvedProvider(t, "rival", "Rival Tow", towing)

	listing, err := f.catalog.AddListing(ctx, acme, ListingInput{Title: "City tow", CategoryID: towing.ID.String(), Price: "10"})
	if err != nil {
		t.Fatalf("add listing: %v", err)
	}

	if _, err := f.catalog.SetListingAvailability(ctx, rival, listing.ID.String(), false); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("rival: err = %v, want ErrPermissionDenied", err)
	}
	if _, err := f.catalog.SetListingAvailability(ctx, acme, uuid.NewString(), false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown listing: err = %v, want ErrNotFound", err)
	}

	got, err := f.catalog.SetListingAvailability(ctx, acme, listing.ID.String(), false)
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	stored, err := f.services.GetByID(ctx, listing.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.IsAvailable || stored.IsAvailable {
		t.Fatalf("listing still available")
	}
}
