package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Leganyst/roadmate/internal/access"
	"github.com/Leganyst/roadmate/internal/model"
	"github.com/Leganyst/roadmate/internal/repository"
)

// Страницы услуг: slug -> имя категории.
var categorySlugs = map[string]string{
	"fuel-delivery": "Fuel Delivery",
	"towing":        "Towing Service",
	"mechanic":      "On-Site Mechanic",
	"battery":       "Battery Jump Start",
	"tire":          "Tire Change",
	"lockout":       "Lockout Service",
}

// Старые короткие адреса /services/<name>/.
var legacySlugs = map[string]string{
	"fuel":     "fuel-delivery",
	"towing":   "towing",
	"mechanic": "mechanic",
	"battery":  "battery",
	"tire":     "tire",
	"lockout":  "lockout",
}

// CanonicalSlug приводит короткое имя к slug страницы. ok=false: такой страницы нет.
func CanonicalSlug(name string) (slug string, ok bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := categorySlugs[name]; ok {
		return name, true
	}
	slug, ok = legacySlugs[name]
	return slug, ok
}

// CategoryPage: публичная страница вида помощи.
type CategoryPage struct {
	Slug      string
	Category  *model.ServiceCategory
	Providers []model.ServiceProvider
}

type CatalogService struct {
	categories repository.CategoryRepository
	providers  repository.ProviderRepository
	services   repository.ServiceRepository
}

func NewCatalogService(
	categories repository.CategoryRepository,
	providers repository.ProviderRepository,
	services repository.ServiceRepository,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		providers:  providers,
		services:   services,
	}
}

func (s *CatalogService) ActiveCategories(ctx context.Context) ([]model.ServiceCategory, error) {
	categories, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active categories: %w", err)
	}
	return categories, nil
}

// CategoryPage: подтверждённые и активные провайдеры, предлагающие категорию.
func (s *CatalogService) CategoryPage(ctx context.Context, name string) (*CategoryPage, error) {
	slug, ok := CanonicalSlug(name)
	if !ok {
		return nil, fmt.Errorf("service page %q: %w", name, ErrNotFound)
	}
	category, err := s.categories.FindActiveByName(ctx, categorySlugs[slug])
	if err != nil {
		return nil, notFound(err, "category %q", categorySlugs[slug])
	}
	providers, err := s.providers.ListBookableByCategory(ctx, category.ID)
	if err != nil {
		return nil, fmt.Errorf("list providers for %q: %w", category.Name, err)
	}
	return &CategoryPage{Slug: slug, Category: category, Providers: providers}, nil
}

type ListingInput struct {
	Title       string
	CategoryID  string
	Price       string
	Description string
}

// decimal(10,2): не больше 8 цифр до запятой.
const maxListingPrice = 1e8

// AddListing добавляет предложение провайдера в одной из его категорий.
func (s *CatalogService) AddListing(ctx context.Context, actor access.Identity, in ListingInput) (*model.Service, error) {
	if !actor.IsProvider() {
		return nil, ErrPermissionDenied
	}

	verr := &ValidationError{}
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		verr.Add("title", "This field is required.")
	case len(title) > 200:
		verr.Add("title", "Ensure this value has at most 200 characters.")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(in.Price), 64)
	switch {
	case err != nil:
		verr.Add("price", "Enter a number.")
	case math.IsNaN(price) || math.IsInf(price, 0):
		verr.Add("price", "Enter a number.")
	case price < 0:
		verr.Add("price", "Ensure this value is greater than or equal to 0.")
	case price >= maxListingPrice:
		verr.Add("price", "Ensure that there are no more than 8 digits before the decimal point.")
	}

	categoryID, err := uuid.Parse(strings.TrimSpace(in.CategoryID))
	if err != nil || !actor.Provider.OffersCategory(categoryID) {
		verr.Add("category", "Select a valid choice. That choice is not one of the available choices.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	listing := &model.Service{
		ProviderID:  actor.Provider.ID,
		CategoryID:  categoryID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		IsAvailable: true,
	}
	if err := s.services.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing %q: %w", title, err)
	}
	return listing, nil
}

// SetListingAvailability: только владелец листинга.
func (s *CatalogService) SetListingAvailability(ctx context.Context, actor access.Identity, listingID string, available bool) (*model.Service, error) {
	id, err := uuid.Parse(listingID)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", listingID, ErrNotFound)
	}
	listing, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "listing %s", id)
	}
	if !actor.OwnsProvider(listing.ProviderID) {
		return nil, fmt.Errorf("listing %s: %w", id, ErrPermissionDenied)
	}
	if err := s.services.SetAvailability(ctx, id, available); err != nil {
		return nil, fmt.Errorf("set availability of listing %s: %w", id, err)
	}
	listing.IsAvailable = available
	return listing, nil
}

// Listings: предложения провайдера и их общее число.
func (s *CatalogService) Listings(ctx context.Context, providerID uuid.UUID) ([]model.Service, int64, error) {
	listings, total, err := s.services.ListByProvider(ctx, providerID)
	if err != nil {
		return nil, 0, fmt.Errorf("list listings of provider %s: %w", providerID, err)
	}
	return listings, total, nil
}
