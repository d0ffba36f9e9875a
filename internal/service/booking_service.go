package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/roadmate/internal/access"
	"github.com/Leganyst/roadmate/internal/model"
	"github.com/Leganyst/roadmate/internal/pagination"
	"github.com/Leganyst/roadmate/internal/repository"
)

// BookingService: старый поток бронирований с отзывами.
// Новые заявки идут через RequestService; здесь только CRUD.
type BookingService struct {
	bookings repository.BookingRepository
	reviews  repository.ReviewRepository
	services repository.ServiceRepository
}

func NewBookingService(
	bookings repository.BookingRepository,
	reviews repository.ReviewRepository,
	services repository.ServiceRepository,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		reviews:  reviews,
		services: services,
	}
}

type BookingInput struct {
	ServiceID   string
	BookingDate time.Time
	Address     string
	Notes       string
}

func (s *BookingService) Create(ctx context.Context, customer *model.User, in BookingInput) (*model.Booking, error) {
	if customer == nil {
		return nil, ErrPermissionDenied
	}
	serviceID, err := uuid.Parse(in.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("service %q: %w", in.ServiceID, ErrNotFound)
	}
	listing, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		return nil, notFound(err, "service %s", serviceID)
	}
	if !listing.IsAvailable {
		return nil, fieldError("service", "This service is currently unavailable.")
	}

	verr := &ValidationError{}
	if in.BookingDate.IsZero() {
		verr.Add("booking_date", "This field is required.")
	}
	address := strings.TrimSpace(in.Address)
	if address == "" {
		verr.Add("address", "This field is required.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	b := &model.Booking{
		ServiceID:   listing.ID,
		CustomerID:  customer.ID,
		BookingDate: in.BookingDate.UTC(),
		Address:     address,
		Notes:       strings.TrimSpace(in.Notes),
		Status:      model.BookingStatusPending,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	b.Service = listing
	return b, nil
}

// Get: бронирование видят клиент, провайдер услуги и персонал.
func (s *BookingService) Get(ctx context.Context, actor access.Identity, bookingID string) (*model.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, b) {
		return nil, fmt.Errorf("booking %s: %w", b.ID, ErrPermissionDenied)
	}
	return b, nil
}

func (s *BookingService) ListForCustomer(ctx context.Context, customerID uuid.UUID, page, pageSize int) (pagination.Page[model.Booking], error) {
	page, pageSize = pagination.Normalize(page, pageSize)
	items, total, err := s.bookings.ListByCustomer(ctx, customerID, pageSize, pagination.Offset(page, pageSize))
	if err != nil {
		return pagination.Page[model.Booking]{}, fmt.Errorf("list bookings for customer %s: %w", customerID, err)
	}
	return pagination.FromTotal(items, total, page, pageSize), nil
}

// UpdateStatus меняет статус: провайдер услуги или персонал.
func (s *BookingService) UpdateStatus(ctx context.Context, actor access.Identity, bookingID string, status model.BookingStatus) (*model.Booking, error) {
	if !status.Valid() {
		return nil, fieldError("status", fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", status))
	}
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff() && (b.Service == nil || !actor.OwnsProvider(b.Service.ProviderID)) {
		return nil, fmt.Errorf("booking %s: %w", b.ID, ErrPermissionDenied)
	}
	if err := s.bookings.UpdateStatus(ctx, b.ID, status); err != nil {
		return nil, notFound(err, "update booking %s", b.ID)
	}
	b.Status = status
	return b, nil
}

// Delete: клиент-владелец или персонал. Отзыв удаляется вместе с бронированием.
func (s *BookingService) Delete(ctx context.Context, actor access.Identity, bookingID string) error {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return err
	}
	if !ownsBooking(actor, b) && !actor.IsStaff() {
		return fmt.Errorf("booking %s: %w", b.ID, ErrPermissionDenied)
	}
	if err := s.bookings.Delete(ctx, b.ID); err != nil {
		return notFound(err, "delete booking %s", b.ID)
	}
	return nil
}

// AddReview: оценка 1..5, одна на бронирование, только от клиента бронирования.
func (s *BookingService) AddReview(ctx context.Context, actor access.Identity, bookingID string, rating int, comment string) (*model.Review, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !ownsBooking(actor, b) {
		return nil, fmt.Errorf("booking %s: %w", b.ID, ErrPermissionDenied)
	}

	verr := &ValidationError{}
	if rating < model.MinRating || rating > model.MaxRating {
		verr.Add("rating", fmt.Sprintf("Rating must be between %d and %d.", model.MinRating, model.MaxRating))
	}
	if b.Review != nil {
		verr.Add("", "This booking has already been reviewed.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	rv := &model.Review{
		BookingID: b.ID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, fmt.Errorf("create review for booking %s: %w", b.ID, err)
	}
	return rv, nil
}

func (s *BookingService) GetReview(ctx context.Context, bookingID string) (*model.Review, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("booking %q: %w", bookingID, ErrNotFound)
	}
	rv, err := s.reviews.GetByBookingID(ctx, id)
	if err != nil {
		return nil, notFound(err, "review of booking %s", id)
	}
	return rv, nil
}

func (s *BookingService) DeleteReview(ctx context.Context, actor access.Identity, bookingID string) error {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return err
	}
	if !ownsBooking(actor, b) && !actor.IsStaff() {
		return fmt.Errorf("booking %s: %w", b.ID, ErrPermissionDenied)
	}
	if b.Review == nil {
		return fmt.Errorf("review of booking %s: %w", b.ID, ErrNotFound)
	}
	if err := s.reviews.Delete(ctx, b.Review.ID); err != nil {
		return notFound(err, "delete review %s", b.Review.ID)
	}
	return nil
}

func (s *BookingService) load(ctx context.Context, bookingID string) (*model.Booking, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("booking %q: %w", bookingID, ErrNotFound)
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load booking %s: %w", id, err)
	}
	return b, nil
}

func ownsBooking(actor access.Identity, b *model.Booking) bool {
	return actor.User != nil && actor.User.ID == b.CustomerID
}

func canView(actor access.Identity, b *model.Booking) bool {
	if ownsBooking(actor, b) || actor.IsStaff() {
		return true
	}
	return b.Service != nil && actor.OwnsProvider(b.Service.ProviderID)
}
