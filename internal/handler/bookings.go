package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/roadmate/internal/model"
	"github.com/Leganyst/roadmate/internal/pagination"
	"github.com/Leganyst/roadmate/internal/service"
)

const bookingsPath = "/bookings/"

// Форматы поля booking_date: datetime-local из формы и RFC3339.
var bookingDateLayouts = []string{"2006-01-02T15:04", time.RFC3339}

func bookingPath(id string) string {
	return bookingsPath + id + "/"
}

// bookings: старые бронирования клиента постранично.
func (h *Handler) bookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(pagination.DefaultPageSize)))

	id := identityOf(c)
	p, err := h.svc.Bookings.ListForCustomer(c.Request.Context(), id.User.ID, page, size)
	if err != nil {
		h.fail(c, err, failure{})
		return
	}
	h.render(c, http.StatusOK, "bookings.html", gin.H{"page": p})
}

func parseBookingDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, true
	}
	for _, layout := range bookingDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (h *Handler) createBooking(c *gin.Context) {
	date, ok := parseBookingDate(c.PostForm("booking_date"))
	if !ok {
		addFlash(c, levelError, "Booking date: Enter a valid date/time.")
		h.redirect(c, bookingsPath)
		return
	}

	b, err := h.svc.Bookings.Create(c.Request.Context(), identityOf(c).User, service.BookingInput{
		ServiceID:   c.PostForm("service_id"),
		BookingDate: date,
		Address:     c.PostForm("address"),
		Notes:       c.PostForm("notes"),
	})
	if err != nil {
		h.fail(c, err, failure{
			redirect: bookingsPath,
			notFound: "Service not found.",
		})
		return
	}
	addFlash(c, levelSuccess, "Booking for \""+b.Service.Title+"\" has been created.")
	h.redirect(c, bookingPath(b.ID.String()))
}

func (h *Handler) bookingDetail(c *gin.Context) {
	ctx := c.Request.Context()
	b, err := h.svc.Bookings.Get(ctx, identityOf(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, failure{
			redirect: bookingsPath,
			notFound: "Booking not found.",
			denied:   "You do not have permission to view this booking.",
		})
		return
	}

	review, err := h.svc.Bookings.GetReview(ctx, b.ID.String())
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		h.fail(c, err, failure{redirect: bookingsPath})
		return
	}
	h.render(c, http.StatusOK, "booking_detail.html", gin.H{
		"booking": b,
		"review":  review,
	})
}

// updateBookingStatus: провайдер услуги или персонал.
func (h *Handler) updateBookingStatus(c *gin.Context) {
	b, err := h.svc.Bookings.UpdateStatus(
		c.Request.Context(),
		identityOf(c),
		c.Param("id"),
		model.BookingStatus(c.PostForm("status")),
	)
	if err != nil {
		h.fail(c, err, failure{
			redirect: bookingPath(c.Param("id")),
			notFound: "Booking not found.",
			denied:   "You do not have permission to update this booking.",
		})
		return
	}
	addFlash(c, levelSuccess, "Booking is now "+string(b.Status)+".")
	h.redirect(c, bookingPath(b.ID.String()))
}

func (h *Handler) deleteBooking(c *gin.Context) {
	err := h.svc.Bookings.Delete(c.Request.Context(), identityOf(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, failure{
			redirect: bookingsPath,
			notFound: "Booking not found.",
			denied:   "You do not have permission to delete this booking.",
		})
		return
	}
	addFlash(c, levelSuccess, "Booking has been deleted.")
	h.redirect(c, bookingsPath)
}

func (h *Handler) addReview(c *gin.Context) {
	rating, err := strconv.Atoi(c.PostForm("rating"))
	if err != nil {
		addFlash(c, levelError, "Rating: Enter a whole number.")
		h.redirect(c, bookingsPath)
		return
	}

	_, err = h.svc.Bookings.AddReview(c.Request.Context(), identityOf(c), c.Param("id"), rating, c.PostForm("comment"))
	if err != nil {
		h.fail(c, err, failure{
			redirect: bookingsPath,
			notFound: "Booking not found.",
			denied:   "You can only review your own bookings.",
		})
		return
	}
	addFlash(c, levelSuccess, "Thank you for your review!")
	h.redirect(c, bookingsPath)
}

func (h *Handler) deleteReview(c *gin.Context) {
	err := h.svc.Bookings.DeleteReview(c.Request.Context(), identityOf(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, failure{
			redirect: bookingPath(c.Param("id")),
			notFound: "Review not found.",
			denied:   "You do not have permission to delete this review.",
		})
		return
	}
	addFlash(c, levelSuccess, "Review has been deleted.")
	h.redirect(c, bookingPath(c.Param("id")))
}
