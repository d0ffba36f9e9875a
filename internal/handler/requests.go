package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/roadmate/internal/access"
	"github.com/Leganyst/roadmate/internal/model"
	"github.com/Leganyst/roadmate/internal/service"
)

func (h *Handler) createRequest(c *gin.Context) {
	id := identityOf(c)
	conf, err := h.svc.Requests.Create(
		c.Request.Context(),
		id.User,
		c.Param("provider_id"),
		c.Param("category_id"),
		service.ContactFields{
			CustomerName:     c.PostForm("customer_name"),
			CustomerPhone:    c.PostForm("customer_phone"),
			CustomerLocation: c.PostForm("customer_location"),
			Description:      c.PostForm("description"),
		},
	)
	if err != nil {
		h.fail(c, err, failure{
			redirect: access.PathHome,
			notFound: "Provider or service not found.",
		})
		return
	}

	addFlash(c, levelSuccess, fmt.Sprintf(
		"Service request sent to %s! They will contact you shortly at %s.",
		conf.CompanyName, conf.CustomerPhone,
	))
	h.redirect(c, localReferer(c, access.PathHome))
}

func (h *Handler) updateRequest(c *gin.Context) {
	res, err := h.svc.Requests.Transition(
		c.Request.Context(),
		identityOf(c),
		c.Param("request_id"),
		c.PostForm("action"),
	)
	if err != nil {
		h.fail(c, err, failure{
			redirect: access.PathProviderDashboard,
			notFound: "Service request not found.",
			denied:   "You do not have permission to update this request.",
		})
		return
	}

	req := res.Request
	switch {
	case !res.Applied:
		addFlash(c, levelInfo, fmt.Sprintf("Service request from %s is already %s.", req.CustomerName, statusLabel(req.Status)))
	case req.Status == model.RequestStatusAccepted:
		addFlash(c, levelSuccess, fmt.Sprintf("Service request from %s has been accepted!", req.CustomerName))
	case req.Status == model.RequestStatusCancelled:
		addFlash(c, levelInfo, fmt.Sprintf("Service request from %s has been rejected.", req.CustomerName))
	case req.Status == model.RequestStatusCompleted:
		addFlash(c, levelSuccess, "Service request marked as completed!")
	}
	h.redirect(c, access.PathProviderDashboard)
}

// myBookings: заявки клиента по статусам.
func (h *Handler) myBookings(c *gin.Context) {
	id := identityOf(c)
	buckets, err := h.svc.Requests.ListForCustomer(c.Request.Context(), id.User.ID)
	if err != nil {
		h.fail(c, err, failure{redirect: access.PathHome})
		return
	}

	h.render(c, http.StatusOK, "my_bookings.html", gin.H{
		"bookings":           buckets.All,
		"pending_bookings":   buckets.Pending,
		"active_bookings":    buckets.Active,
		"completed_bookings": buckets.Completed,
		"cancelled_bookings": buckets.Cancelled,
		"total_bookings":     buckets.Total,
	})
}

// localReferer возвращает путь из Referer, если он ведёт на этот же сайт.
func localReferer(c *gin.Context, def string) string {
	ref := c.GetHeader("Referer")
	if ref == "" {
		return def
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != c.Request.Host) {
		return def
	}
	next, ok := safeNext(u.RequestURI())
	if !ok {
		return def
	}
	return next
}

func statusLabel(s model.RequestStatus) string {
	return strings.ReplaceAll(string(s), "_", " ")
}
