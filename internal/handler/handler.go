package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Leganyst/roadmate/internal/access"
	"github.com/Leganyst/roadmate/internal/service"
)

// Services: всё, что нужно веб-слою.
type Services struct {
	Identity   *service.IdentityService
	Providers  *service.ProviderService
	Requests   *service.RequestService
	Sessions   *service.SessionService
	Catalog    *service.CatalogService
	Dashboards *service.DashboardService
	Bookings   *service.BookingService
	Settings   *service.SettingsService
}

type Options struct {
	CookieSecure bool
	CookieDomain string
	CORSOrigins  []string
	// Renderer по умолчанию: JSONRenderer.
	Renderer Renderer
}

type Handler struct {
	svc      Services
	opts     Options
	renderer Renderer
}

func New(svc Services, opts Options) *Handler {
	r := opts.Renderer
	if r == nil {
		r = JSONRenderer{}
	}
	return &Handler{svc: svc, opts: opts, renderer: r}
}

// Router собирает gin.Engine со всеми маршрутами сайта.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     h.opts.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(h.flashes())
	r.Use(h.authenticate())

	r.GET("/", h.home)
	r.GET("/login/", h.loginPage)
	r.POST("/login/", h.login)
	r.GET("/logout/", h.logout)
	r.POST("/logout/", h.logout)
	r.GET("/signup/", h.signupPage)
	r.POST("/signup/", h.signup)
	r.GET("/services/:name/", h.servicePage)

	r.GET("/provider/register/", h.anonymousOnly, h.providerRegisterPage)
	r.POST("/provider/register/", h.anonymousOnly, h.providerRegister)

	authed := r.Group("/", h.requireLogin)
	{
		authed.GET("/profile/", h.profilePage)
		authed.POST("/profile/", h.updateProfile)
		authed.GET("/my-bookings/", h.myBookings)

		authed.POST("/service-request/:provider_id/:category_id/", h.createRequest)
		authed.POST("/service-request/update/:request_id/", h.updateRequest)

		authed.GET("/bookings/", h.bookings)
		authed.POST("/bookings/", h.createBooking)
		authed.GET("/bookings/:id/", h.bookingDetail)
		authed.POST("/bookings/:id/status/", h.updateBookingStatus)
		authed.POST("/bookings/:id/delete/", h.deleteBooking)
		authed.POST("/bookings/:id/review/", h.addReview)
		authed.POST("/bookings/:id/review/delete/", h.deleteReview)
	}

	provider := r.Group("/provider", h.requireLogin, h.providerGate)
	{
		provider.GET("/dashboard/", h.providerDashboard)
		provider.GET("/services/", h.listings)
		provider.POST("/services/", h.addListing)
		provider.POST("/services/:id/availability/", h.setListingAvailability)
	}

	admins := r.Group("/admins", h.requireLogin, h.adminGate)
	{
		admins.GET("/dashboard/", h.adminDashboard)
		admins.POST("/dashboard/", h.adminDecision)
	}

	return r
}

// Сообщения шлюза доступа.
var gateMessages = map[error]string{
	access.ErrStaffOnly:       "You do not have permission to access this page.",
	access.ErrNotProvider:     "You do not have permission to access this page.",
	access.ErrPendingApproval: "Your account is pending approval from the administrator. You will be able to access the dashboard once approved.",
}
