package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/roadmate/internal/access"
	"github.com/Leganyst/roadmate/internal/service"
)

const providerRegisteredPath = access.PathLogin + "?type=provider"

func (h *Handler) providerRegisterPage(c *gin.Context) {
	h.renderRegisterForm(c, nil)
}

func (h *Handler) renderRegisterForm(c *gin.Context, form gin.H) {
	categories, err := h.svc.Catalog.ActiveCategories(c.Request.Context())
	if err != nil {
		log.Printf("provider register: %v", err)
	}
	if form == nil {
		form = gin.H{}
	}
	form["categories"] = categories
	h.render(c, http.StatusOK, "provider_register.html", form)
}

func (h *Handler) providerRegister(c *gin.Context) {
	in := service.RegistrationInput{
		Username:    c.PostForm("username"),
		Email:       c.PostForm("email"),
		Password1:   c.PostForm("password1"),
		Password2:   c.PostForm("password2"),
		CompanyName: c.PostForm("company_name"),
		PhoneNumber: c.PostForm("phone_number"),
		Address:     c.PostForm("address"),
		CategoryIDs: c.PostFormArray("service_categories"),
	}

	if _, err := h.svc.Providers.Register(c.Request.Context(), in); err != nil {
		var verr *service.ValidationError
		if !errors.As(err, &verr) {
			log.Printf("provider register %q: %v", in.Username, err)
			addFlash(c, levelError, "An error occurred while creating your account. Please try again.")
		} else {
			flashValidation(c, verr)
		}
		h.renderRegisterForm(c, gin.H{
			"username":           in.Username,
			"email":              in.Email,
			"company_name":       in.CompanyName,
			"phone_number":       in.PhoneNumber,
			"address":            in.Address,
			"service_categories": in.CategoryIDs,
		})
		return
	}

	addFlash(c, levelSuccess, "Your provider account has been created successfully! Please wait for admin approval before logging in.")
	h.redirect(c, providerRegisteredPath)
}

func (h *Handler) providerDashboard(c *gin.Context) {
	d, err := h.svc.Dashboards.Provider(c.Request.Context(), identityOf(c))
	if err != nil {
		h.fail(c, err, failure{redirect: access.PathHome})
		return
	}

	h.render(c, http.StatusOK, "provider_dashboard.html", gin.H{
		"provider":           d.Provider,
		"services":           d.Services,
		"recent_bookings":    d.RecentBookings,
		"stats":              d.Stats,
		"service_categories": d.ServiceCategories,
		"service_requests":   d.ServiceRequests,
	})
}

// listings: все предложения провайдера, включая недоступные.
func (h *Handler) listings(c *gin.Context) {
	id := identityOf(c)
	listings, total, err := h.svc.Catalog.Listings(c.Request.Context(), id.Provider.ID)
	if err != nil {
		h.fail(c, err, failure{redirect: access.PathProviderDashboard})
		return
	}
	h.render(c, http.StatusOK, "provider_services.html", gin.H{
		"services": listings,
		"total":    total,
	})
}

func (h *Handler) addListing(c *gin.Context) {
	listing, err := h.svc.Catalog.AddListing(c.Request.Context(), identityOf(c), service.ListingInput{
		Title:       c.PostForm("title"),
		CategoryID:  c.PostForm("category"),
		Price:       c.PostForm("price"),
		Description: c.PostForm("description"),
	})
	if err != nil {
		h.fail(c, err, failure{redirect: access.PathProviderDashboard})
		return
	}
	addFlash(c, levelSuccess, "Service \""+listing.Title+"\" has been added.")
	h.redirect(c, access.PathProviderDashboard)
}

func (h *Handler) setListingAvailability(c *gin.Context) {
	available, err := strconv.ParseBool(c.DefaultPostForm("available", "false"))
	if err != nil {
		addFlash(c, levelError, "Available: Enter a valid boolean.")
		h.redirect(c, access.PathProviderDashboard)
		return
	}

	listing, err := h.svc.Catalog.SetListingAvailability(c.Request.Context(), identityOf(c), c.Param("id"), available)
	if err != nil {
		h.fail(c, err, failure{
			redirect: access.PathProviderDashboard,
			notFound: "Service not found.",
		})
		return
	}
	state := "unavailable"
	if listing.IsAvailable {
		state = "available"
	}
	addFlash(c, levelSuccess, "Service \""+listing.Title+"\" is now "+state+".")
	h.redirect(c, access.PathProviderDashboard)
}
