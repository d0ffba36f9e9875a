package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/roadmate/internal/access"
	"github.com/Leganyst/roadmate/internal/service"
)

// home: категории и активные объявления. Ошибки чтения дают пустые списки.
func (h *Handler) home(c *gin.Context) {
	ctx := c.Request.Context()

	categories, err := h.svc.Catalog.ActiveCategories(ctx)
	if err != nil {
		log.Printf("home: %v", err)
	}
	notices, err := h.svc.Settings.ActiveNotices(ctx)
	if err != nil {
		log.Printf("home: %v", err)
	}

	h.render(c, http.StatusOK, "home.html", gin.H{
		"categories": categories,
		"notices":    notices,
	})
}

// servicePage: /services/<slug>/ и старые короткие адреса.
func (h *Handler) servicePage(c *gin.Context) {
	page, err := h.svc.Catalog.CategoryPage(c.Request.Context(), c.Param("name"))
	if err != nil {
		msg := "Service category not found."
		if _, ok := service.CanonicalSlug(c.Param("name")); !ok {
			msg = "Service not found."
		}
		h.fail(c, err, failure{redirect: access.PathHome, notFound: msg})
		return
	}

	h.render(c, http.StatusOK, "service_template.html", gin.H{
		"slug":                page.Slug,
		"category":            page.Category,
		"service_name":        page.Category.Name,
		"service_icon":        page.Category.Icon,
		"service_description": page.Category.Description,
		"providers":           page.Providers,
		"providers_count":     len(page.Providers),
	})
}
