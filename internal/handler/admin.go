package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/roadmate/internal/access"
)

func (h *Handler) adminDashboard(c *gin.Context) {
	d := h.svc.Dashboards.Admin(c.Request.Context())
	h.render(c, http.StatusOK, "admin_dashboard_simple.html", gin.H{
		"title":             "Admin Dashboard",
		"stats":             d.Stats,
		"pending_providers": d.PendingProviders,
		"all_providers":     d.Providers,
		"recent_requests":   d.RecentRequests,
		"current_date":      d.CurrentDate.Format("2006-01-02"),
	})
}

// adminDecision: кнопки "одобрить" и "отклонить" в списке заявок провайдеров.
func (h *Handler) adminDecision(c *gin.Context) {
	ctx := c.Request.Context()
	providerID := c.PostForm("provider_id")
	notFound := failure{redirect: access.PathAdminDashboard, notFound: "Provider not found."}

	_, approve := c.GetPostForm("approve_provider")
	_, reject := c.GetPostForm("reject_provider")

	switch {
	case approve:
		p, err := h.svc.Providers.Approve(ctx, providerID)
		if err != nil {
			h.fail(c, err, notFound)
			return
		}
		addFlash(c, levelSuccess, fmt.Sprintf("Provider \"%s\" has been approved!", p.CompanyName))
	case reject:
		if err := h.svc.Providers.Reject(ctx, providerID); err != nil {
			h.fail(c, err, notFound)
			return
		}
		addFlash(c, levelSuccess, "Provider request has been rejected and removed.")
	}
	h.redirect(c, access.PathAdminDashboard)
}
