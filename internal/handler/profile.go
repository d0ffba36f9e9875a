package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/roadmate/internal/service"
)

const profilePath = "/profile/"

func (h *Handler) profilePage(c *gin.Context) {
	h.render(c, http.StatusOK, "user_profile.html", nil)
}

func (h *Handler) updateProfile(c *gin.Context) {
	id := identityOf(c)
	email, ok := c.GetPostForm("email")
	if !ok {
		email = id.User.Email
	}

	_, err := h.svc.Identity.UpdateProfile(c.Request.Context(), id.User.ID, service.ProfileInput{
		FirstName: c.PostForm("first_name"),
		LastName:  c.PostForm("last_name"),
		Email:     email,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			flashValidation(c, verr)
			h.render(c, http.StatusOK, "user_profile.html", nil)
			return
		}
		h.fail(c, err, failure{redirect: profilePath})
		return
	}

	addFlash(c, levelSuccess, "Profile updated successfully!")
	h.redirect(c, profilePath)
}
