package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/roadmate/internal/access"
	"github.com/Leganyst/roadmate/internal/service"
)

func (h *Handler) loginPage(c *gin.Context) {
	id := identityOf(c)
	if !id.Anonymous() {
		h.redirect(c, access.LandingPath(id))
		return
	}
	next, _ := safeNext(c.Query("next"))
	h.render(c, http.StatusOK, "login.html", gin.H{
		"next":              next,
		"show_provider_tab": c.Query("type") == "provider",
	})
}

// login обслуживает обе вкладки формы: провайдера (поле provider_login) и обычную.
func (h *Handler) login(c *gin.Context) {
	if id := identityOf(c); !id.Anonymous() {
		h.redirect(c, access.LandingPath(id))
		return
	}

	ctx := c.Request.Context()
	username := c.PostForm("username")
	password := c.PostForm("password")
	_, providerLogin := c.GetPostForm("provider_login")

	next, _ := safeNext(c.DefaultPostForm("next", c.Query("next")))

	var (
		id  access.Identity
		err error
	)
	if providerLogin {
		id, err = h.svc.Providers.Login(ctx, username, password)
	} else {
		id, err = h.generalLogin(c, username, password)
	}
	if err != nil {
		var verr *service.ValidationError
		if !errors.As(err, &verr) {
			log.Printf("login %q: %v", username, err)
			addFlash(c, levelError, "An unexpected error occurred. Please try again.")
		} else {
			flashValidation(c, verr)
		}
		h.render(c, http.StatusOK, "login.html", gin.H{
			"next":              next,
			"show_provider_tab": providerLogin,
			"username":          username,
		})
		return
	}

	if err := h.startSession(c, id); err != nil {
		h.fail(c, fmt.Errorf("establish session: %w", err), failure{redirect: access.PathLogin})
		return
	}

	if providerLogin {
		addFlash(c, levelSuccess, "Successfully logged in as service provider.")
		h.redirect(c, access.PathProviderDashboard)
		return
	}
	landing := access.LandingPath(id)
	if landing == access.PathHome && next != "" {
		landing = next
	}
	h.redirect(c, landing)
}

// generalLogin обрабатывает обычную вкладку, роль определяется по пользователю.
func (h *Handler) generalLogin(c *gin.Context, username, password string) (access.Identity, error) {
	ctx := c.Request.Context()
	u, err := h.svc.Identity.Login(ctx, username, password)
	if err != nil {
		return access.Identity{}, err
	}
	id, err := h.svc.Identity.Resolve(ctx, u)
	if err != nil {
		return access.Identity{}, fmt.Errorf("resolve identity: %w", err)
	}
	return id, nil
}

func (h *Handler) logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil && token != "" {
		if err := h.svc.Sessions.Terminate(c.Request.Context(), token); err != nil {
			log.Printf("terminate session: %v", err)
		}
	}
	h.setCookie(c, sessionCookie, "", -1)
	c.Set(identityKey, access.Identity{})
	addFlash(c, levelSuccess, "You have been successfully logged out.")
	h.redirect(c, access.PathHome)
}

func (h *Handler) signupPage(c *gin.Context) {
	h.render(c, http.StatusOK, "signup.html", nil)
}

// signup создаёт клиента и сразу его логинит.
func (h *Handler) signup(c *gin.Context) {
	ctx := c.Request.Context()
	in := service.SignupInput{
		Username:  c.PostForm("username"),
		Email:     c.PostForm("email"),
		Password1: c.PostForm("password1"),
		Password2: c.PostForm("password2"),
	}

	u, err := h.svc.Identity.Signup(ctx, in)
	if err != nil {
		var verr *service.ValidationError
		if !errors.As(err, &verr) {
			h.fail(c, err, failure{redirect: "/signup/"})
			return
		}
		flashValidation(c, verr)
		h.render(c, http.StatusOK, "signup.html", gin.H{
			"username": in.Username,
			"email":    in.Email,
		})
		return
	}

	if err := h.startSession(c, access.Customer(u)); err != nil {
		log.Printf("signup %q: establish session: %v", u.Username, err)
	}
	addFlash(c, levelSuccess, fmt.Sprintf("Account created for %s!", u.Username))
	h.redirect(c, access.PathHome)
}
