package handler

import (
	"errors"
	"log"
	"net/url"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/roadmate/internal/access"
	"github.com/Leganyst/roadmate/internal/service"
)

const (
	sessionCookie = "session"
	identityKey   = "roadmate.identity"
)

// authenticate восстанавливает личность из cookie сессии. Плохой токен не ошибка:
// запрос продолжается анонимно, а cookie стирается.
func (h *Handler) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}
		id, err := h.svc.Sessions.Identify(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrSessionInvalid) {
				log.Printf("identify session: %v", err)
			}
			h.setCookie(c, sessionCookie, "", -1)
			c.Next()
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

func identityOf(c *gin.Context) access.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(access.Identity); ok {
			return id
		}
	}
	return access.Identity{}
}

// startSession выдаёт cookie для уже проверенной личности.
func (h *Handler) startSession(c *gin.Context, id access.Identity) error {
	token, _, err := h.svc.Sessions.Establish(c.Request.Context(), id)
	if err != nil {
		return err
	}
	h.setCookie(c, sessionCookie, token, int(h.svc.Sessions.TTL().Seconds()))
	c.Set(identityKey, id)
	return nil
}

func (h *Handler) requireLogin(c *gin.Context) {
	if !identityOf(c).Anonymous() {
		c.Next()
		return
	}
	h.redirect(c, access.PathLogin+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
	c.Abort()
}

// anonymousOnly: вошедших уводим на главную.
func (h *Handler) anonymousOnly(c *gin.Context) {
	if identityOf(c).Anonymous() {
		c.Next()
		return
	}
	h.redirect(c, access.PathHome)
	c.Abort()
}

func (h *Handler) adminGate(c *gin.Context) {
	h.gate(c, access.CheckAdminDashboard(identityOf(c)))
}

func (h *Handler) providerGate(c *gin.Context) {
	h.gate(c, access.CheckProviderDashboard(identityOf(c)))
}

func (h *Handler) gate(c *gin.Context, err error) {
	if err == nil {
		c.Next()
		return
	}
	level := levelError
	if errors.Is(err, access.ErrPendingApproval) {
		level = levelWarning
	}
	if msg, ok := gateMessages[err]; ok {
		addFlash(c, level, msg)
	}
	h.redirect(c, access.PathHome)
	c.Abort()
}

// failure: куда уводить и что говорить, когда операция не удалась.
type failure struct {
	redirect string
	notFound string
	denied   string
}

// fail превращает ошибку сервиса в flash-сообщения и редирект. Процесс не падает никогда.
func (h *Handler) fail(c *gin.Context, err error, f failure) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		flashValidation(c, verr)
	case errors.Is(err, service.ErrNotFound):
		addFlash(c, levelError, orDefault(f.notFound, "The requested item was not found."))
	case errors.Is(err, service.ErrPermissionDenied):
		addFlash(c, levelError, orDefault(f.denied, "You do not have permission to perform this action."))
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		addFlash(c, levelError, "An unexpected error occurred. Please try again.")
	}
	h.redirect(c, orDefault(f.redirect, access.PathHome))
}

// flashValidation показывает ошибки формы как "Field: message".
func flashValidation(c *gin.Context, verr *service.ValidationError) {
	for _, fe := range verr.Errors {
		if fe.Field == "" {
			addFlash(c, levelError, fe.Message)
			continue
		}
		addFlash(c, levelError, capitalize(fe.Field)+": "+fe.Message)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// safeNext пропускает только локальные пути, чтобы ?next= не уводил на чужой сайт.
func safeNext(next string) (string, bool) {
	next = strings.TrimSpace(next)
	if next == "" || next == "None" {
		return "", false
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "", false
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return "", false
	}
	return next, true
}
