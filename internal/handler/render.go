package handler

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Leganyst/roadmate/internal/access"
)

// Renderer отрисовывает страницу по имени шаблона и контексту.
type Renderer interface {
	Render(c *gin.Context, status int, name string, data gin.H)
}

// JSONRenderer отдаёт контекст страницы как JSON. Используется, пока нет HTML-шаблонов.
type JSONRenderer struct{}

func (JSONRenderer) Render(c *gin.Context, status int, name string, data gin.H) {
	c.JSON(status, gin.H{"template": name, "context": data})
}

type flashLevel string

const (
	levelSuccess flashLevel = "success"
	levelInfo    flashLevel = "info"
	levelWarning flashLevel = "warning"
	levelError   flashLevel = "error"
)

type Flash struct {
	Level   flashLevel `json:"level"`
	Message string     `json:"message"`
}

const (
	flashCookie   = "flash"
	flashStateKey = "roadmate.flash"
)

type flashState struct {
	messages []Flash
}

// flashes читает сообщения из cookie прошлого запроса.
func (h *Handler) flashes() gin.HandlerFunc {
	return func(c *gin.Context) {
		st := &flashState{}
		if raw, err := c.Cookie(flashCookie); err == nil && raw != "" {
			if msgs, err := decodeFlashes(raw); err == nil {
				st.messages = msgs
			} else {
				log.Printf("drop malformed flash cookie: %v", err)
			}
		}
		c.Set(flashStateKey, st)
		c.Next()
	}
}

func flashStateOf(c *gin.Context) *flashState {
	if v, ok := c.Get(flashStateKey); ok {
		if st, ok := v.(*flashState); ok {
			return st
		}
	}
	st := &flashState{}
	c.Set(flashStateKey, st)
	return st
}

func addFlash(c *gin.Context, level flashLevel, message string) {
	st := flashStateOf(c)
	st.messages = append(st.messages, Flash{Level: level, Message: message})
}

func encodeFlashes(msgs []Flash) (string, error) {
	b, err := json.Marshal(msgs)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func decodeFlashes(raw string) ([]Flash, error) {
	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, err
	}
	var msgs []Flash
	if err := json.Unmarshal(b, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", h.opts.CookieDomain, h.opts.CookieSecure, true)
}

// redirect сохраняет накопленные сообщения до следующей страницы.
func (h *Handler) redirect(c *gin.Context, location string) {
	st := flashStateOf(c)
	if len(st.messages) > 0 {
		v, err := encodeFlashes(st.messages)
		if err != nil {
			log.Printf("encode flash: %v", err)
		} else {
			h.setCookie(c, flashCookie, v, 0)
		}
	}
	c.Redirect(http.StatusFound, location)
}

// render отдаёт страницу и расходует сообщения.
func (h *Handler) render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	st := flashStateOf(c)
	data["messages"] = st.messages
	if st.messages == nil {
		data["messages"] = []Flash{}
	}
	st.messages = nil
	if _, err := c.Cookie(flashCookie); err == nil {
		h.setCookie(c, flashCookie, "", -1)
	}

	id := identityOf(c)
	data["user"] = userView(id)
	h.renderer.Render(c, status, name, data)
}

// userView: то, что шаблоны знают о текущем пользователе.
func userView(id access.Identity) gin.H {
	if id.Anonymous() {
		return gin.H{"is_authenticated": false}
	}
	v := gin.H{
		"is_authenticated": true,
		"id":               id.User.ID,
		"username":         id.User.Username,
		"full_name":        id.User.FullName(),
		"email":            id.User.Email,
		"role":             id.Role,
		"is_staff":         id.IsStaff(),
		"is_provider":      id.IsProvider(),
		"pending_approval": id.PendingApproval(),
	}
	if id.Provider != nil {
		v["company_name"] = id.Provider.CompanyName
	}
	return v
}
