package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// FlashCookie carries one alert across a redirect.
const FlashCookie = "mc_flash"

const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot alert.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SetFlash stores an alert for the next page render.
func SetFlash(c *gin.Context, kind, message string) {
	data, err := json.Marshal(Flash{Type: kind, Message: message})
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, base64.RawURLEncoding.EncodeToString(data), 60, "/", "", false, true)
}

// PopFlash returns the pending alert and clears it.
func PopFlash(c *gin.Context) *Flash {
	value, err := c.Cookie(FlashCookie)
	if err != nil || value == "" {
		return nil
	}
	c.SetCookie(FlashCookie, "", -1, "/", "", false, true)

	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(data, &f); err != nil || f.Message == "" {
		return nil
	}
	return &f
}

// ErrorFlash is the inline alert for a page re-rendered after a failed form.
func ErrorFlash(message string) *Flash {
	return &Flash{Type: FlashError, Message: message}
}

// Redirect sets a flash and redirects with 303 so the browser issues a GET.
func Redirect(c *gin.Context, location, kind, message string) {
	if message != "" {
		SetFlash(c, kind, message)
	}
	c.Redirect(http.StatusSeeOther, location)
}
