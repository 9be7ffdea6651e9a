package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Cookie names for the user and admin refresh flows.
const (
	RefreshCookie        = "_rt"
	KeepAliveCookie      = "_ka"
	AdminRefreshCookie   = "_rt_a"
	AdminKeepAliveCookie = "_ka_a"
)

type cookiePair struct {
	refresh   string
	keepAlive string
}

var (
	userCookies  = cookiePair{refresh: RefreshCookie, keepAlive: KeepAliveCookie}
	adminCookies = cookiePair{refresh: AdminRefreshCookie, keepAlive: AdminKeepAliveCookie}
)

// set writes the httpOnly refresh cookie and the script-visible keep-alive marker.
func (p cookiePair) set(c *gin.Context, refreshToken string, ttl time.Duration) {
	maxAge := int(ttl / time.Second)
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(p.refresh, refreshToken, maxAge, "/", "", true, true)
	c.SetCookie(p.keepAlive, "true", maxAge, "/", "", true, false)
}

func (p cookiePair) clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(p.refresh, "", -1, "/", "", true, true)
	c.SetCookie(p.keepAlive, "", -1, "/", "", true, false)
}

// read returns the refresh token when both cookies are present.
func (p cookiePair) read(c *gin.Context) (string, bool) {
	rt, err := c.Cookie(p.refresh)
	if err != nil || rt == "" {
		return "", false
	}
	if ka, err := c.Cookie(p.keepAlive); err != nil || ka == "" {
		return "", false
	}
	return rt, true
}
