package httpapi

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	loginPath      = "/login"
	translatorPath = "/translator"
)

// pageGate redirects page requests by session cookie presence. The cookie is
// not validated here; API routes check it against the session store.
func (s *Server) pageGate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			authenticated := s.hasSessionCookie(c)

			if authenticated && path == loginPath {
				return c.Redirect(http.StatusFound, translatorPath)
			}
			if !authenticated && !isPublicPath(path) {
				return c.Redirect(http.StatusFound, loginRedirectURL(c.Request().URL))
			}
			return next(c)
		}
	}
}

func isPublicPath(path string) bool {
	switch path {
	case "/", loginPath, "/favicon.ico", "/api":
		return true
	}
	return strings.HasPrefix(path, "/assets/") || strings.HasPrefix(path, "/api/")
}

// loginRedirectURL keeps the original path and query so login can return to it.
// Only the relative request URI is carried, never a host.
func loginRedirectURL(original *url.URL) string {
	target := translatorPath
	if original != nil {
		if uri := original.RequestURI(); uri != "" {
			target = uri
		}
	}
	return loginPath + "?redirect=" + url.QueryEscape(target)
}

func (s *Server) hasSessionCookie(c echo.Context) bool {
	cookie, err := c.Cookie(s.opts.SessionCookie)
	if err != nil || cookie == nil {
		return false
	}
	return isUUID(strings.TrimSpace(cookie.Value))
}
