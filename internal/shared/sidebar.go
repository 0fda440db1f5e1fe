package shared

import (
	"net/http"
	"time"
)

// SidebarCookie stores whether the navigation sidebar is expanded.
const SidebarCookie = "sidebar_state"

const sidebarMaxAge = 7 * 24 * time.Hour

// SidebarOpen reads the sidebar state, defaulting to open.
func SidebarOpen(r *http.Request) bool {
	cookie, err := r.Cookie(SidebarCookie)
	if err != nil {
		return true
	}
	return cookie.Value != "false"
}

// SetSidebarOpen persists the sidebar state for a week.
func SetSidebarOpen(w http.ResponseWriter, open bool, secure bool) {
	value := "false"
	if open {
		value = "true"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SidebarCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(sidebarMaxAge.Seconds()),
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
