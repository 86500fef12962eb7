package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/jobtracker/internal/auth"
	"github.com/justsurfingit/jobtracker/internal/store"
)

type SessionHandler struct {
	Resolver *auth.Resolver
	Guests   *store.Volatile
}

func NewSessionHandler(r *auth.Resolver, guests *store.Volatile) *SessionHandler {
	return &SessionHandler{Resolver: r, Guests: guests}
}

// StartGuest is POST /session/guest. The issued id is the only one the
// guest store accepts for this browser.
func (h *SessionHandler) StartGuest(c *gin.Context) {
	id := h.Resolver.StartGuest(c.Writer)
	h.Guests.Open(id)
	c.JSON(http.StatusCreated, gin.H{"session_id": id})
}

// EndGuest is DELETE /session/guest. The guest's jobs are dropped with it.
func (h *SessionHandler) EndGuest(c *gin.Context) {
	if cookie, err := c.Cookie(auth.GuestCookieName); err == nil && cookie != "" {
		h.Guests.Discard(cookie)
	}
	auth.EndGuest(c.Writer)
	c.Status(http.StatusNoContent)
}
