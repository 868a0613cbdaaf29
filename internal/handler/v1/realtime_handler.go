package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/access"
	"github.com/dmehra2102/prod-golang-projects/medqueue/internal/realtime"
)

// subscribe upgrades to the realtime channel. ?session names the session so
// the caller's own HTTP writes, tagged with the same id, skip it. The name is
// scoped to the caller's user id.
func (h *Handler) subscribe(c *gin.Context) {
	p := principal(c)
	if err := access.Authorize(p, access.OpSubscribe); err != nil {
		respondServiceError(c, err)
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already answered the client.
		_ = c.Error(err)
		return
	}
	if err := h.hub.Serve(ws, realtime.SessionKey(p.UserID, c.Query("session")), p.UserID); err != nil {
		_ = c.Error(err)
	}
}
