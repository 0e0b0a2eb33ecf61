package public

import (
	"github.com/sokomart/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetCurrentProfile 当前身份与能力
func (h *Handler) GetCurrentProfile(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	profile, err := h.IdentityService.GetProfile(actor.ProfileID)
	if err != nil {
		respondWithMappedError(c, err, nil, "error.internal")
		return
	}
	capabilities, err := h.AuthzService.Capabilities(actor.Role)
	if err != nil {
		requestLog(c).Warnw("profile_capabilities_failed", "profile_id", actor.ProfileID, "error", err)
	}
	response.Success(c, gin.H{
		"profile":      profile,
		"capabilities": capabilities,
	})
}
