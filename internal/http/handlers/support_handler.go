// README: Support chat handler backed by the Gemini assistant.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homecall/internal/modules/support"
	"homecall/internal/types"
)

type SupportHandler struct {
	assistant *support.Assistant
}

func NewSupportHandler(assistant *support.Assistant) *SupportHandler {
	return &SupportHandler{assistant: assistant}
}

type chatReq struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

func (h *SupportHandler) Chat(c *gin.Context) {
	if h.assistant == nil {
		writeError(c, http.StatusServiceUnavailable, "support assistant not configured")
		return
	}
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == "" || req.Message == "" {
		writeError(c, http.StatusBadRequest, "userId and message are required")
		return
	}
	reply, err := h.assistant.Chat(c.Request.Context(), types.ID(req.UserID), req.Message)
	if err != nil {
		writeError(c, http.StatusBadGateway, "assistant unavailable")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"reply": reply})
}
