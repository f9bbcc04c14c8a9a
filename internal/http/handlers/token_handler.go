// README: Device-token registration for push notifications.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homecall/internal/modules/token"
	"homecall/internal/types"
)

type TokenHandler struct {
	tokens *token.Store
}

func NewTokenHandler(tokens *token.Store) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

type registerTokenReq struct {
	OwnerID string `json:"ownerId"`
	Token   string `json:"token"`
}

func (h *TokenHandler) Register(c *gin.Context) {
	var req registerTokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.OwnerID == "" || req.Token == "" {
		writeError(c, http.StatusBadRequest, "ownerId and token are required")
		return
	}
	if err := h.tokens.Upsert(c.Request.Context(), types.ID(req.OwnerID), req.Token); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"registered": req.OwnerID})
}

func (h *TokenHandler) Delete(c *gin.Context) {
	id := c.Param("ownerId")
	if err := h.tokens.Delete(c.Request.Context(), types.ID(id)); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"deleted": id})
}
