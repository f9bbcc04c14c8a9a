// README: Order-history handlers: the OTP-gated provider lifecycle plus
// listings for both sides of the engagement.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homecall/internal/modules/history"
	"homecall/internal/types"
)

type HistoryHandler struct {
	history *history.Service
}

func NewHistoryHandler(svc *history.Service) *HistoryHandler {
	return &HistoryHandler{history: svc}
}

type acceptReq struct {
	OrderID    string `json:"orderId"`
	ProviderID string `json:"providerId"`
}

func (h *HistoryHandler) Accept(c *gin.Context) {
	var req acceptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	hist, err := h.history.Accept(c.Request.Context(), history.AcceptCommand{
		OrderID:    types.ID(req.OrderID),
		ProviderID: types.ID(req.ProviderID),
	})
	if err != nil {
		writeHistoryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"message":        "order accepted",
		"orderHistoryId": hist.ID,
		"status":         hist.Status,
	})
}

type verifyStartReq struct {
	OrderHistoryID string `json:"orderHistoryId"`
	OTP            string `json:"otp"`
}

func (h *HistoryHandler) VerifyStart(c *gin.Context) {
	var req verifyStartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	hist, err := h.history.VerifyStart(c.Request.Context(), history.VerifyStartCommand{
		HistoryID: types.ID(req.OrderHistoryID),
		OTP:       req.OTP,
	})
	if err != nil {
		writeHistoryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "work started", "status": hist.Status})
}

type generateOTPReq struct {
	OrderHistoryID string `json:"orderHistoryId"`
	ProviderID     string `json:"providerId"`
}

func (h *HistoryHandler) GenerateCompletionOTP(c *gin.Context) {
	var req generateOTPReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	code, err := h.history.GenerateCompletion(c.Request.Context(), history.GenerateCompletionCommand{
		HistoryID:  types.ID(req.OrderHistoryID),
		ProviderID: types.ID(req.ProviderID),
	})
	if err != nil {
		writeHistoryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "otp generated", "otp": code})
}

type verifyCompleteReq struct {
	OrderHistoryID string `json:"orderHistoryId"`
	ProviderID     string `json:"providerId"`
	OTP            string `json:"otp"`
}

func (h *HistoryHandler) VerifyComplete(c *gin.Context) {
	var req verifyCompleteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	hist, err := h.history.VerifyComplete(c.Request.Context(), history.VerifyCompleteCommand{
		HistoryID:  types.ID(req.OrderHistoryID),
		ProviderID: types.ID(req.ProviderID),
		OTP:        req.OTP,
	})
	if err != nil {
		writeHistoryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "order completed", "status": hist.Status})
}

type cancelReq struct {
	OrderHistoryID string `json:"orderHistoryId"`
	ProviderID     string `json:"providerId"`
	Reason         string `json:"reason"`
}

func (h *HistoryHandler) Cancel(c *gin.Context) {
	var req cancelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	hist, err := h.history.Cancel(c.Request.Context(), history.CancelCommand{
		HistoryID:  types.ID(req.OrderHistoryID),
		ProviderID: types.ID(req.ProviderID),
		Reason:     req.Reason,
	})
	if err != nil {
		writeHistoryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "order cancelled", "status": hist.Status})
}

type payReq struct {
	OrderHistoryID string `json:"orderHistoryId"`
	ProviderID     string `json:"providerId"`
}

// Pay is mounted on the internal group only; it trusts the payment webhook.
func (h *HistoryHandler) Pay(c *gin.Context) {
	var req payReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	hist, err := h.history.Pay(c.Request.Context(), history.PayCommand{
		HistoryID:  types.ID(req.OrderHistoryID),
		ProviderID: types.ID(req.ProviderID),
	})
	if err != nil {
		writeHistoryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "order paid", "status": hist.Status})
}

// AttachWorkImage takes a multipart form: image file plus orderHistoryId and
// providerId fields.
func (h *HistoryHandler) AttachWorkImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		writeError(c, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	key, err := h.history.AttachImage(c.Request.Context(), history.AttachImageCommand{
		HistoryID:  types.ID(c.PostForm("orderHistoryId")),
		ProviderID: types.ID(c.PostForm("providerId")),
		File:       file,
		Filename:   header.Filename,
	})
	if err != nil {
		writeHistoryError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "image uploaded", "imageKey": key})
}

func (h *HistoryHandler) ListByProvider(c *gin.Context) {
	entries, err := h.history.ListByProvider(c.Request.Context(), types.ID(c.Param("providerId")))
	if err != nil {
		writeHistoryError(c, err)
		return
	}
	out := make([]gin.H, len(entries))
	for i, e := range entries {
		v := gin.H{"history": historyView(e.History)}
		if e.Order != nil {
			v["order"] = toOrderView(e.Order)
		}
		out[i] = v
	}
	writeJSON(c, http.StatusOK, gin.H{"histories": out})
}

func (h *HistoryHandler) ListByUser(c *gin.Context) {
	entries, err := h.history.ListByUser(c.Request.Context(), types.ID(c.Param("userId")))
	if err != nil {
		writeHistoryError(c, err)
		return
	}
	out := make([]gin.H, len(entries))
	for i, e := range entries {
		v := gin.H{"history": historyView(e.History)}
		if e.Provider != nil {
			v["provider"] = gin.H{"name": e.Provider.Name, "phone": e.Provider.Phone}
		}
		out[i] = v
	}
	writeJSON(c, http.StatusOK, gin.H{"histories": out})
}

// historyView hides the OTP pair; codes only travel through notifications
// and the explicit generate endpoint.
func historyView(h *history.History) gin.H {
	v := gin.H{
		"id":         h.ID,
		"orderId":    h.OrderID,
		"userId":     h.UserID,
		"providerId": h.ProviderID,
		"status":     h.Status,
		"createdAt":  h.CreatedAt,
		"updatedAt":  h.UpdatedAt,
	}
	if h.Reason != nil {
		v["reason"] = *h.Reason
	}
	if h.ImageKey != nil {
		v["imageKey"] = *h.ImageKey
	}
	return v
}
