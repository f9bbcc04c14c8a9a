// README: Address handlers: save and fetch customer service addresses.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"homecall/internal/modules/address"
	"homecall/internal/types"
)

type AddressHandler struct {
	addresses *address.Store
}

func NewAddressHandler(store *address.Store) *AddressHandler {
	return &AddressHandler{addresses: store}
}

type createAddressReq struct {
	UserID   string   `json:"userId"`
	Line1    string   `json:"line1"`
	City     string   `json:"city"`
	State    string   `json:"state"`
	Pincode  string   `json:"pincode"`
	Landmark string   `json:"landmark"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
}

func (h *AddressHandler) Create(c *gin.Context) {
	var req createAddressReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == "" || req.Line1 == "" || req.City == "" {
		writeError(c, http.StatusBadRequest, "userId, line1 and city are required")
		return
	}
	a := &address.Address{
		ID:       types.ID(uuid.NewString()),
		UserID:   types.ID(req.UserID),
		Line1:    req.Line1,
		City:     req.City,
		State:    req.State,
		Pincode:  req.Pincode,
		Landmark: req.Landmark,
		Lat:      req.Lat,
		Lng:      req.Lng,
	}
	if err := h.addresses.Create(c.Request.Context(), a); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"addressId": a.ID})
}

func (h *AddressHandler) Get(c *gin.Context) {
	a, err := h.addresses.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	v := gin.H{
		"id":       a.ID,
		"userId":   a.UserID,
		"line1":    a.Line1,
		"city":     a.City,
		"state":    a.State,
		"pincode":  a.Pincode,
		"landmark": a.Landmark,
	}
	if a.Lat != nil && a.Lng != nil {
		v["lat"] = *a.Lat
		v["lng"] = *a.Lng
	}
	writeJSON(c, http.StatusOK, v)
}
