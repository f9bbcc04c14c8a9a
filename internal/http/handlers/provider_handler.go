// README: Provider-side handlers: live location, capability set, profile.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homecall/internal/modules/capability"
	"homecall/internal/modules/geo"
	"homecall/internal/modules/provider"
	"homecall/internal/types"
)

type ProviderHandler struct {
	geo          *geo.Store
	capabilities *capability.Store
	profiles     *provider.Store
}

func NewProviderHandler(geoStore *geo.Store, capStore *capability.Store, profiles *provider.Store) *ProviderHandler {
	return &ProviderHandler{geo: geoStore, capabilities: capStore, profiles: profiles}
}

type locationReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (h *ProviderHandler) UpdateLocation(c *gin.Context) {
	id := c.Param("id")
	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		writeError(c, http.StatusBadRequest, "coordinates out of range")
		return
	}
	if err := h.geo.Upsert(c.Request.Context(), types.ID(id), types.Point{Lat: req.Lat, Lng: req.Lng}); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"updated": id})
}

// RemoveLocation takes the provider off the dispatch index (going offline).
func (h *ProviderHandler) RemoveLocation(c *gin.Context) {
	id := c.Param("id")
	if err := h.geo.Remove(c.Request.Context(), types.ID(id)); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"removed": id})
}

type capabilityReq struct {
	Capabilities []struct {
		CategoryID    string `json:"categoryId"`
		SubcategoryID string `json:"subCategoryId"`
	} `json:"capabilities"`
}

func (h *ProviderHandler) ReplaceCapabilities(c *gin.Context) {
	id := c.Param("id")
	var req capabilityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	entries := make([]capability.Entry, len(req.Capabilities))
	for i, e := range req.Capabilities {
		if e.CategoryID == "" || e.SubcategoryID == "" {
			writeError(c, http.StatusBadRequest, "capability entries need categoryId and subCategoryId")
			return
		}
		entries[i] = capability.Entry{CategoryID: types.ID(e.CategoryID), SubcategoryID: types.ID(e.SubcategoryID)}
	}
	if err := h.capabilities.Replace(c.Request.Context(), types.ID(id), entries); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"count": len(entries)})
}

type profileReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (h *ProviderHandler) UpsertProfile(c *gin.Context) {
	id := c.Param("id")
	var req profileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		writeError(c, http.StatusBadRequest, "missing name")
		return
	}
	p := &provider.Profile{ProviderID: types.ID(id), Name: req.Name, Phone: req.Phone}
	if err := h.profiles.Upsert(c.Request.Context(), p); err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"providerId": p.ProviderID})
}

func (h *ProviderHandler) GetProfile(c *gin.Context) {
	p, err := h.profiles.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"providerId": p.ProviderID, "name": p.Name, "phone": p.Phone})
}
