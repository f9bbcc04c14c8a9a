// README: Order handlers: creation (with dispatch fan-out), listing, admin purge.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"homecall/internal/modules/dispatch"
	"homecall/internal/modules/order"
	"homecall/internal/types"
)

type OrderHandler struct {
	dispatch *dispatch.Service
	orders   *order.Store
}

func NewOrderHandler(dispatchSvc *dispatch.Service, orders *order.Store) *OrderHandler {
	return &OrderHandler{dispatch: dispatchSvc, orders: orders}
}

type orderItemReq struct {
	ServiceID     string `json:"serviceId"`
	CategoryID    string `json:"categoryId"`
	SubcategoryID string `json:"subCategoryId"`
	Quantity      int    `json:"quantity"`
	ScheduledDate string `json:"scheduledDate"`
	ScheduledTime string `json:"scheduledTime"`
}

type createOrderReq struct {
	UserID         string         `json:"userId"`
	AddressID      string         `json:"addressId"`
	PaymentID      string         `json:"paymentId"`
	CategoryIDs    []string       `json:"categoryIds"`
	SubCategoryIDs []string       `json:"subCategoryIds"`
	Items          []orderItemReq `json:"items"`
}

func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	items := make([]order.Item, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.Item{
			ServiceID:     types.ID(it.ServiceID),
			CategoryID:    types.ID(it.CategoryID),
			SubcategoryID: types.ID(it.SubcategoryID),
			Quantity:      it.Quantity,
			ScheduledDate: it.ScheduledDate,
			ScheduledTime: it.ScheduledTime,
		}
	}
	o, notified, err := h.dispatch.CreateOrder(c.Request.Context(), dispatch.CreateOrderCommand{
		UserID:         types.ID(req.UserID),
		AddressID:      types.ID(req.AddressID),
		PaymentID:      req.PaymentID,
		CategoryIDs:    toIDs(req.CategoryIDs),
		SubCategoryIDs: toIDs(req.SubCategoryIDs),
		Items:          items,
	})
	if err != nil {
		writeDispatchError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{
		"message":           "order created",
		"order":             toOrderView(o),
		"providersNotified": notified,
	})
}

func (h *OrderHandler) ListByUser(c *gin.Context) {
	userID := c.Param("userId")
	if userID == "" {
		writeError(c, http.StatusBadRequest, "missing user id")
		return
	}
	orders, err := h.orders.ListByUser(c.Request.Context(), types.ID(userID))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"orders": orderViews(orders)})
}

func (h *OrderHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing order id")
		return
	}
	if err := h.orders.Delete(c.Request.Context(), types.ID(id)); err != nil {
		writeStoreError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"deleted": id})
}

func (h *OrderHandler) DeleteAll(c *gin.Context) {
	n, err := h.orders.DeleteAll(c.Request.Context())
	if err != nil {
		writeStoreError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"deleted": n})
}

type orderItemView struct {
	ServiceID     types.ID `json:"serviceId"`
	CategoryID    types.ID `json:"categoryId"`
	SubcategoryID types.ID `json:"subCategoryId"`
	Quantity      int      `json:"quantity"`
	ScheduledDate string   `json:"scheduledDate"`
	ScheduledTime string   `json:"scheduledTime"`
}

type orderView struct {
	ID             types.ID        `json:"id"`
	UserID         types.ID        `json:"userId"`
	AddressID      types.ID        `json:"addressId"`
	PaymentID      string          `json:"paymentId"`
	CategoryIDs    []types.ID      `json:"categoryIds"`
	SubCategoryIDs []types.ID      `json:"subCategoryIds"`
	Items          []orderItemView `json:"items"`
	CreatedAt      string          `json:"createdAt"`
}

func orderViews(orders []*order.Order) []orderView {
	out := make([]orderView, len(orders))
	for i, o := range orders {
		out[i] = toOrderView(o)
	}
	return out
}

func toOrderView(o *order.Order) orderView {
	items := make([]orderItemView, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemView{
			ServiceID:     it.ServiceID,
			CategoryID:    it.CategoryID,
			SubcategoryID: it.SubcategoryID,
			Quantity:      it.Quantity,
			ScheduledDate: it.ScheduledDate,
			ScheduledTime: it.ScheduledTime,
		}
	}
	return orderView{
		ID:             o.ID,
		UserID:         o.UserID,
		AddressID:      o.AddressID,
		PaymentID:      o.PaymentID,
		CategoryIDs:    o.CategoryIDs,
		SubCategoryIDs: o.SubCategoryIDs,
		Items:          items,
		CreatedAt:      o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toIDs(ss []string) []types.ID {
	out := make([]types.ID, len(ss))
	for i, s := range ss {
		out[i] = types.ID(s)
	}
	return out
}
