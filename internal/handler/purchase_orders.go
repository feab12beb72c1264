package handler

import (
	"net/http"

	"kecdesk/internal/dto"
	"kecdesk/internal/service"

	"github.com/gin-gonic/gin"
)

type PurchaseOrdersHandler struct{ svc service.PurchaseOrderService }

func NewPurchaseOrdersHandler(svc service.PurchaseOrderService) *PurchaseOrdersHandler {
	return &PurchaseOrdersHandler{svc: svc}
}

// Create POST /v1/purchase-orders
func (h *PurchaseOrdersHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List GET /v1/purchase-orders
func (h *PurchaseOrdersHandler) List(c *gin.Context) {
	var filter dto.PurchaseOrderFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get GET /v1/purchase-orders/:id
func (h *PurchaseOrdersHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update PUT /v1/purchase-orders/:id
func (h *PurchaseOrdersHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdatePurchaseOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateStatus PATCH /v1/purchase-orders/:id/status
func (h *PurchaseOrdersHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdatePurchaseOrderStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete DELETE /v1/purchase-orders/:id
func (h *PurchaseOrdersHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
