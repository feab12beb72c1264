package handler

import (
	"net/http"

	"kecdesk/internal/dto"
	"kecdesk/internal/service"

	"github.com/gin-gonic/gin"
)

type InquiriesHandler struct{ svc service.InquiryService }

func NewInquiriesHandler(svc service.InquiryService) *InquiriesHandler {
	return &InquiriesHandler{svc: svc}
}

// Create POST /v1/inquiries
func (h *InquiriesHandler) Create(c *gin.Context) {
	var req dto.CreateInquiryRequest
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

// ReserveID POST /v1/inquiries/ids
func (h *InquiriesHandler) ReserveID(c *gin.Context) {
	var req dto.ReserveInquiryIDRequest
	if c.Request.ContentLength != 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ReserveID(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List GET /v1/inquiries
func (h *InquiriesHandler) List(c *gin.Context) {
	var filter dto.InquiryFilter
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

// Get GET /v1/inquiries/:id
func (h *InquiriesHandler) Get(c *gin.Context) {
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

// UpdateStatus PATCH /v1/inquiries/:id/status
func (h *InquiriesHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateInquiryStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateRemarks PATCH /v1/inquiries/:id/remarks
func (h *InquiriesHandler) UpdateRemarks(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.UpdateInquiryRemarksRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateRemarks(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Items GET /v1/inquiries/:id/items
func (h *InquiriesHandler) Items(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	items := resp.Items
	if items == nil {
		items = []dto.InquiryItemResponse{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": resp.Total})
}

// ReplaceItems PUT /v1/inquiries/:id/items
func (h *InquiriesHandler) ReplaceItems(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.ReplaceInquiryItemsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ReplaceItems(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete DELETE /v1/inquiries/:id
func (h *InquiriesHandler) Delete(c *gin.Context) {
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
