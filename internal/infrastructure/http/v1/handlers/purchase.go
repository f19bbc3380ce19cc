package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"mobilebill/internal/domain/purchase"
	"mobilebill/internal/infrastructure/http/v1/dto"
)

// PurchaseService is the purchase document service as used by the handlers.
type PurchaseService interface {
	Create(ctx context.Context, p *purchase.Purchase) error
	GetByID(ctx context.Context, id string) (*purchase.Purchase, error)
	List(ctx context.Context, filter purchase.ListFilter) ([]*purchase.Purchase, error)
	UpdateStatus(ctx context.Context, id string, status purchase.Status) (*purchase.Purchase, error)
	Receive(ctx context.Context, id string) (*purchase.ReceiveResult, error)
}

// PurchaseHandler handles /api/purchases.
type PurchaseHandler struct {
	*BaseHandler
	service PurchaseService
}

// NewPurchaseHandler creates a new purchase handler.
func NewPurchaseHandler(base *BaseHandler, service PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{BaseHandler: base, service: service}
}

// Create handles POST /api/purchases.
func (h *PurchaseHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	p, err := req.ToEntity()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.service.Create(c.Request.Context(), p); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// List handles GET /api/purchases?dealerId=&from=&to=&status=.
func (h *PurchaseHandler) List(c *gin.Context) {
	var q dto.PurchaseListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(items))
}

// Get handles GET /api/purchases/:id.
func (h *PurchaseHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, p)
}

// UpdateStatus handles PATCH /api/purchases/:id/status. Stock is not touched.
func (h *PurchaseHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	status, err := purchase.ParseStatus(req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	p, err := h.service.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, p)
}

// Receive handles GET and POST /api/purchases/:id/receive.
func (h *PurchaseHandler) Receive(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	res, err := h.service.Receive(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.NewReceiveResponse(res))
}
