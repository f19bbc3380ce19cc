package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"mobilebill/internal/domain/dealer"
	"mobilebill/internal/infrastructure/http/v1/dto"
)

// DealerService is the dealer catalog as used by the handlers.
type DealerService interface {
	Create(ctx context.Context, d *dealer.Dealer) error
	GetByID(ctx context.Context, id string) (*dealer.Dealer, error)
	List(ctx context.Context, filter dealer.ListFilter) ([]*dealer.Dealer, error)
	Update(ctx context.Context, d *dealer.Dealer) error
	Delete(ctx context.Context, id string) error
}

// DealerHandler handles /api/dealers.
type DealerHandler struct {
	*BaseHandler
	service DealerService
}

// NewDealerHandler creates a new dealer handler.
func NewDealerHandler(base *BaseHandler, service DealerService) *DealerHandler {
	return &DealerHandler{BaseHandler: base, service: service}
}

// List handles GET /api/dealers.
func (h *DealerHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	items, err := h.service.List(c.Request.Context(), dealer.ListFilter{
		Search: q.Search,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(items))
}

// Create handles POST /api/dealers.
func (h *DealerHandler) Create(c *gin.Context) {
	var req dto.DealerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	d := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), d); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, d)
}

// Get handles GET /api/dealers/:id.
func (h *DealerHandler) Get(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	d, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, d)
}

// Update handles PUT /api/dealers/:id.
func (h *DealerHandler) Update(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var req dto.DealerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	d := &dealer.Dealer{ID: id}
	req.ApplyTo(d)
	if err := h.service.Update(c.Request.Context(), d); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, d)
}

// Delete handles DELETE /api/dealers/:id.
func (h *DealerHandler) Delete(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c)
}
