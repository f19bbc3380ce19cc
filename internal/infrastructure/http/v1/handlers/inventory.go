package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"mobilebill/internal/core/apperror"
	"mobilebill/internal/domain/inventory"
	"mobilebill/internal/infrastructure/export"
	"mobilebill/internal/infrastructure/http/v1/dto"
	"mobilebill/pkg/logger"
)

// InventoryService is the stock read side as used by the handlers.
type InventoryService interface {
	ListMobiles(ctx context.Context, filter inventory.ListFilter) ([]*inventory.Mobile, error)
	ListAccessories(ctx context.Context, filter inventory.ListFilter) ([]*inventory.Accessory, error)
	LowStock(ctx context.Context, threshold int) (*inventory.LowStock, error)
	FindByUnitID(ctx context.Context, unitID string) (*inventory.UnitLookup, error)
	UpdateMobileDetails(ctx context.Context, mobileID string, details inventory.MobileDetails) (*inventory.Mobile, error)
	Counter(ctx context.Context, key string) (int64, error)
}

// InventoryHandler handles stock endpoints.
type InventoryHandler struct {
	*BaseHandler
	service InventoryService
	now     func() time.Time
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service InventoryService) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, service: service, now: time.Now}
}

// ListMobiles handles GET /api/mobiles.
func (h *InventoryHandler) ListMobiles(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	items, err := h.service.ListMobiles(c.Request.Context(), listFilter(q))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(items))
}

// UpdateMobile handles PUT /api/mobiles/:id.
func (h *InventoryHandler) UpdateMobile(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	var details inventory.MobileDetails
	if !h.BindJSON(c, &details) {
		return
	}
	m, err := h.service.UpdateMobileDetails(c.Request.Context(), id, details)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, m)
}

// ListAccessories handles GET /api/accessories.
func (h *InventoryHandler) ListAccessories(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	items, err := h.service.ListAccessories(c.Request.Context(), listFilter(q))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(items))
}

// LowStock handles GET /api/low-stock?threshold=.
func (h *InventoryHandler) LowStock(c *gin.Context) {
	res, err := h.service.LowStock(c.Request.Context(), h.ParseIntQuery(c, "threshold", 0))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, res)
}

// Counter handles GET /api/counters/:key.
func (h *InventoryHandler) Counter(c *gin.Context) {
	key := c.Param("key")
	value, err := h.service.Counter(c.Request.Context(), key)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, gin.H{"key": key, "value": value})
}

// Lookup handles GET /api/:id for minted unit identifiers.
func (h *InventoryHandler) Lookup(c *gin.Context) {
	id, ok := h.PathID(c)
	if !ok {
		return
	}
	res, err := h.service.FindByUnitID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c, res)
}

// Export handles GET /api/inventory/export and streams an xlsx workbook.
func (h *InventoryHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	// no limit: the workbook holds every group
	filter := inventory.ListFilter{DealerID: c.Query("dealerId")}

	mobiles, err := h.service.ListMobiles(ctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	accessories, err := h.service.ListAccessories(ctx, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("inventory-%s.xlsx", h.now().Format("20060102"))
	c.Header("Content-Type", export.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := export.WriteInventory(c.Writer, mobiles, accessories); err != nil {
		if c.Writer.Written() {
			logger.Error(ctx, "inventory export aborted", "error", err)
			c.Abort()
			return
		}
		h.HandleError(c, apperror.NewInternal(fmt.Errorf("write workbook: %w", err)))
		return
	}
	logger.Info(ctx, "inventory exported", "mobiles", len(mobiles), "accessories", len(accessories))
}

func listFilter(q dto.ListQuery) inventory.ListFilter {
	return inventory.ListFilter{
		Search:   q.Search,
		DealerID: q.DealerID,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
}
