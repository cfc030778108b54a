package transport

import (
	"net/http"

	"github.com/ds124wfegd/learnlink/internal/service"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	availabilityService service.AvailabilityService
}

func NewAvailabilityHandler(availabilityService service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availabilityService: availabilityService}
}

func (h *AvailabilityHandler) CreateSlot(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	slot, err := h.availabilityService.CreateSlot(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, slot)
}

func (h *AvailabilityHandler) DeleteSlot(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.availabilityService.DeleteSlot(c.Request.Context(), p, id); err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "slot deleted")
}

// ListForProfessor returns all slots, or only bookable ones with ?upcoming=true.
func (h *AvailabilityHandler) ListForProfessor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	list := h.availabilityService.ListByProfessor
	if c.Query("upcoming") == "true" {
		list = h.availabilityService.ListUpcomingUnbooked
	}

	slots, err := list(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, slots)
}
