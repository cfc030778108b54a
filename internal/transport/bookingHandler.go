package transport

import (
	"context"
	"net/http"

	"github.com/ds124wfegd/learnlink/internal/entity"
	"github.com/ds124wfegd/learnlink/internal/service"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookingService service.BookingService
}

func NewBookingHandler(bookingService service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, booking)
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	bookings, err := h.bookingService.ListMyBookings(c.Request.Context(), p, entity.BookingStatus(c.Query("status")))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, bookings)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), p, id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, booking)
}

func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	h.transition(c, h.bookingService.ConfirmBooking)
}

func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	h.transition(c, h.bookingService.CompleteBooking)
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	// тело запроса необязательно
	var req service.CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	booking, err := h.bookingService.CancelBooking(c.Request.Context(), p, id, req.Reason)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, booking)
}

type bookingTransition func(ctx context.Context, p entity.Principal, bookingID int64) (*entity.Booking, error)

func (h *BookingHandler) transition(c *gin.Context, apply bookingTransition) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	booking, err := apply(c.Request.Context(), p, id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, booking)
}
