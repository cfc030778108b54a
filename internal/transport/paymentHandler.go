package transport

import (
	"net/http"

	"github.com/ds124wfegd/learnlink/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) Checkout(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	payment, err := h.paymentService.Checkout(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, payment)
}

func (h *PaymentHandler) ListPayments(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	payments, err := h.paymentService.ListMyPayments(c.Request.Context(), p)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, payments)
}
