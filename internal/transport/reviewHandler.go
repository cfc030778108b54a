package transport

import (
	"net/http"

	"github.com/ds124wfegd/learnlink/internal/service"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService service.ReviewService
}

func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func (h *ReviewHandler) ListCourseReviews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListCourseReviews(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, reviews)
}

func (h *ReviewHandler) CreateCourseReview(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	review, err := h.reviewService.CreateCourseReview(c.Request.Context(), p, id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, review)
}

func (h *ReviewHandler) ListProfessorReviews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ListProfessorReviews(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, reviews)
}

func (h *ReviewHandler) CreateProfessorReview(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	review, err := h.reviewService.CreateProfessorReview(c.Request.Context(), p, id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, review)
}
