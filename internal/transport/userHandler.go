package transport

import (
	"net/http"

	"github.com/ds124wfegd/learnlink/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	authService service.AuthService
}

func NewUserHandler(authService service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, resp)
}

func (h *UserHandler) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), p)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *UserHandler) ListProfessors(c *gin.Context) {
	professors, err := h.authService.ListProfessors(c.Request.Context(), c.Query("subject"))
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, professors)
}

func (h *UserHandler) GetProfessor(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	professor, err := h.authService.GetProfessor(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, professor)
}
