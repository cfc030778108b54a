package transport

import (
	"context"
	"net/http"

	"github.com/ds124wfegd/learnlink/internal/entity"
	"github.com/ds124wfegd/learnlink/internal/service"
	"github.com/ds124wfegd/learnlink/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

const (
	defaultCoursePage = 20
	maxCoursePage     = 100
	coverFormField    = "image"
)

type CourseHandler struct {
	courseService service.CourseService
	maxUpload     int64
}

func NewCourseHandler(courseService service.CourseService, maxUpload int64) *CourseHandler {
	return &CourseHandler{courseService: courseService, maxUpload: maxUpload}
}

func (h *CourseHandler) ListPublished(c *gin.Context) {
	limit, ok := queryInt(c, "limit", defaultCoursePage)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}
	if limit <= 0 || limit > maxCoursePage {
		limit = defaultCoursePage
	}

	courses, err := h.courseService.ListPublished(c.Request.Context(), entity.CourseFilter{
		Category: c.Query("category"),
		Level:    entity.CourseLevel(c.Query("level")),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, courses)
}

func (h *CourseHandler) ListMine(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	courses, err := h.courseService.ListMine(c.Request.Context(), p)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, courses)
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req service.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	course, err := h.courseService.CreateCourse(c.Request.Context(), p, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, course)
}

// GetCourse works for anonymous callers; lesson content links stay hidden for them.
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var viewer *entity.Principal
	if p, ok := middleware.Principal(c); ok {
		viewer = &p
	}

	course, err := h.courseService.GetCourse(c.Request.Context(), viewer, id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, course)
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	course, err := h.courseService.UpdateCourse(c.Request.Context(), p, id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, course)
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.courseService.DeleteCourse(c.Request.Context(), p, id); err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "course deleted")
}

func (h *CourseHandler) PublishCourse(c *gin.Context) {
	h.setPublished(c, h.courseService.PublishCourse)
}

func (h *CourseHandler) UnpublishCourse(c *gin.Context) {
	h.setPublished(c, h.courseService.UnpublishCourse)
}

func (h *CourseHandler) setPublished(c *gin.Context, apply func(ctx context.Context, p entity.Principal, courseID int64) (*entity.Course, error)) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	course, err := apply(c.Request.Context(), p, id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, course)
}

func (h *CourseHandler) UploadCover(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if h.maxUpload > 0 {
		// запас на служебные части multipart
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1<<20)
	}
	header, err := c.FormFile(coverFormField)
	if err != nil {
		badRequest(c, entity.Invalidf("multipart field %q is required", coverFormField))
		return
	}
	file, err := header.Open()
	if err != nil {
		handleError(c, err)
		return
	}
	defer file.Close()

	course, err := h.courseService.UploadCover(c.Request.Context(), p, id, header.Filename, file)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, course)
}

func (h *CourseHandler) GetAccess(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	access, err := h.courseService.GetAccess(c.Request.Context(), p, id)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, access)
}

func (h *CourseHandler) AddLesson(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req service.LessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	lesson, err := h.courseService.AddLesson(c.Request.Context(), p, id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, lesson)
}

func (h *CourseHandler) UpdateLesson(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	lessonID, ok := paramID(c, "lessonId")
	if !ok {
		return
	}
	var req service.LessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	lesson, err := h.courseService.UpdateLesson(c.Request.Context(), p, courseID, lessonID, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, lesson)
}

func (h *CourseHandler) DeleteLesson(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	courseID, ok := paramID(c, "id")
	if !ok {
		return
	}
	lessonID, ok := paramID(c, "lessonId")
	if !ok {
		return
	}

	if err := h.courseService.DeleteLesson(c.Request.Context(), p, courseID, lessonID); err != nil {
		handleError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, "lesson deleted")
}
