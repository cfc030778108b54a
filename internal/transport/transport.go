package transport

import (
	"time"

	"github.com/ds124wfegd/learnlink/internal/entity"
	"github.com/ds124wfegd/learnlink/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Users        *UserHandler
	Availability *AvailabilityHandler
	Bookings     *BookingHandler
	Payments     *PaymentHandler
	Courses      *CourseHandler
	Reviews      *ReviewHandler
	Messages     *MessageHandler
	Health       *HealthHandler
}

type RouterConfig struct {
	RequestTimeout time.Duration
	StaticURL      string
	StaticDir      string
}

func InitRoutes(h *Handlers, tokens middleware.TokenParser, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(cfg.RequestTimeout))

	if cfg.StaticURL != "" && cfg.StaticDir != "" {
		router.Static(cfg.StaticURL, cfg.StaticDir)
	}

	authRequired := middleware.Auth(tokens)
	authOptional := middleware.OptionalAuth(tokens)
	student := middleware.RequireRole(entity.RoleStudent)
	professor := middleware.RequireRole(entity.RoleProfessor)

	// API routes
	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Users.Register)
			auth.POST("/login", h.Users.Login)
		}

		me := api.Group("/users/me", authRequired)
		{
			me.GET("", h.Users.Me)
			me.PUT("", h.Users.UpdateMe)
		}

		professors := api.Group("/professors")
		{
			professors.GET("", h.Users.ListProfessors)
			professors.GET("/:id", h.Users.GetProfessor)
			professors.GET("/:id/availability", h.Availability.ListForProfessor)
			professors.GET("/:id/reviews", h.Reviews.ListProfessorReviews)
			professors.POST("/:id/reviews", authRequired, student, h.Reviews.CreateProfessorReview)
		}

		availability := api.Group("/availability", authRequired, professor)
		{
			availability.POST("", h.Availability.CreateSlot)
			availability.DELETE("/:id", h.Availability.DeleteSlot)
		}

		bookings := api.Group("/bookings", authRequired)
		{
			bookings.POST("", student, h.Bookings.CreateBooking)
			bookings.GET("", h.Bookings.ListBookings)
			bookings.GET("/:id", h.Bookings.GetBooking)
			bookings.POST("/:id/confirm", professor, h.Bookings.ConfirmBooking)
			bookings.POST("/:id/complete", professor, h.Bookings.CompleteBooking)
			bookings.POST("/:id/cancel", h.Bookings.CancelBooking)
		}

		payments := api.Group("/payments", authRequired)
		{
			payments.POST("/checkout", h.Payments.Checkout)
			payments.GET("", h.Payments.ListPayments)
		}

		courses := api.Group("/courses")
		{
			courses.GET("", h.Courses.ListPublished)
			courses.GET("/mine", authRequired, professor, h.Courses.ListMine)
			courses.POST("", authRequired, professor, h.Courses.CreateCourse)
			courses.GET("/:id", authOptional, h.Courses.GetCourse)
			courses.GET("/:id/access", authRequired, h.Courses.GetAccess)
			courses.GET("/:id/reviews", h.Reviews.ListCourseReviews)
			courses.POST("/:id/reviews", authRequired, student, h.Reviews.CreateCourseReview)

			owned := courses.Group("/:id", authRequired, professor)
			{
				owned.PUT("", h.Courses.UpdateCourse)
				owned.DELETE("", h.Courses.DeleteCourse)
				owned.POST("/publish", h.Courses.PublishCourse)
				owned.POST("/unpublish", h.Courses.UnpublishCourse)
				owned.POST("/cover", h.Courses.UploadCover)
				owned.POST("/lessons", h.Courses.AddLesson)
				owned.PUT("/lessons/:lessonId", h.Courses.UpdateLesson)
				owned.DELETE("/lessons/:lessonId", h.Courses.DeleteLesson)
			}
		}

		conversations := api.Group("/conversations", authRequired)
		{
			conversations.GET("", h.Messages.ListConversations)
			conversations.POST("", h.Messages.StartConversation)
			conversations.GET("/:id/messages", h.Messages.ListMessages)
			conversations.POST("/:id/messages", h.Messages.SendMessage)
		}
	}

	// Health check
	router.GET("/health", h.Health.Health)

	return router
}
