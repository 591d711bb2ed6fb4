package api

import (
	"net/http"

	"cyclecoach/internal/domain"
	"cyclecoach/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	rosterService service.RosterService,
	scheduleService service.ScheduleService,
	templateService service.TemplateService,
	groupSessionService service.GroupSessionService,
) {
	authHandler := NewAuthHandler(authService)
	templateHandler := NewTemplateHandler(templateService)
	scheduleHandler := NewScheduleHandler(scheduleService, rosterService)
	groupSessionHandler := NewGroupSessionHandler(groupSessionService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Exercise Template Library ---
		templateGroup := protected.Group("/templates")
		templateGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			templateGroup.POST("", templateHandler.CreateTemplate)
			templateGroup.GET("", templateHandler.ListTemplates)
			templateGroup.DELETE("/:id", templateHandler.DeleteTemplate)
		}

		// --- Coach roster / enrollment ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			coachGroup.POST("/participants", scheduleHandler.EnrollParticipant)
			coachGroup.GET("/participants", scheduleHandler.GetRoster)
			coachGroup.GET("/subscriptions", scheduleHandler.GetSubscriptions)
		}

		// --- Training plans & reconciled schedule ---
		subscriptionGroup := protected.Group("/subscriptions/:subscriptionId")
		{
			subscriptionGroup.POST("/plan", RoleMiddleware(domain.RoleCoach), scheduleHandler.CreatePlan)
			subscriptionGroup.GET("/plan", scheduleHandler.GetPlan)
			subscriptionGroup.GET("/schedule", scheduleHandler.GetSchedule)
			subscriptionGroup.POST("/complete", scheduleHandler.CompleteSession)
		}
		protected.DELETE("/plans/:planId", RoleMiddleware(domain.RoleCoach), scheduleHandler.DeletePlan)

		// --- Group sessions ---
		groupSessionGroup := protected.Group("/group-sessions")
		{
			// Finish call: coaches only.
			groupSessionGroup.POST("", RoleMiddleware(domain.RoleCoach), groupSessionHandler.SubmitGroupSession)
			groupSessionGroup.GET("/:id", groupSessionHandler.GetSessionDetail)
			groupSessionGroup.GET("/:id/participants/:participantId", groupSessionHandler.GetHistoryDetail)
			groupSessionGroup.GET("/:id/repeat-seed", RoleMiddleware(domain.RoleCoach), groupSessionHandler.GetRepeatSeed)
			groupSessionGroup.GET("/:id/report", RoleMiddleware(domain.RoleCoach), groupSessionHandler.GetReportURL)
		}

		// --- Participant history (fixed page size of 20) ---
		protected.GET("/participants/:participantId/history", groupSessionHandler.GetHistory)
	}
}
