package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/examforge/exam-service/internal/config"
	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/repositories"
	"github.com/examforge/exam-service/internal/services"
	"github.com/examforge/exam-service/internal/utils"
	"github.com/examforge/exam-service/internal/validator"
)

type HandlerManager struct {
	bulkQuestionHandler *BulkQuestionHandler
	examReviewHandler   *ExamReviewHandler
	examSummaryHandler  *ExamSummaryHandler
	gradeHandler        *GradeHandler
	questionHandler     *QuestionHandler
	authMiddleware      *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		bulkQuestionHandler: NewBulkQuestionHandler(serviceManager.BulkQuestion(), validator, logger),
		examReviewHandler:   NewExamReviewHandler(serviceManager.ExamReview(), logger),
		examSummaryHandler:  NewExamSummaryHandler(serviceManager.ExamSummary(), logger),
		gradeHandler:        NewGradeHandler(serviceManager.Grade(), validator, logger),
		questionHandler:     NewQuestionHandler(serviceManager.Question(), logger),
		authMiddleware:      authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Bulk authoring pipeline - Teachers and Admins only
		bulk := v1.Group("/bulk-sessions")
		bulk.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin))
		{
			bulk.POST("", hm.bulkQuestionHandler.CreateSession)
			bulk.GET("/:id", hm.bulkQuestionHandler.GetSession)

			bulk.POST("/:id/manual", hm.bulkQuestionHandler.StartManual)
			bulk.POST("/:id/import", hm.bulkQuestionHandler.StartImport)
			bulk.POST("/:id/export-preview", hm.bulkQuestionHandler.StartExport)

			bulk.PUT("/:id/questions/:index", hm.bulkQuestionHandler.UpdateQuestion)
			bulk.POST("/:id/selections/:index/toggle", hm.bulkQuestionHandler.ToggleSelection)
			bulk.PUT("/:id/selections", hm.bulkQuestionHandler.SetAllSelections)
			bulk.POST("/:id/cancel", hm.bulkQuestionHandler.Cancel)

			bulk.POST("/:id/submit", hm.bulkQuestionHandler.Submit)
			bulk.POST("/:id/export", hm.bulkQuestionHandler.Export)
		}

		// Question bank reads - all authenticated users; deletes are
		// author-checked in the service
		questions := v1.Group("/questions")
		{
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/bank", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.questionHandler.GetBankOverview)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin), hm.questionHandler.DeleteQuestion)
		}

		// Attempt review - the student's own result screen and the
		// teacher's per-student view share this endpoint
		attempts := v1.Group("/attempts")
		{
			attempts.GET("/:id/review", hm.examReviewHandler.GetReview)
		}

		// Exam analytics - Teachers and Admins only
		exams := v1.Group("/exams")
		exams.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin))
		{
			exams.GET("/:id/summary", hm.examSummaryHandler.GetSummary)
			exams.GET("/:id/summary/export", hm.examSummaryHandler.ExportSummary)
		}

		// Grade aggregation - Teachers and Admins only
		grades := v1.Group("/grades")
		grades.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin))
		{
			grades.POST("/compute", hm.gradeHandler.ComputeGrade)
			grades.PUT("/manual-scores", hm.gradeHandler.SaveManualScore)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "exam-service",
		})
	})
}
