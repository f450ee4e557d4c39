package router

import (
	"net/http"

	"simkas/internal/handler"
	"simkas/internal/middleware"
	"simkas/internal/pkg"
	"simkas/internal/service"

	"github.com/gin-gonic/gin"
)

type Deps struct {
	Users       *service.UserService
	Master      *service.MasterService
	Campaigns   *service.CampaignService
	Submissions *service.SubmissionService
	Validation  *service.ValidationService
	Aggregates  *service.AggregationService
	Tokens      *pkg.TokenManager
	Sessions    service.SessionStore // nil disables the single-login check
	MaxUploadMB int64
}

func InitRouter(d Deps) *gin.Engine {
	handler.RegisterValidators()
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	var sessions middleware.SessionChecker
	if d.Sessions != nil {
		sessions = d.Sessions
	}
	auth := middleware.AuthMiddleware(d.Tokens, sessions, d.Users)

	user := handler.NewUserHandler(d.Users)
	master := handler.NewMasterHandler(d.Master)
	campaign := handler.NewCampaignHandler(d.Campaigns, d.Submissions, d.Aggregates)
	submission := handler.NewSubmissionHandler(d.Submissions, d.Validation, d.MaxUploadMB)
	dashboard := handler.NewDashboardHandler(d.Aggregates)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", user.Register)
		authGroup.POST("/login", user.Login)
		authGroup.POST("/refresh", user.Refresh)
		authGroup.POST("/logout", auth, user.Logout)
	}

	userGroup := api.Group("/users")
	userGroup.Use(auth)
	{
		userGroup.GET("/profile", user.Profile)
		userGroup.PUT("/profile", user.UpdateProfile)
		userGroup.PUT("/password", user.ChangePassword)
	}

	masterGroup := api.Group("/master")
	masterGroup.Use(auth)
	{
		masterGroup.GET("/kelas", master.ListClasses)
		masterGroup.POST("/kelas", master.CreateClass)
		masterGroup.GET("/angkatan", master.ListCohorts)
		masterGroup.POST("/angkatan", master.CreateCohort)
	}

	campaignGroup := api.Group("/campaigns")
	campaignGroup.Use(auth)
	{
		campaignGroup.GET("", campaign.ListVisible)
		campaignGroup.POST("", campaign.Create)
		campaignGroup.GET("/managed", campaign.ListManaged)
		campaignGroup.GET("/:id", campaign.Get)
		campaignGroup.PATCH("/:id/status", campaign.SetStatus)
		campaignGroup.GET("/:id/submissions", campaign.Submissions)
		campaignGroup.GET("/:id/total", campaign.Total)
		campaignGroup.GET("/:id/pendingCount", campaign.PendingCount)
		campaignGroup.GET("/:id/expenses", campaign.ListExpenses)
		campaignGroup.POST("/:id/expenses", campaign.RecordExpense)
	}

	submissionGroup := api.Group("/submissions")
	submissionGroup.Use(auth)
	{
		submissionGroup.POST("", submission.Create)
		submissionGroup.POST("/proofs", submission.UploadProof)
		submissionGroup.GET("/history", submission.History)
		submissionGroup.GET("/:id", submission.Get)
		submissionGroup.GET("/:id/proof", submission.Proof)
		submissionGroup.POST("/:id/approve", submission.Approve)
		submissionGroup.POST("/:id/reject", submission.Reject)
	}

	dashboardGroup := api.Group("/dashboard")
	dashboardGroup.Use(auth)
	{
		dashboardGroup.GET("/kelas", dashboard.Class)
		dashboardGroup.GET("/angkatan", dashboard.Cohort)
	}

	return r
}
