package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"campusjob/internal/api/middleware"
	"campusjob/internal/auth"
	"campusjob/internal/config"
)

// RegisterRoutes 注册全部 /api 路由。
// 路径沿用移动端既有的调用约定，按角色分组挂中间件。
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	authService *auth.AuthService,
	redisClient *redis.Client,
	logger *slog.Logger,
	storageClient ObjectStorage,
	cfg *config.Config,
) {
	accountHandler := NewAccountHandler(db, authService, redisClient, logger,
		cfg.Auth.LoginRateLimitPerHour, cfg.Auth.LoginLockThreshold, cfg.Auth.LoginLockTTL)
	jobHandler := NewJobHandler(db, logger)
	applicationHandler := NewApplicationHandler(db, logger)
	profileHandler := NewProfileHandler(db, storageClient, logger, cfg.Upload.ClamdAddr, cfg.Upload.MaxBytes)
	activityHandler := NewActivityHandler(db, logger)
	employerHandler := NewEmployerHandler(db, logger)
	managerHandler := NewManagerHandler(db, storageClient, logger)

	authMiddleware := middleware.AuthMiddleware(authService)
	seekerOnly := middleware.RequireRole(auth.RoleJobSeeker)
	employerOnly := middleware.RequireRole(auth.RoleEmployer)
	managerOnly := middleware.RequireRole(auth.RoleManager)

	api := router.Group("/api")
	{
		// 注册与登录，无需令牌。
		api.POST("/validate-jobseeker", accountHandler.ValidateJobSeeker)
		api.POST("/validate-employer", accountHandler.ValidateEmployer)
		api.POST("/signup-jobseeker", accountHandler.SignupJobSeeker)
		api.POST("/signup-employer", accountHandler.SignupEmployer)
		api.POST("/login", accountHandler.Login)
		api.POST("/refresh", accountHandler.Refresh)
		api.POST("/logout", authMiddleware, accountHandler.Logout)

		authed := api.Group("")
		authed.Use(authMiddleware)
		{
			// 任何已登录角色都能看公告。
			authed.GET("/job-detail/:jobId", jobHandler.JobDetail)
			authed.GET("/all-jobs", jobHandler.ListAllJobs)
			authed.GET("/departments", jobHandler.ListDepartments)
		}

		seeker := api.Group("")
		seeker.Use(authMiddleware, seekerOnly)
		{
			seeker.POST("/job-status-insert", applicationHandler.Apply)
			seeker.GET("/jobseeker/applications/:jobSeekerId", applicationHandler.ListForJobSeeker)

			seeker.POST("/save-normal-info", profileHandler.SaveBasicInfo)
			seeker.GET("/get-normal-info/:jobSeekerId", profileHandler.GetBasicInfo)
			seeker.GET("/jobseeker-profile-summary/:jobSeekerId", profileHandler.ProfileSummary)

			seeker.POST("/save-grad-info", profileHandler.SaveEducation)
			seeker.GET("/get-education-info/:jobSeekerId", profileHandler.GetEducation)
			seeker.DELETE("/delete-grad-info/:jobSeekerId", profileHandler.DeleteEducation)

			seeker.POST("/save-career-statement", profileHandler.SaveCareerStatement)
			seeker.GET("/get-career-statement/:jobSeekerId", profileHandler.GetCareerStatement)
			seeker.PUT("/update-career-statement/:jobSeekerId", profileHandler.UpdateCareerStatement)
			seeker.DELETE("/delete-career-statement/:jobSeekerId", profileHandler.DeleteCareerStatement)

			seeker.POST("/save-experience-activity", activityHandler.CreateExperienceActivity)
			seeker.GET("/get-experience-activities/:jobSeekerId", activityHandler.ListExperienceActivities)
			seeker.PUT("/update-experience-activity/:activityId", activityHandler.UpdateExperienceActivity)
			seeker.DELETE("/delete-experience-activity/:activityId/:jobSeekerId", activityHandler.DeleteExperienceActivity)

			seeker.POST("/save-certification", activityHandler.CreateCertification)
			seeker.GET("/get-certifications/:jobSeekerId", activityHandler.ListCertifications)
			seeker.POST("/update-certification", activityHandler.UpdateCertification)
			seeker.DELETE("/delete-certification/:certificationId/:jobSeekerId", activityHandler.DeleteCertification)
		}

		employer := api.Group("")
		employer.Use(authMiddleware, employerOnly)
		{
			employer.POST("/post-job", jobHandler.CreateJob)
			employer.GET("/job-list/:employerId", jobHandler.ListJobsByEmployer)
			employer.PUT("/update-job/:jobId", jobHandler.UpdateJob)
			employer.DELETE("/delete-job/:jobId", jobHandler.DeleteJob)

			employer.GET("/employer/applications/:employerId", applicationHandler.ListForEmployer)
			employer.PUT("/employer/update-status/:applicationId", applicationHandler.UpdateStatus)
			employer.GET("/employer/applicant-detail/:jobSeekerId/:jobId", applicationHandler.ApplicantDetail)

			employer.GET("/employer-profile/:id", employerHandler.Profile)
			employer.PUT("/update-employer-profile/:id", employerHandler.UpdateProfile)
			employer.DELETE("/delete-employer/:id", employerHandler.Delete)
		}

		manager := api.Group("")
		manager.Use(authMiddleware, managerOnly)
		{
			manager.GET("/users", managerHandler.ListUsers)
			manager.DELETE("/users/:type/:id", managerHandler.DeleteUser)

			postManagement := manager.Group("/postManagement")
			{
				postManagement.GET("/getAllPostJob", managerHandler.ListAllPostings)
				postManagement.GET("/selectManagerPostJob", managerHandler.SearchPostings)
				postManagement.DELETE("/deleteManagerPostJob/:id", managerHandler.DeletePosting)
			}
		}
	}
}
