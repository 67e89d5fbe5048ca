package routes

import (
	"clinicapi-backend/config"
	"clinicapi-backend/controllers"
	"clinicapi-backend/models"
	"clinicapi-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Patient routes
		patients := api.Group("/patients")
		{
			patients.POST("", controllers.CreatePatient)
			patients.GET("", controllers.GetPatients)
			patients.GET("/:id", controllers.GetPatient)
			patients.PUT("/:id", controllers.UpdatePatient)
			patients.DELETE("/:id", controllers.DeletePatient)
		}

		// Doctor routes
		doctors := api.Group("/doctors")
		{
			doctors.POST("", controllers.CreateDoctor)
			doctors.GET("", controllers.GetDoctors)
			doctors.GET("/:id", controllers.GetDoctor)
			doctors.PUT("/:id", controllers.UpdateDoctor)
			doctors.DELETE("/:id", controllers.DeleteDoctor)
		}

		// Medical service routes; price catalog changes are admin-only
		medicalServices := api.Group("/services")
		{
			medicalServices.GET("", controllers.GetMedicalServices)
			medicalServices.GET("/:id", controllers.GetMedicalService)

			medicalServices.POST("", utils.RequireRoles(models.RoleAdmin), controllers.CreateMedicalService)
			medicalServices.PUT("/:id", utils.RequireRoles(models.RoleAdmin), controllers.UpdateMedicalService)
			medicalServices.DELETE("/:id", utils.RequireRoles(models.RoleAdmin), controllers.DeleteMedicalService)
		}

		// Appointment routes
		appointments := api.Group("/appointments")
		{
			appointments.POST("", controllers.CreateAppointment)
			appointments.GET("", controllers.GetAppointments)
			appointments.GET("/:id", controllers.GetAppointment)
			appointments.PATCH("/:id/complete", controllers.CompleteAppointment)
			appointments.PATCH("/:id/cancel", controllers.CancelAppointment)
			appointments.PATCH("/:id/no-show", controllers.MarkAppointmentNoShow)

			// Issuing sits under the appointment, like the invoice it creates
			appointments.POST("/:id/invoice",
				utils.RequireRoles(models.RoleAdmin, models.RoleBilling),
				controllers.IssueInvoice)
		}

		// Invoice routes
		invoices := api.Group("/invoices")
		invoices.Use(utils.RequireRoles(models.RoleAdmin, models.RoleBilling))
		{
			invoices.GET("", controllers.GetInvoices)
			invoices.GET("/:id", controllers.GetInvoice)
			invoices.PATCH("/:id/pay", controllers.PayInvoice)
		}

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)
	}

	return r
}
