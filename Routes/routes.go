package Routes

import (
	"DentalOffice/Controllers"
	"DentalOffice/Middleware"
	"DentalOffice/SSE"
	"DentalOffice/Voice"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func ConfigRoutes(router *gin.Engine) {
	// Gzip Compression
	router.Use(gzip.Gzip(gzip.BestSpeed))

	// Public routes
	public := router.Group("/api")
	{
		public.POST("/login", Controllers.Login)
		public.POST("/SaveFcmToken", Controllers.SaveFcmToken)
	}

	// Voice agent routes. These answer the phone agent directly, so
	// they stay outside the staff JWT middleware: callers prove
	// identity with a verification code and a challenge token instead.
	voice := router.Group("/api/voice")
	{
		voice.POST("/SendCode", Voice.SendCode)
		voice.POST("/VerifyCode", Voice.VerifyCode)
		voice.POST("/CheckBalance", Voice.CheckBalance)
		voice.POST("/GetBills", Voice.GetBills)
		voice.POST("/GetBillDetails", Voice.GetBillDetails)
		voice.POST("/VerifyBillReference", Voice.VerifyBillReference)
		voice.POST("/GetPaymentMethods", Voice.GetPaymentMethods)
		voice.POST("/MakePayment", Voice.MakePayment)
		voice.POST("/GetAppointments", Voice.GetAppointments)
		voice.POST("/GetAppointmentDetails", Voice.GetAppointmentDetails)
		voice.POST("/ScheduleAppointment", Voice.ScheduleAppointment)
		voice.POST("/RescheduleAppointment", Voice.RescheduleAppointment)
		voice.POST("/CancelAppointment", Voice.CancelAppointment)
		voice.POST("/GetServicesAndDentists", Voice.GetServicesAndDentists)
	}

	// Authorized routes
	authorized := router.Group("/api/protected")
	authorized.Use(Middleware.JwtAuthMiddleware())
	{
		// User-related routes
		authorized.GET("/user", Controllers.CurrentUser)
		authorized.POST("/register", Controllers.Register)

		// Patient-related routes
		authorized.GET("/FetchPatients", Controllers.FetchPatients)
		authorized.POST("/CreatePatient", Controllers.CreatePatient)
		authorized.POST("/UpdatePatient", Controllers.UpdatePatient)

		// Billing-related routes
		authorized.POST("/CreateBill", Controllers.CreateBill)
		authorized.POST("/AddPaymentMethod", Controllers.AddPaymentMethod)
		authorized.POST("/ExportBillingTable", Controllers.ExportBillingTable)

		// Session-related routes
		authorized.POST("/ClearSession", Controllers.ClearSession)

		// SSE (Server-Sent Events) route
		authorized.GET("/RequestSSE", SSE.AgentEventsSSE)
	}
}
