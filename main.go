package main

import (
	"DentalOffice/CronJobs"
	"DentalOffice/FirebaseMessaging"
	"DentalOffice/Models"
	"DentalOffice/Notifications"
	"DentalOffice/Routes"
	"DentalOffice/Verify"
	"DentalOffice/Voice"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	Models.ConnectDataBase()
	FirebaseMessaging.Setup()

	provider := Verify.NewClientFromEnv()
	Voice.Provider = provider
	Notifications.SMS = provider

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	}))
	Routes.ConfigRoutes(router)

	reminderService := CronJobs.NewReminderWorker(Models.DB)
	reminderService.StartCron()

	router.Run(":3005")
}
