package FirebaseMessaging

import (
	"context"
	"log"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

var (
	app             *firebase.App
	messagingClient *messaging.Client
)

// Setup initializes the Firebase messaging client used for staff push
// notifications. Push is optional; a failed setup disables it rather than
// taking the service down.
func Setup() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")

	ctx := context.Background()
	var err error

	if serviceAccountPath != "" {
		opt := option.WithCredentialsFile(serviceAccountPath)
		app, err = firebase.NewApp(ctx, nil, opt)
	} else {
		app, err = firebase.NewApp(ctx, nil)
	}
	if err != nil {
		log.Printf("Failed to initialize Firebase app, staff push disabled: %v", err)
		return
	}

	messagingClient, err = app.Messaging(ctx)
	if err != nil {
		log.Printf("Failed to initialize Firebase messaging client, staff push disabled: %v", err)
		return
	}

	log.Println("Firebase messaging client initialized successfully")
}

// SendToTokens pushes one notification to every supplied device token.
func SendToTokens(title, body string, tokens []string) error {
	if messagingClient == nil || len(tokens) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	notification := &messaging.Notification{Title: title, Body: body}
	android := &messaging.AndroidConfig{
		Priority: "high",
		Notification: &messaging.AndroidNotification{
			Sound:    "default",
			Priority: messaging.PriorityHigh,
		},
	}
	apns := &messaging.APNSConfig{
		Headers: map[string]string{"apns-priority": "10"},
		Payload: &messaging.APNSPayload{
			Aps: &messaging.Aps{
				Alert: &messaging.ApsAlert{Title: title, Body: body},
				Sound: "default",
			},
		},
	}

	if len(tokens) == 1 {
		_, err := messagingClient.Send(ctx, &messaging.Message{
			Token:        tokens[0],
			Notification: notification,
			Android:      android,
			APNS:         apns,
		})
		if err != nil {
			log.Printf("Error sending message: %v", err)
		}
		return err
	}

	_, err := messagingClient.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens:       tokens,
		Notification: notification,
		Android:      android,
		APNS:         apns,
	})
	if err != nil {
		log.Printf("Error sending multicast message: %v", err)
	}
	return err
}
