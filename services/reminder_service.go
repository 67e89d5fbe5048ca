// services/reminder_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"clinicapi-backend/models"
	"clinicapi-backend/utils"

	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"
)

type ReminderService struct {
	db     *gorm.DB
	client *twilio.RestClient
}

func NewReminderService(db *gorm.DB) *ReminderService {
	// Initialize Twilio client
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &ReminderService{
		db: db,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (s *ReminderService) StartScheduler() {
	c := cron.New()

	// Run every day at 9 AM
	if _, err := c.AddFunc("0 9 * * *", s.SendDailyReminders); err != nil {
		log.Printf("Failed to schedule reminders: %v", err)
		return
	}

	c.Start()
	log.Println("Reminder scheduler started")
}

// SendDailyReminders notifies patients with an appointment scheduled for
// tomorrow that has not been reminded yet.
func (s *ReminderService) SendDailyReminders() {
	log.Println("Starting daily reminder processing...")

	tomorrow := utils.BeginningOfDay(time.Now().AddDate(0, 0, 1))
	dayAfter := tomorrow.AddDate(0, 0, 1)

	var appointments []models.Appointment
	if err := s.db.
		Where("status = ? AND reminder_sent = ? AND scheduled_at >= ? AND scheduled_at < ?",
			models.AppointmentScheduled, false, tomorrow, dayAfter).
		Find(&appointments).Error; err != nil {
		log.Printf("Failed to fetch appointments: %v", err)
		return
	}

	for _, appointment := range appointments {
		s.sendReminder(appointment)
	}

	log.Println("Daily reminder processing completed")
}

func (s *ReminderService) sendReminder(appointment models.Appointment) {
	var patient models.Patient
	if err := s.db.First(&patient, "id = ?", appointment.PatientID).Error; err != nil {
		log.Printf("Appointment %s: failed to load patient: %v", appointment.ID, err)
		return
	}

	if patient.Phone == "" {
		return
	}

	message := fmt.Sprintf("Hi %s, this is a reminder of your appointment tomorrow at %s.",
		patient.Name, appointment.ScheduledAt.Format("15:04"))

	// WhatsApp for E.164 numbers, plain SMS otherwise
	channel := "sms"
	to := patient.Phone
	if strings.HasPrefix(patient.Phone, "+") {
		to = "whatsapp:" + patient.Phone
		channel = "whatsapp"
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(message)

	if channel == "whatsapp" {
		params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	} else {
		params.SetFrom(os.Getenv("TWILIO_PHONE_NUMBER"))
	}

	status := "sent"
	errorMessage := ""
	if _, err := s.client.Api.CreateMessage(params); err != nil {
		status = "failed"
		errorMessage = err.Error()
		log.Printf("Appointment %s: failed to send reminder: %v", appointment.ID, err)
	}

	reminderLog := models.ReminderLog{
		AppointmentID: appointment.ID,
		PatientID:     patient.ID,
		Message:       message,
		Status:        status,
		ErrorMessage:  errorMessage,
		Channel:       channel,
		SentAt:        time.Now(),
	}
	if err := s.db.Create(&reminderLog).Error; err != nil {
		log.Printf("Appointment %s: failed to log reminder: %v", appointment.ID, err)
	}

	if status == "sent" {
		if err := s.db.Model(&models.Appointment{}).
			Where("id = ?", appointment.ID).
			Update("reminder_sent", true).Error; err != nil {
			log.Printf("Appointment %s: failed to mark reminder sent: %v", appointment.ID, err)
		}
	}
}
