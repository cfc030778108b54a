package queue

import (
	"fmt"

	"github.com/ds124wfegd/learnlink/internal/entity"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const timeLayout = "02.01.2006 15:04 MST"

// FormatMessage renders the notification text for an event, or "" when
// the event is not worth a message.
func FormatMessage(e *entity.DomainEvent) string {
	when := ""
	if !e.StartTime.IsZero() {
		when = "\nSession: " + e.StartTime.UTC().Format(timeLayout)
	}

	switch e.Type {
	case entity.EventBookingCreated:
		return fmt.Sprintf("*New booking #%d*\nWaiting for the professor to confirm.%s", e.BookingID, when)
	case entity.EventBookingConfirmed:
		return fmt.Sprintf("*Booking #%d confirmed*%s", e.BookingID, when)
	case entity.EventBookingCompleted:
		return fmt.Sprintf("*Session #%d completed*\nYou can now leave a review.", e.BookingID)
	case entity.EventBookingCanceled:
		msg := fmt.Sprintf("*Booking #%d canceled*%s", e.BookingID, when)
		if e.Reason != "" {
			// причину пишет пользователь, разметку в ней экранируем
			msg += "\nReason: " + tgbotapi.EscapeText(tgbotapi.ModeMarkdown, e.Reason)
		}
		return msg
	case entity.EventPaymentPaid:
		if e.CourseID != 0 {
			return fmt.Sprintf("*Payment received*\nCourse #%d is unlocked.", e.CourseID)
		}
		return fmt.Sprintf("*Payment received*\nSession #%d is paid.", e.BookingID)
	case entity.EventPaymentFailed:
		return fmt.Sprintf("*Payment #%d failed*\nNo money was taken.", e.PaymentID)
	case entity.EventSessionReminder:
		return fmt.Sprintf("*Reminder*\nSession #%d starts soon.%s", e.BookingID, when)
	}
	return ""
}
