package notifications

// Шаблоны уведомлений
const (
	TemplateRSVPConfirmation = "rsvp_confirmation"
	TemplateRSVPWaitlisted   = "rsvp_waitlisted"
	TemplateRSVPPromoted     = "rsvp_promoted"
	TemplateLessonReminder   = "lesson_reminder"
)

// Message уведомление для сервиса уведомлений
type Message struct {
	RecipientID int64             `json:"recipient_id"`
	Template    string            `json:"template"`
	Data        map[string]string `json:"data,omitempty"`
}

// ErrorResponse модель ошибки от сервиса уведомлений
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
