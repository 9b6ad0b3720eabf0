package core

import "net/mail"

type (
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string

		// TemplateData carries the dispatch event that triggered this
		// message, for services that render richer bodies from it.
		TemplateData interface{}
	}

	// EmailService is any service that can send emails.
	// Delivery is fire-and-forget: failures are logged by the service and
	// never surfaced to (or rolled back into) the triggering operation.
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.BodyStr != "" }
