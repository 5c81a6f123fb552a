package mailer

import (
	"context"
	"log"
	"strings"
)

// Message - письмо с черновиком для отправки заказчику.
type Message struct {
	To          string
	Cc          string
	Subject     string
	Body        string
	Attachments []string
}

// Mailer - интерфейс отправки писем. Реальный транспорт вне рамок
// системы, важен только контракт подтверждения отправки.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer пишет факт отправки в журнал вместо реальной доставки.
type LogMailer struct {
	Logger *log.Logger
}

// NewLogMailer создаёт новый экземпляр LogMailer.
func NewLogMailer(logger *log.Logger) *LogMailer {
	return &LogMailer{Logger: logger}
}

// Send подтверждает отправку, записав письмо в журнал.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.Logger.Printf("email sent to %s (cc: %s), subject: %q, attachments: %s",
		msg.To, msg.Cc, msg.Subject, strings.Join(msg.Attachments, ", "))
	return nil
}
