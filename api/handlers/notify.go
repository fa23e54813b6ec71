package handlers

import (
	"fmt"
	"os"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

// Notifier sends operational email notifications to the duty supervisor
// address. Sends are fire-and-forget so they never block a dispatch.
type Notifier struct {
	apiKey string
	to     string
}

// NewNotifier reads the sendgrid credentials from the environment. With no
// API key configured the notifier is a no-op.
func NewNotifier() *Notifier {
	return &Notifier{
		apiKey: os.Getenv("SENDGRID_API_KEY"),
		to:     os.Getenv("SUPERVISOR_EMAIL"),
	}
}

// MissionDispatched notifies the supervisor that an ambulance left the base
func (n *Notifier) MissionDispatched(c models.EmergencyCase) {
	subject := fmt.Sprintf("Ambulância despachada - caso %s", c.ID)
	body := fmt.Sprintf("Caso %s (%s) em %s: ambulância despachada.",
		c.ID, models.PriorityDisplay[c.Priority].Label, c.LocationName)
	n.send(subject, body)
}

// SosTriggered notifies the supervisor that a corporate panic button fired
func (n *Notifier) SosTriggered(c models.EmergencyCase) {
	subject := fmt.Sprintf("SOS Corporativo - caso %s", c.ID)
	body := fmt.Sprintf("Activação de pânico da empresa %s: caso crítico %s aberto em %s (funcionário: %s).",
		c.CompanyID, c.ID, c.LocationName, c.PatientName)
	n.send(subject, body)
}

// MissionFinalized notifies the supervisor that a mission closed with a report
func (n *Notifier) MissionFinalized(c models.EmergencyCase) {
	subject := fmt.Sprintf("Missão finalizada - caso %s", c.ID)
	body := fmt.Sprintf("Caso %s encerrado em %s.", c.ID, c.LocationName)
	if c.Report != nil {
		body = fmt.Sprintf("Caso %s encerrado. Tempo total de operação: %s.", c.ID, c.Report.TotalOperationTime)
	}
	n.send(subject, body)
}

func (n *Notifier) send(subject, body string) {
	if n == nil || n.apiKey == "" || n.to == "" {
		return
	}
	go func() {
		from := mail.NewEmail("SSM Dispatch", "no-reply@ssm-dispatch.co.mz")
		to := mail.NewEmail("", n.to)
		message := mail.NewSingleEmail(from, subject, to, body, body)

		client := sendgrid.NewSendClient(n.apiKey)
		if _, err := client.Send(message); err != nil {
			zap.S().Warnw("failed to send notification email", "subject", subject, "error", err)
		}
	}()
}
