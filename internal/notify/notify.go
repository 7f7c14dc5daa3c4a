// Package notify mails the summary of a run to a fixed list of recipients.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"robotorder/internal/components/telemetry"
	"robotorder/internal/pipeline"
	"strings"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_mailer_send = "mailer.send"
)

var tracer = otel.Tracer("robotorder.internal.notify")

type Config struct {
	Server       string   `json:"server"`
	Port         int      `json:"port"`
	EmailAddress string   `json:"email_address"`
	Password     string   `json:"password"`
	To           []string `json:"to"`
}

// Enabled is false when there is no server or nobody to send to.
func (c Config) Enabled() bool {
	return c.Server != "" && len(c.To) > 0
}

type Mailer struct {
	cfg Config
	tel telemetry.API
}

func NewMailer(cfg Config, tel telemetry.API) Mailer {
	return Mailer{
		cfg: cfg,
		tel: telemetry.NewScopedAPI("notify", tel),
	}
}

// Message builds the summary mail of a run, the receipts archive is attached
// when the run got far enough to write one.
func (m Mailer) Message(summary pipeline.Summary, runErr error) (*email.Email, error) {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("RobotSpareBin orders <%s>", m.cfg.EmailAddress)
	mail.To = m.cfg.To

	status := "completed"
	if runErr != nil {
		status = "aborted"
	}
	mail.Subject = fmt.Sprintf("Robot order run %s %s", summary.RunID, status)

	body := &strings.Builder{}
	fmt.Fprintf(body, "Run %s %s after %d orders: %d succeeded, %d failed.\n", summary.RunID, status, len(summary.Orders), summary.Succeeded, summary.Failed)
	if runErr != nil {
		fmt.Fprintf(body, "\nThe run stopped with: %s\n", runErr.Error())
	}
	wroteHeader := false
	for _, o := range summary.Orders {
		if o.Error == "" {
			continue
		}
		if !wroteHeader {
			body.WriteString("\nOrders that need attention:\n")
			wroteHeader = true
		}
		fmt.Fprintf(body, "- order %s (%s after %d attempts): %s\n", o.OrderNumber, o.Outcome, o.Attempts, o.Error)
	}
	mail.Text = []byte(body.String())

	if summary.Archive != "" {
		_, err := mail.AttachFile(summary.Archive)
		if err != nil {
			return nil, fmt.Errorf("attach %s: %w", summary.Archive, err)
		}
	}
	return mail, nil
}

// Send mails the summary, servers that do not support AUTH are sent to without credentials.
func (m Mailer) Send(ctx context.Context, summary pipeline.Summary, runErr error) error {
	ctx, span := tracer.Start(ctx, "Send")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return err
	}

	mail, err := m.Message(summary, runErr)
	if err != nil {
		m.tel.ReportBroken(report_mailer_send, err, summary.RunID)
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Server, m.cfg.Port)
	err = mail.Send(addr, smtp.PlainAuth("", m.cfg.EmailAddress, m.cfg.Password, m.cfg.Server))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send email")
		m.tel.ReportBroken(report_mailer_send, err, summary.RunID)
		return fmt.Errorf("send run summary: %w", err)
	}
	m.tel.ReportDebug("sent run summary", summary.RunID, m.cfg.To)
	return nil
}
