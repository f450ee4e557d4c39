package pkg

import (
	"crypto/tls"
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // display sender, may equal Username
}

func SendEmail(cfg SMTPConfig, to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return d.DialAndSend(m)
}

// DecisionHTML renders the notice sent when a submission is approved or rejected.
func DecisionHTML(name, campaign, amount string, approved bool, reason string) string {
	if approved {
		return fmt.Sprintf(`<p>Halo %s,</p><p>Pembayaran <b>%s</b> untuk <b>%s</b> telah <b>divalidasi</b>.</p>`,
			html.EscapeString(name), html.EscapeString(amount), html.EscapeString(campaign))
	}
	return fmt.Sprintf(`<p>Halo %s,</p><p>Pembayaran <b>%s</b> untuk <b>%s</b> <b>ditolak</b>.</p><p>Alasan: %s</p>`,
		html.EscapeString(name), html.EscapeString(amount), html.EscapeString(campaign), html.EscapeString(reason))
}
