// Package notify sends out-of-band messages about catalog changes.
package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/stickerverse/sticker-catalog/config"
	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stickerverse/sticker-catalog/pkg/logger"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

var uploadTemplate = template.Must(template.New("upload").Parse(`<h2>Sticker Uploaded Successfully</h2>
<table style="border-collapse:collapse;font-family:sans-serif;">
<tr><td style="padding:4px 12px;font-weight:bold;">Code:</td><td style="padding:4px 12px;">{{.Code}}</td></tr>
<tr><td style="padding:4px 12px;font-weight:bold;">Name:</td><td style="padding:4px 12px;">{{.Name}}</td></tr>
<tr><td style="padding:4px 12px;font-weight:bold;">Filename:</td><td style="padding:4px 12px;">{{.Filename}}</td></tr>
<tr><td style="padding:4px 12px;font-weight:bold;">Category:</td><td style="padding:4px 12px;">{{.CategoryCode}}</td></tr>
<tr><td style="padding:4px 12px;font-weight:bold;">Subcategory:</td><td style="padding:4px 12px;">{{.SubcategoryCode}}</td></tr>
</table>
`))

// UploadNotifier e-mails an upload confirmation for every new sticker.
// Sending happens on its own goroutine and failures are only logged.
type UploadNotifier struct {
	cfg  config.SMTPConfig
	send sendFunc
	done func()
}

func NewUploadNotifier(cfg config.SMTPConfig) *UploadNotifier {
	return &UploadNotifier{cfg: cfg, send: smtp.SendMail}
}

func (n *UploadNotifier) StickerUploaded(sticker model.Sticker) {
	if !n.cfg.Enabled() {
		logger.Debug("Upload notification skipped: SMTP not configured", map[string]interface{}{
			"code": sticker.Code,
		})
		return
	}

	go func() {
		if n.done != nil {
			defer n.done()
		}
		if err := n.deliver(sticker); err != nil {
			logger.Error("Failed to send upload notification", err, map[string]interface{}{
				"code": sticker.Code,
			})
			return
		}
		logger.Info("Upload notification sent", map[string]interface{}{
			"code":       sticker.Code,
			"recipients": len(n.cfg.NotifyTo),
		})
	}()
}

func (n *UploadNotifier) deliver(sticker model.Sticker) error {
	msg, err := buildUploadMessage(n.cfg.From, n.cfg.NotifyTo, sticker)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}
	return n.send(n.cfg.Host+":"+n.cfg.Port, auth, n.cfg.From, n.cfg.NotifyTo, msg)
}

func buildUploadMessage(from string, to []string, sticker model.Sticker) ([]byte, error) {
	var body bytes.Buffer
	if err := uploadTemplate.Execute(&body, sticker); err != nil {
		return nil, fmt.Errorf("failed to render upload notification: %w", err)
	}

	return []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: Sticker uploaded: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		from, strings.Join(to, ", "), sticker.Code, body.String(),
	)), nil
}
