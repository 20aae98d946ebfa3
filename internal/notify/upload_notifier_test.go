package notify

import (
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stickerverse/sticker-catalog/config"
	"github.com/stickerverse/sticker-catalog/internal/app/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func testSMTPConfig() config.SMTPConfig {
	return config.SMTPConfig{
		Host:     "smtp.test",
		Port:     "2525",
		Username: "user",
		Password: "pass",
		From:     "uploads@test",
		NotifyTo: []string{"ops@test", "art@test"},
	}
}

func testSticker() model.Sticker {
	return model.Sticker{
		Code:            "POK-GEN00001",
		Name:            "Bulbasaur <b>",
		CategoryCode:    "POKEMON",
		SubcategoryCode: "POK-GEN",
		Filename:        "POK-GEN_bulbasaur.png",
	}
}

func TestBuildUploadMessage(t *testing.T) {
	msg, err := buildUploadMessage("uploads@test", []string{"a@test", "b@test"}, testSticker())
	require.NoError(t, err)

	text := string(msg)
	assert.Contains(t, text, "To: a@test, b@test\r\n")
	assert.Contains(t, text, "Subject: Sticker uploaded: POK-GEN00001\r\n")
	assert.Contains(t, text, "POK-GEN_bulbasaur.png")
	assert.Contains(t, text, "Bulbasaur &lt;b&gt;")
}

func TestUploadNotifier_SendsAsynchronously(t *testing.T) {
	sent := make(chan sentMail, 1)
	n := NewUploadNotifier(testSMTPConfig())
	n.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent <- sentMail{addr: addr, from: from, to: to, msg: string(msg)}
		return nil
	}

	n.StickerUploaded(testSticker())

	select {
	case mail := <-sent:
		assert.Equal(t, "smtp.test:2525", mail.addr)
		assert.Equal(t, "uploads@test", mail.from)
		assert.Equal(t, []string{"ops@test", "art@test"}, mail.to)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not sent")
	}
}

func TestUploadNotifier_FailureIsSwallowed(t *testing.T) {
	finished := make(chan struct{})
	n := NewUploadNotifier(testSMTPConfig())
	n.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}
	n.done = func() { close(finished) }

	n.StickerUploaded(testSticker())

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("notification goroutine did not finish")
	}
}

func TestUploadNotifier_DisabledWithoutSMTP(t *testing.T) {
	called := false
	n := NewUploadNotifier(config.SMTPConfig{})
	n.send = func(string, smtp.Auth, string, []string, []byte) error {
		called = true
		return nil
	}

	n.StickerUploaded(testSticker())
	time.Sleep(10 * time.Millisecond)
	assert.False(t, called)
}
