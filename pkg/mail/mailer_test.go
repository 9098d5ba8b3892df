package mail

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSMTPClient struct {
	mailFrom string
	rcpts    []string
	data     strings.Builder
	quit     bool
}

func (f *fakeSMTPClient) Mail(from string) error { f.mailFrom = from; return nil }
func (f *fakeSMTPClient) Rcpt(to string) error   { f.rcpts = append(f.rcpts, to); return nil }
func (f *fakeSMTPClient) Data() (io.WriteCloser, error) {
	return nopWriteCloser{&f.data}, nil
}
func (f *fakeSMTPClient) Quit() error                         { f.quit = true; return nil }
func (f *fakeSMTPClient) Close() error                        { return nil }
func (f *fakeSMTPClient) StartTLS(*tls.Config) error          { return nil }
func (f *fakeSMTPClient) Auth(smtp.Auth) error                { return nil }
func (f *fakeSMTPClient) Extension(string) (bool, string)     { return false, "" }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newTestMailer(t *testing.T, cfg SMTPSettings, client *fakeSMTPClient) Mailer {
	t.Helper()

	mailer, err := NewSMTPMailer(cfg)
	require.NoError(t, err)

	impl, ok := mailer.(*smtpMailer)
	require.True(t, ok)

	impl.dialFn = func(context.Context, SMTPSettings) (net.Conn, smtpClient, error) {
		server, conn := net.Pipe()
		_ = server.Close()
		return conn, client, nil
	}
	impl.authFn = func(smtpClient, SMTPSettings) error { return nil }

	return mailer
}

func TestSendDisabledReturnsSentinel(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{To: []string{"crew@example.com"}})
	require.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestSendDeliversMessage(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newTestMailer(t, SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "noreply@example.com",
		Timeout: time.Second,
	}, client)

	err := mailer.Send(context.Background(), Message{
		To:      []string{"producer@example.com", "producer@example.com", "vfx@example.com"},
		Subject: "You have been invited",
		Body:    "Join the Backlot Studio organization.",
	})
	require.NoError(t, err)

	require.Equal(t, "noreply@example.com", client.mailFrom)
	require.Equal(t, []string{"producer@example.com", "vfx@example.com"}, client.rcpts)
	require.Contains(t, client.data.String(), "Subject: You have been invited")
	require.Contains(t, client.data.String(), "Join the Backlot Studio organization.")
	require.True(t, client.quit)
}

func TestSendRejectsMissingRecipients(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newTestMailer(t, SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "noreply@example.com",
	}, client)

	err := mailer.Send(context.Background(), Message{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least one recipient")
}

func TestSendRejectsInvalidAddresses(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newTestMailer(t, SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "noreply@example.com",
	}, client)

	err := mailer.Send(context.Background(), Message{To: []string{"not-an-address"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid recipient")
}

func TestNewSMTPMailerValidatesEnabledConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true})
	require.Error(t, err)

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.example.com"})
	require.Error(t, err)
}

func TestSubjectHeaderSanitized(t *testing.T) {
	client := &fakeSMTPClient{}
	mailer := newTestMailer(t, SMTPSettings{
		Enabled: true,
		Host:    "smtp.example.com",
		Port:    587,
		From:    "noreply@example.com",
	}, client)

	err := mailer.Send(context.Background(), Message{
		To:      []string{"crew@example.com"},
		Subject: "Line one\r\nBcc: sneaky@example.com",
		Body:    "body",
	})
	require.NoError(t, err)
	require.NotContains(t, client.data.String(), "\r\nBcc: sneaky@example.com")
}
