// Package mailer implements the MailTransport port with wneessen/go-mail.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
	maillog "github.com/wneessen/go-mail/log"

	"github.com/ericfisherdev/fundintake/internal/domain/model"
	"github.com/ericfisherdev/fundintake/internal/domain/port/driven"
)

// Default transport kinds.
const (
	KindSendmail = "sendmail"
	KindFile     = "file"
)

// Compile-time interface satisfaction check.
var _ driven.MailTransport = (*Transport)(nil)

// Config selects the default transport used when no SMTP override is given.
type Config struct {
	Kind         string // KindSendmail or KindFile
	SendmailPath string
	SpoolDir     string
}

// Transport delivers messages through the local sendmail binary, a spool
// directory, or a per-message SMTP relay.
type Transport struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Transport. The spool directory is created when the file
// transport is selected.
func New(cfg Config, logger *slog.Logger) (*Transport, error) {
	switch cfg.Kind {
	case KindSendmail:
		if cfg.SendmailPath == "" {
			return nil, fmt.Errorf("sendmail transport requires a sendmail path")
		}
	case KindFile:
		if err := os.MkdirAll(cfg.SpoolDir, 0o750); err != nil {
			return nil, fmt.Errorf("create mail spool %s: %w", cfg.SpoolDir, err)
		}
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Kind)
	}

	return &Transport{cfg: cfg, logger: logger}, nil
}

// Send delivers env. A non-nil override sends this one message through the
// described relay; the default transport is untouched.
func (t *Transport) Send(ctx context.Context, env model.Envelope, override *model.SMTPOverride) error {
	msg, err := buildMessage(env)
	if err != nil {
		return err
	}

	if override != nil {
		return t.sendSMTP(ctx, msg, override)
	}

	switch t.cfg.Kind {
	case KindFile:
		return t.spool(msg)
	default:
		if err := msg.WriteToSendmailWithContext(ctx, t.cfg.SendmailPath); err != nil {
			return fmt.Errorf("sendmail: %w", err)
		}
		return nil
	}
}

func buildMessage(env model.Envelope) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := msg.FromFormat(env.FromName, env.FromAddress); err != nil {
		return nil, fmt.Errorf("set from %q: %w", env.FromAddress, err)
	}
	if err := msg.To(env.To); err != nil {
		return nil, fmt.Errorf("set to %q: %w", env.To, err)
	}
	if env.ReplyTo != "" {
		if err := msg.ReplyTo(env.ReplyTo); err != nil {
			return nil, fmt.Errorf("set reply-to %q: %w", env.ReplyTo, err)
		}
	}

	msg.Subject(env.Subject)
	msg.SetBodyString(mail.TypeTextHTML, env.HTMLBody)
	msg.SetDate()
	msg.SetMessageID()

	return msg, nil
}

func (t *Transport) sendSMTP(ctx context.Context, msg *mail.Msg, o *model.SMTPOverride) error {
	client, err := mail.NewClient(o.Host, clientOptions(o)...)
	if err != nil {
		return fmt.Errorf("smtp client for %s: %w", o.Host, err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send via %s:%d: %w", o.Host, o.Port, err)
	}
	return nil
}

// clientOptions maps an override onto go-mail client options. ssl selects
// implicit TLS, tls requires STARTTLS and anything else upgrades when the
// server offers it.
func clientOptions(o *model.SMTPOverride) []mail.Option {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = model.SMTPTimeout
	}

	opts := []mail.Option{
		mail.WithPort(o.Port),
		mail.WithSMTPAuth(authType(o.Encryption)),
		mail.WithUsername(o.Username),
		mail.WithPassword(o.Password),
		mail.WithTimeout(timeout),
		mail.WithTLSConfig(&tls.Config{
			ServerName:         o.Host,
			InsecureSkipVerify: o.InsecureSkipVerify, //nolint:gosec // opt-in via smtp_skip_verify
			MinVersion:         tls.VersionTLS12,
		}),
	}

	switch o.Encryption {
	case model.EncryptionSSL:
		opts = append(opts, mail.WithSSL())
	case model.EncryptionTLS:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	if o.Trace != nil {
		opts = append(opts, mail.WithDebugLog(), mail.WithLogger(maillog.New(o.Trace, maillog.LevelDebug)))
	}

	return opts
}

// authType picks the PLAIN variant for the encryption mode. go-mail refuses
// plain PLAIN on a cleartext session to anything but localhost, so the "none"
// mode sends credentials with PLAIN-NOENC, which still uses STARTTLS when the
// relay offers it.
func authType(enc string) mail.SMTPAuthType {
	if enc == model.EncryptionNone {
		return mail.SMTPAuthPlainNoEnc
	}
	return mail.SMTPAuthPlain
}

// spool writes the message as an .eml file named by time and a random suffix.
func (t *Transport) spool(msg *mail.Msg) error {
	name := fmt.Sprintf("%s-%s.eml", time.Now().UTC().Format("20060102T150405"), uuid.NewString())
	path := filepath.Join(t.cfg.SpoolDir, name)

	if err := msg.WriteToFile(path); err != nil {
		return fmt.Errorf("spool message: %w", err)
	}

	t.logger.Debug("message spooled", "path", path)
	return nil
}
