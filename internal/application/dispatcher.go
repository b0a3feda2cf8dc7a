package application

import (
	"bytes"
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ericfisherdev/fundintake/internal/domain/model"
	"github.com/ericfisherdev/fundintake/internal/domain/port/driven"
)

// DispatcherConfig holds the process-level mail defaults.
type DispatcherConfig struct {
	DefaultFrom string // sender used when from_email is unusable
	SiteName    string // sender name used when from_name is empty
	Debug       bool   // trace every SMTP conversation
}

// Dispatcher sends one message, routing it through the configured SMTP relay
// when one is enabled and through the default transport otherwise.
type Dispatcher struct {
	transport driven.MailTransport
	cfg       DispatcherConfig
	observer  Observer
	logger    *slog.Logger
}

// NewDispatcher creates a Dispatcher. observer may be nil.
func NewDispatcher(transport driven.MailTransport, cfg DispatcherConfig, observer Observer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		cfg:       cfg,
		observer:  observerOrNop(observer),
		logger:    logger,
	}
}

// Send delivers env using settings. The SMTP conversation is traced for
// admins and when debug mode is on.
func (d *Dispatcher) Send(ctx context.Context, env model.Envelope, settings model.Settings, caller Caller) model.SendResult {
	return d.send(ctx, env, settings, caller.Admin || d.cfg.Debug)
}

// SendTraced is Send with tracing always on.
func (d *Dispatcher) SendTraced(ctx context.Context, env model.Envelope, settings model.Settings) model.SendResult {
	return d.send(ctx, env, settings, true)
}

func (d *Dispatcher) send(ctx context.Context, env model.Envelope, settings model.Settings, trace bool) model.SendResult {
	env.To = strings.TrimSpace(env.To)
	if !IsValidEmail(env.To) {
		d.logger.Warn("mail not sent: invalid recipient", "to", env.To)
		return model.SendResult{Diagnostic: "Invalid recipient email address"}
	}

	env.FromAddress, env.FromName = d.sender(settings)

	var traceBuf *bytes.Buffer
	override := buildOverride(settings)
	transport := TransportDefault
	if override != nil {
		transport = TransportSMTP
		if trace {
			traceBuf = &bytes.Buffer{}
			override.Trace = traceBuf
		}
	}

	err := d.transport.Send(ctx, env, override)
	d.observer.MailSent(transport, err == nil)
	if err == nil {
		d.logger.Info("mail sent", "to", env.To, "transport", transport)
		return model.SendResult{Success: true}
	}

	debug := "none"
	if traceBuf != nil && traceBuf.Len() > 0 {
		debug = traceBuf.String()
	}
	diagnostic := "Mail transport failed. Errors: " + err.Error() + " SMTP Debug: " + debug
	d.logger.Error("mail send failed", "to", env.To, "transport", transport, "error", err, "smtp_debug", debug)

	return model.SendResult{Diagnostic: diagnostic}
}

func (d *Dispatcher) sender(settings model.Settings) (string, string) {
	address := settings[model.KeyFromEmail]
	if !IsValidEmail(address) {
		return d.cfg.DefaultFrom, d.cfg.SiteName
	}

	name := settings[model.KeyFromName]
	if name == "" {
		name = d.cfg.SiteName
	}
	return address, name
}

// buildOverride returns nil unless SMTP is enabled and a host is set.
func buildOverride(settings model.Settings) *model.SMTPOverride {
	host := strings.TrimSpace(settings[model.KeySMTPHost])
	if !settings.Enabled(model.KeyEnableSMTP) || host == "" {
		return nil
	}

	port, err := strconv.Atoi(settings[model.KeySMTPPort])
	if err != nil || port < 1 || port > 65535 {
		port, _ = strconv.Atoi(model.DefaultSMTPPort)
	}

	return &model.SMTPOverride{
		Host:               host,
		Port:               port,
		Username:           strings.TrimSpace(settings[model.KeySMTPUsername]),
		Password:           settings[model.KeySMTPPassword],
		Encryption:         settings[model.KeySMTPEncryption],
		InsecureSkipVerify: settings.Enabled(model.KeySMTPSkipVerify),
		Timeout:            model.SMTPTimeout,
	}
}
