package driven

import (
	"context"

	"github.com/ericfisherdev/fundintake/internal/domain/model"
)

// MailTransport delivers one message. A nil override selects the default
// transport; a non-nil override routes this message, and only this message,
// through the described SMTP relay.
type MailTransport interface {
	Send(ctx context.Context, env model.Envelope, override *model.SMTPOverride) error
}
