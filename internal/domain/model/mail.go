package model

import (
	"io"
	"time"
)

// SMTPTimeout bounds every relay conversation.
const SMTPTimeout = 30 * time.Second

// Envelope is one outgoing HTML message.
type Envelope struct {
	To          string
	Subject     string
	HTMLBody    string
	FromAddress string
	FromName    string
	ReplyTo     string
}

// SMTPOverride routes exactly one message through an external relay. A nil
// override means the default transport.
type SMTPOverride struct {
	Host               string
	Port               int
	Username           string
	Password           string
	Encryption         string // EncryptionTLS, EncryptionSSL or EncryptionNone
	InsecureSkipVerify bool
	Timeout            time.Duration
	Trace              io.Writer // protocol trace sink; nil disables tracing
}

// SendResult reports one delivery attempt. Diagnostic is set only on failure.
type SendResult struct {
	Success    bool
	Diagnostic string
}
