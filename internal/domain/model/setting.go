package model

import "time"

// SettingKind selects the normalization applied to a setting value on save.
type SettingKind string

const (
	SettingKindText     SettingKind = "text"
	SettingKindTextarea SettingKind = "textarea"
	SettingKindNumber   SettingKind = "number"
	SettingKindEmail    SettingKind = "email"
	SettingKindSelect   SettingKind = "select"
	SettingKindPassword SettingKind = "password"
	SettingKindCheckbox SettingKind = "checkbox"
)

// Recognized setting keys.
const (
	KeySMTPHost         = "smtp_host"
	KeySMTPPort         = "smtp_port"
	KeySMTPUsername     = "smtp_username"
	KeySMTPPassword     = "smtp_password"
	KeySMTPEncryption   = "smtp_encryption"
	KeySMTPSkipVerify   = "smtp_skip_verify"
	KeyFromEmail        = "from_email"
	KeyFromName         = "from_name"
	KeyToEmail          = "to_email"
	KeyEmailSubject     = "email_subject"
	KeySuccessMessage   = "success_message"
	KeyEnableSMTP       = "enable_smtp"
	KeyStoreSubmissions = "store_submissions"
)

// DefaultSMTPPort is substituted for any port outside 1..65535.
const DefaultSMTPPort = "587"

// Encryption tokens accepted for smtp_encryption. The empty token means no TLS.
const (
	EncryptionTLS  = "tls"
	EncryptionSSL  = "ssl"
	EncryptionNone = ""
)

// SettingDefinition describes one recognized setting key.
type SettingDefinition struct {
	Key       string
	Label     string
	Kind      SettingKind
	Section   string // "smtp", "email" or "general"
	Help      string
	Sensitive bool // encrypted at rest when a secret key is configured
}

// SettingDefinitions is the closed, ordered set of recognized settings.
var SettingDefinitions = []SettingDefinition{
	{Key: KeyEnableSMTP, Label: "Enable SMTP", Kind: SettingKindCheckbox, Section: "smtp",
		Help: "Use a custom SMTP server instead of the default mail transport"},
	{Key: KeySMTPHost, Label: "SMTP Host", Kind: SettingKindText, Section: "smtp",
		Help: "Examples: smtp.gmail.com, smtp.office365.com, smtp.sendgrid.net"},
	{Key: KeySMTPPort, Label: "SMTP Port", Kind: SettingKindNumber, Section: "smtp",
		Help: "Common ports: 587 (TLS), 465 (SSL), 25 (No encryption)"},
	{Key: KeySMTPUsername, Label: "SMTP Username", Kind: SettingKindText, Section: "smtp",
		Help: "Usually your email address for most SMTP services"},
	{Key: KeySMTPPassword, Label: "SMTP Password", Kind: SettingKindPassword, Section: "smtp",
		Help: "Your email password or app-specific password", Sensitive: true},
	{Key: KeySMTPEncryption, Label: "Encryption", Kind: SettingKindSelect, Section: "smtp",
		Help: "TLS is recommended for most modern SMTP servers"},
	{Key: KeySMTPSkipVerify, Label: "Skip Certificate Verification", Kind: SettingKindCheckbox, Section: "smtp",
		Help: "Accept self-signed or mismatched relay certificates. Leave off unless the relay requires it"},
	{Key: KeyFromEmail, Label: "From Email", Kind: SettingKindEmail, Section: "email",
		Help: "Email address that will appear as sender"},
	{Key: KeyFromName, Label: "From Name", Kind: SettingKindText, Section: "email",
		Help: "Name that will appear as sender"},
	{Key: KeyToEmail, Label: "Recipient Email", Kind: SettingKindEmail, Section: "email",
		Help: "Email address where form submissions will be sent"},
	{Key: KeyEmailSubject, Label: "Email Subject", Kind: SettingKindText, Section: "email",
		Help: "Use {name} to include applicant name in subject line"},
	{Key: KeySuccessMessage, Label: "Success Message", Kind: SettingKindTextarea, Section: "general",
		Help: "Message displayed to user after successful form submission (markdown allowed)"},
	{Key: KeyStoreSubmissions, Label: "Store Submissions", Kind: SettingKindCheckbox, Section: "general",
		Help: "Keep an archive copy of every delivered submission"},
}

// EncryptionOptions lists the allowed smtp_encryption tokens with display labels.
var EncryptionOptions = []EnumOption{
	{Value: EncryptionTLS, Label: "TLS"},
	{Value: EncryptionSSL, Label: "SSL"},
	{Value: EncryptionNone, Label: "None"},
}

// SettingDefinitionFor returns the definition for key, if recognized.
func SettingDefinitionFor(key string) (SettingDefinition, bool) {
	for _, def := range SettingDefinitions {
		if def.Key == key {
			return def, true
		}
	}
	return SettingDefinition{}, false
}

// IsSensitiveSetting reports whether key holds a secret.
func IsSensitiveSetting(key string) bool {
	def, ok := SettingDefinitionFor(key)
	return ok && def.Sensitive
}

// Settings maps every recognized key to its value.
type Settings map[string]string

// DefaultSettings returns the hard-coded defaults. adminEmail seeds both the
// sender and recipient addresses; siteName seeds the sender name.
func DefaultSettings(adminEmail, siteName string) Settings {
	return Settings{
		KeySMTPHost:         "",
		KeySMTPPort:         DefaultSMTPPort,
		KeySMTPUsername:     "",
		KeySMTPPassword:     "",
		KeySMTPEncryption:   EncryptionTLS,
		KeySMTPSkipVerify:   "0",
		KeyFromEmail:        adminEmail,
		KeyFromName:         siteName,
		KeyToEmail:          adminEmail,
		KeyEmailSubject:     "New Mutual Fund Application - {name}",
		KeySuccessMessage:   "Thank you! Your form has been submitted successfully. We will contact you soon.",
		KeyEnableSMTP:       "0",
		KeyStoreSubmissions: "1",
	}
}

// Enabled reports whether a checkbox setting is switched on.
func (s Settings) Enabled(key string) bool {
	return s[key] == "1"
}

// Clone returns a shallow copy.
func (s Settings) Clone() Settings {
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// SettingRow is one persisted row of the settings table.
type SettingRow struct {
	Key       string
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FieldError annotates a rejected setting value.
type FieldError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}
