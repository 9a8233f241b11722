package models

import "time"

// Settings holds a user's integration configuration. AirtableAPIKey and
// OpenAIAPIKey are stored as cipher envelopes (see internal/cryptox), never
// as plaintext; an empty value means the credential was never configured.
type Settings struct {
	UserID         string
	WebhookURL     string
	AirtableAPIKey string
	AirtableBaseID string
	AirtableTable  string
	OpenAIAPIKey   string
	UpdatedAt      time.Time
}

// SettingsView is the display form of Settings: credentials are masked so
// the UI can show whether a key is set without ever receiving it back.
type SettingsView struct {
	WebhookURL     string
	AirtableAPIKey string
	AirtableBaseID string
	AirtableTable  string
	OpenAIAPIKey   string
}

// Credentials is the decrypted, use-ready form of Settings. Empty fields
// mean "no usable secret" — whether never configured or undecryptable.
type Credentials struct {
	WebhookURL     string
	AirtableAPIKey string
	AirtableBaseID string
	AirtableTable  string
	OpenAIAPIKey   string
}
