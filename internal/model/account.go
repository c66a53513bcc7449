package model

// ConnectionStatus is the backend's last known connectivity state
// for an account's mail server.
type ConnectionStatus string

const (
	StatusUnknown   ConnectionStatus = "unknown"
	StatusConnected ConnectionStatus = "connected"
	StatusFailed    ConnectionStatus = "failed"
	StatusActive    ConnectionStatus = "active"
)

// AuthMethod identifies how the backend authenticates to the IMAP server.
type AuthMethod string

const (
	AuthPlain  AuthMethod = "PLAIN"
	AuthLogin  AuthMethod = "LOGIN"
	AuthOAuth2 AuthMethod = "OAUTH2"
)

// SyncFrequency controls how often the backend synchronizes an account.
type SyncFrequency string

const (
	FrequencyManual SyncFrequency = "manual"
	FrequencyHourly SyncFrequency = "hourly"
	FrequencyDaily  SyncFrequency = "daily"
)

// IMAPConfig holds the connection settings for an account's mail server.
type IMAPConfig struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	Secure bool   `json:"secure"`
}

// AuthConfig holds the authentication settings for an account.
// Secret credentials are write-only request fields (see api.AccountPayload);
// the backend never echoes them back and they are never part of this record.
type AuthConfig struct {
	Method   AuthMethod `json:"method"`
	Username string     `json:"username"`
}

// SyncConfig holds the per-account synchronization settings.
type SyncConfig struct {
	Enabled          bool          `json:"enabled"`
	Frequency        SyncFrequency `json:"frequency"`
	PreserveFlags    bool          `json:"preserveFlags"`
	PreserveDates    bool          `json:"preserveDates"`
	BatchSize        int           `json:"batchSize"`
	MaxEmailsPerSync int           `json:"maxEmailsPerSync"`
}

// Account is a configured IMAP mailbox connection plus its sync and
// auth settings. ID is canonical: backend responses are normalized at
// the API boundary before an Account reaches any other package.
type Account struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	IMAP             IMAPConfig       `json:"imap"`
	Auth             AuthConfig       `json:"auth"`
	Sync             SyncConfig       `json:"sync"`
	ConnectionStatus ConnectionStatus `json:"connectionStatus"`
}

// TestResult is the recorded outcome of a connection test for one account.
type TestResult struct {
	Success bool
	Error   string
}

// TestReport is what the backend returns from a test-connection call.
// Account is present when the backend echoes the updated record.
type TestReport struct {
	Success bool
	Error   string
	Account *Account
}

// SyncStartRequest describes a sync job to launch on the backend.
type SyncStartRequest struct {
	AccountID        string
	SyncType         string
	Folders          []string
	PreserveFlags    bool
	PreserveDates    bool
	MaxEmailsPerSync int
}

// SyncStartResult is the backend's response to a start-sync call.
type SyncStartResult struct {
	Success bool
	Message string
}
