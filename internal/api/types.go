package api

import (
	"time"

	"github.com/nhle/maildeck/internal/model"
)

// accountWire mirrors the backend's account shape. Older backend versions
// emit "_id" instead of "id", and some emit both; canonicalID resolves
// that once, here, so nothing downstream ever branches on which field was
// present.
type accountWire struct {
	ID       string `json:"id"`
	LegacyID string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`

	IMAP struct {
		Host   string `json:"host"`
		Port   int    `json:"port"`
		Secure bool   `json:"secure"`
	} `json:"imap"`

	Auth struct {
		Method   string `json:"method"`
		Username string `json:"username"`
	} `json:"auth"`

	Sync struct {
		Enabled          bool   `json:"enabled"`
		Frequency        string `json:"frequency"`
		PreserveFlags    bool   `json:"preserveFlags"`
		PreserveDates    bool   `json:"preserveDates"`
		BatchSize        int    `json:"batchSize"`
		MaxEmailsPerSync int    `json:"maxEmailsPerSync"`
	} `json:"sync"`

	ConnectionStatus string `json:"connectionStatus"`
}

// canonicalID picks the one identifier an account is known by.
func canonicalID(id, legacyID string) string {
	if id != "" {
		return id
	}
	return legacyID
}

// toModel converts a wire account into the canonical domain record.
func (w accountWire) toModel() model.Account {
	status := model.ConnectionStatus(w.ConnectionStatus)
	if status == "" {
		status = model.StatusUnknown
	}

	return model.Account{
		ID:    canonicalID(w.ID, w.LegacyID),
		Name:  w.Name,
		Email: w.Email,
		IMAP: model.IMAPConfig{
			Host:   w.IMAP.Host,
			Port:   w.IMAP.Port,
			Secure: w.IMAP.Secure,
		},
		Auth: model.AuthConfig{
			Method:   model.AuthMethod(w.Auth.Method),
			Username: w.Auth.Username,
		},
		Sync: model.SyncConfig{
			Enabled:          w.Sync.Enabled,
			Frequency:        model.SyncFrequency(w.Sync.Frequency),
			PreserveFlags:    w.Sync.PreserveFlags,
			PreserveDates:    w.Sync.PreserveDates,
			BatchSize:        w.Sync.BatchSize,
			MaxEmailsPerSync: w.Sync.MaxEmailsPerSync,
		},
		ConnectionStatus: status,
	}
}

// emailWire mirrors the backend's email shape, with the same id aliasing
// as accounts.
type emailWire struct {
	ID        string    `json:"id"`
	LegacyID  string    `json:"_id"`
	AccountID string    `json:"accountId"`
	Folder    string    `json:"folder"`
	From      string    `json:"from"`
	Subject   string    `json:"subject"`
	Date      time.Time `json:"date"`

	Flags struct {
		Seen     bool `json:"seen"`
		Flagged  bool `json:"flagged"`
		Answered bool `json:"answered"`
		Deleted  bool `json:"deleted"`
		Draft    bool `json:"draft"`
	} `json:"flags"`

	Snippet string `json:"snippet"`
}

// toModel converts a wire email into the canonical domain record.
func (w emailWire) toModel() model.Email {
	return model.Email{
		ID:        canonicalID(w.ID, w.LegacyID),
		AccountID: w.AccountID,
		Folder:    w.Folder,
		From:      w.From,
		Subject:   w.Subject,
		Date:      w.Date,
		Flags: model.EmailFlags{
			Seen:     w.Flags.Seen,
			Flagged:  w.Flags.Flagged,
			Answered: w.Flags.Answered,
			Deleted:  w.Flags.Deleted,
			Draft:    w.Flags.Draft,
		},
		Snippet: w.Snippet,
	}
}

// AccountPayload carries the writable account fields for create and
// update calls. Password is the only place a secret credential appears;
// it is sent to the backend and never stored or echoed locally.
type AccountPayload struct {
	Name  string           `json:"name"`
	Email string           `json:"email"`
	IMAP  model.IMAPConfig `json:"imap"`

	Auth struct {
		Method   model.AuthMethod `json:"method"`
		Username string           `json:"username"`
		Password string           `json:"password,omitempty"`
	} `json:"auth"`

	Sync model.SyncConfig `json:"sync"`
}

// NewAccountPayload builds a payload from an account record plus the
// secret credential entered in the form.
func NewAccountPayload(account model.Account, password string) AccountPayload {
	p := AccountPayload{
		Name:  account.Name,
		Email: account.Email,
		IMAP:  account.IMAP,
		Sync:  account.Sync,
	}
	p.Auth.Method = account.Auth.Method
	p.Auth.Username = account.Auth.Username
	p.Auth.Password = password
	return p
}

// EmailPage is one page of emails plus the server-reported pagination.
type EmailPage struct {
	Emails     []model.Email
	Pagination model.Pagination
}
