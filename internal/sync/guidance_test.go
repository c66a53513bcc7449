package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/maildeck/internal/model"
)

func TestIsCredentialError(t *testing.T) {
	cases := []struct {
		message string
		want    bool
	}{
		{"Invalid credentials (Failure)", true},
		{"AUTHENTICATIONFAILED", true},
		{"LOGIN failed.", true},
		{"connection refused", false},
		{"timeout waiting for greeting", false},
		{"", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, isCredentialError(tc.message), tc.message)
	}
}

func TestWebmailDomainPrefersIMAPHost(t *testing.T) {
	account := testAccount("acc-1", "someone@corp.example.com", "imap.gmail.com", model.StatusUnknown)
	assert.Equal(t, "gmail.com", webmailDomain(account))
}

func TestWebmailDomainFallsBackToAddress(t *testing.T) {
	account := testAccount("acc-1", "someone@yahoo.com", "custom.relay.internal", model.StatusUnknown)
	assert.Equal(t, "yahoo.com", webmailDomain(account))
}

func TestTranslateTestErrorRewritesKnownProviders(t *testing.T) {
	cases := []struct {
		host     string
		email    string
		contains string
	}{
		{"imap.gmail.com", "a@gmail.com", "app password"},
		{"imap.mail.yahoo.com", "a@yahoo.com", "app password"},
		{"outlook.office365.com", "a@outlook.com", "app password"},
		{"imap.mail.me.com", "a@icloud.com", "app-specific"},
	}

	for _, tc := range cases {
		account := testAccount("acc-1", tc.email, tc.host, model.StatusUnknown)
		got := translateTestError(&account, "invalid credentials")
		assert.Contains(t, got, tc.contains, tc.host)
	}
}

func TestTranslateTestErrorPassesThrough(t *testing.T) {
	gmail := testAccount("acc-1", "a@gmail.com", "imap.gmail.com", model.StatusUnknown)

	// Non-credential failures keep the backend message even on a known
	// provider.
	assert.Equal(t, "connection refused",
		translateTestError(&gmail, "connection refused"))

	// Credential failures on unknown providers keep the backend message.
	custom := testAccount("acc-2", "a@example.com", "mail.example.com", model.StatusUnknown)
	assert.Equal(t, "invalid credentials",
		translateTestError(&custom, "invalid credentials"))

	// A vanished account never rewrites.
	assert.Equal(t, "invalid credentials", translateTestError(nil, "invalid credentials"))
	assert.Equal(t, "", translateTestError(&gmail, ""))
}
