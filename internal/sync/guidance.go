package sync

import (
	"strings"

	"github.com/nhle/maildeck/internal/model"
)

// webmailGuidance maps well-known webmail domains to actionable guidance
// shown instead of the raw backend message when credentials are rejected.
// These providers all refuse plain account passwords over IMAP.
var webmailGuidance = map[string]string{
	"gmail.com": "Gmail rejected the password. Enable 2-Step Verification and " +
		"use an app password (myaccount.google.com/apppasswords) instead of " +
		"your account password.",
	"googlemail.com": "Gmail rejected the password. Enable 2-Step Verification " +
		"and use an app password (myaccount.google.com/apppasswords) instead " +
		"of your account password.",
	"yahoo.com": "Yahoo rejected the password. Generate an app password under " +
		"Account Security and use it here instead of your account password.",
	"outlook.com": "Outlook rejected the password. Create an app password " +
		"under Security > Advanced security options, or switch the account " +
		"to OAUTH2.",
	"hotmail.com": "Outlook rejected the password. Create an app password " +
		"under Security > Advanced security options, or switch the account " +
		"to OAUTH2.",
	"live.com": "Outlook rejected the password. Create an app password " +
		"under Security > Advanced security options, or switch the account " +
		"to OAUTH2.",
	"icloud.com": "iCloud rejected the password. Generate an app-specific " +
		"password at appleid.apple.com and use it here.",
	"me.com": "iCloud rejected the password. Generate an app-specific " +
		"password at appleid.apple.com and use it here.",
}

// credentialErrorMarkers are the recognizable fragments of a backend
// invalid-credentials failure.
var credentialErrorMarkers = []string{
	"invalid credentials",
	"authentication failed",
	"authenticationfailed",
	"login failed",
	"auth failed",
}

// translateTestError rewrites a recognizable credential rejection into
// provider-specific guidance when the account belongs to a well-known
// webmail domain. Any other failure is surfaced as-is. A nil account
// (already removed, or never resolved) leaves the message untouched.
func translateTestError(account *model.Account, message string) string {
	if account == nil || message == "" {
		return message
	}
	if !isCredentialError(message) {
		return message
	}

	if guidance, ok := webmailGuidance[webmailDomain(*account)]; ok {
		return guidance
	}
	return message
}

// isCredentialError reports whether the backend message looks like an
// invalid-credentials rejection.
func isCredentialError(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range credentialErrorMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// webmailDomain derives the provider domain for an account, preferring
// the IMAP host ("imap.gmail.com" -> "gmail.com") and falling back to
// the address domain.
func webmailDomain(account model.Account) string {
	host := strings.ToLower(account.IMAP.Host)
	for domain := range webmailGuidance {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return domain
		}
	}

	if at := strings.LastIndex(account.Email, "@"); at >= 0 {
		return strings.ToLower(account.Email[at+1:])
	}
	return ""
}
