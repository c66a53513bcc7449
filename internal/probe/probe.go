// Package probe performs a direct IMAP reachability check against a mail
// server before an account is ever submitted to the backend. It catches
// typo'd hosts, wrong ports, and bad credentials locally, so those never
// reach the store as backend failures.
package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-imap/v2/imapclient"
)

// Params describes the server to probe. Username/Password are optional;
// when empty the probe stops after the connection is established.
type Params struct {
	Host     string
	Port     int
	Secure   bool
	Username string
	Password string
}

// Report is the outcome of a probe.
type Report struct {
	// Reachable means a connection to the server was established.
	Reachable bool

	// Authenticated means the login step succeeded. Only meaningful when
	// credentials were supplied.
	Authenticated bool

	// Folders lists the mailboxes visible after login.
	Folders []string

	// Elapsed is how long the whole probe took.
	Elapsed time.Duration
}

// Run dials the IMAP server, optionally logs in, and lists mailboxes.
// It returns an error only when the server is unreachable or rejects the
// supplied credentials; an empty mailbox list is not a failure.
func Run(ctx context.Context, params Params) (*Report, error) {
	start := time.Now()
	addr := fmt.Sprintf("%s:%d", params.Host, params.Port)

	var client *imapclient.Client
	var err error
	if params.Secure {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}
	defer func() { _ = client.Logout().Wait() }()

	report := &Report{Reachable: true}

	if params.Username == "" {
		report.Elapsed = time.Since(start)
		return report, nil
	}

	if err := client.Login(params.Username, params.Password).Wait(); err != nil {
		return nil, fmt.Errorf("authentication failed for %s: %w", params.Username, err)
	}
	report.Authenticated = true

	if deadline, ok := ctx.Deadline(); ok && time.Now().After(deadline) {
		report.Elapsed = time.Since(start)
		return report, ctx.Err()
	}

	mailboxes, err := client.List("", "%", nil).Collect()
	if err != nil {
		// Login worked; a LIST failure should not fail the probe.
		report.Elapsed = time.Since(start)
		return report, nil
	}

	for _, mbox := range mailboxes {
		report.Folders = append(report.Folders, mbox.Mailbox)
	}

	report.Elapsed = time.Since(start)
	return report, nil
}
