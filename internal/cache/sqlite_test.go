package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/maildeck/internal/model"
	"github.com/nhle/maildeck/tests/testutil"
)

func TestSaveAndLoadAccounts(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	accounts := []model.Account{
		{
			ID:    "acc-1",
			Name:  "Work",
			Email: "work@example.com",
			IMAP:  model.IMAPConfig{Host: "mail.example.com", Port: 993, Secure: true},
			Auth:  model.AuthConfig{Method: model.AuthPlain, Username: "work@example.com"},
			Sync: model.SyncConfig{
				Enabled:          true,
				Frequency:        model.FrequencyHourly,
				PreserveFlags:    true,
				PreserveDates:    true,
				MaxEmailsPerSync: 500,
			},
			ConnectionStatus: model.StatusActive,
		},
		{
			ID:               "acc-2",
			Name:             "Personal",
			Email:            "me@gmail.com",
			IMAP:             model.IMAPConfig{Host: "imap.gmail.com", Port: 993, Secure: true},
			ConnectionStatus: model.StatusFailed,
		},
	}

	require.NoError(t, c.SaveAccounts(ctx, accounts))

	loaded, err := c.LoadAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// LoadAccounts orders by name; "Personal" sorts before "Work".
	assert.Equal(t, "acc-2", loaded[0].ID)
	assert.Equal(t, "acc-1", loaded[1].ID)

	work := loaded[1]
	assert.Equal(t, "mail.example.com", work.IMAP.Host)
	assert.True(t, work.IMAP.Secure)
	assert.Equal(t, model.AuthPlain, work.Auth.Method)
	assert.Equal(t, 500, work.Sync.MaxEmailsPerSync)
	assert.Equal(t, model.FrequencyHourly, work.Sync.Frequency)
	assert.Equal(t, model.StatusActive, work.ConnectionStatus)
}

func TestSaveAccountsReplacesPreviousContents(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.SaveAccounts(ctx, []model.Account{
		{ID: "acc-1", Name: "Old", Email: "old@example.com"},
	}))
	require.NoError(t, c.SaveAccounts(ctx, []model.Account{
		{ID: "acc-2", Name: "New", Email: "new@example.com"},
	}))

	loaded, err := c.LoadAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "acc-2", loaded[0].ID)
}

func TestSaveAndLoadEmailsNewestFirst(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	emails := []model.Email{
		{
			ID: "em-1", AccountID: "acc-1", Folder: "INBOX",
			From: "alice@example.com", Subject: "oldest",
			Date: base,
		},
		{
			ID: "em-2", AccountID: "acc-1", Folder: "INBOX",
			From: "bob@example.com", Subject: "newest",
			Date:  base.Add(48 * time.Hour),
			Flags: model.EmailFlags{Seen: true, Flagged: true},
		},
		{
			ID: "em-3", AccountID: "acc-2", Folder: "Sent",
			From: "me@example.com", Subject: "middle",
			Date:    base.Add(24 * time.Hour),
			Snippet: "see attachment",
		},
	}

	require.NoError(t, c.SaveEmails(ctx, emails))

	loaded, err := c.LoadEmails(ctx, 10)
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	assert.Equal(t, []string{"em-2", "em-3", "em-1"},
		[]string{loaded[0].ID, loaded[1].ID, loaded[2].ID})

	assert.True(t, loaded[0].Flags.Seen)
	assert.True(t, loaded[0].Flags.Flagged)
	assert.False(t, loaded[0].Flags.Deleted)
	assert.Equal(t, "see attachment", loaded[1].Snippet)
	assert.Equal(t, "alice@example.com", loaded[2].From)
}

func TestLoadEmailsHonorsLimit(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var emails []model.Email
	for i := 0; i < 5; i++ {
		emails = append(emails, model.Email{
			ID:        string(rune('a' + i)),
			AccountID: "acc-1",
			Folder:    "INBOX",
			Date:      base.Add(time.Duration(i) * time.Hour),
		})
	}
	require.NoError(t, c.SaveEmails(ctx, emails))

	loaded, err := c.LoadEmails(ctx, 2)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "e", loaded[0].ID)
	assert.Equal(t, "d", loaded[1].ID)
}

func TestLoadFromEmptyCache(t *testing.T) {
	c := testutil.NewTestCache(t)
	ctx := context.Background()

	accounts, err := c.LoadAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	emails, err := c.LoadEmails(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, emails)
}
