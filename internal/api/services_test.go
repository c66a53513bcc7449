package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/maildeck/internal/model"
)

func TestAccountListNormalizesLegacyIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/email-accounts", r.URL.Path)
		_, _ = w.Write([]byte(`{"accounts": [
			{"_id": "legacy-1", "name": "Old", "email": "old@example.com"},
			{"id": "acc-2", "name": "New", "email": "new@example.com"},
			{"id": "acc-3", "_id": "legacy-3", "name": "Both", "email": "both@example.com",
			 "connectionStatus": "active"}
		]}`))
	}))
	defer server.Close()

	service := NewAccountService(newTestClient(server.URL, &memoryTokens{access: "tok"}))

	accounts, err := service.List(context.Background())

	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "legacy-1", accounts[0].ID)
	assert.Equal(t, "acc-2", accounts[1].ID)
	// "id" wins when both identifiers are present.
	assert.Equal(t, "acc-3", accounts[2].ID)

	// An absent status decodes as unknown, never as the empty string.
	assert.Equal(t, model.StatusUnknown, accounts[0].ConnectionStatus)
	assert.Equal(t, model.StatusActive, accounts[2].ConnectionStatus)
}

func TestAccountCreateSendsPasswordOnce(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"account": {"id": "acc-1", "name": "Work", "email": "w@example.com"}}`))
	}))
	defer server.Close()

	service := NewAccountService(newTestClient(server.URL, &memoryTokens{access: "tok"}))

	account := model.Account{
		Name:  "Work",
		Email: "w@example.com",
		IMAP:  model.IMAPConfig{Host: "mail.example.com", Port: 993, Secure: true},
		Auth:  model.AuthConfig{Method: model.AuthPlain, Username: "w@example.com"},
	}
	created, err := service.Create(
		context.Background(), NewAccountPayload(account, "app-password"),
	)

	require.NoError(t, err)
	assert.Equal(t, "acc-1", created.ID)

	auth := body["auth"].(map[string]interface{})
	assert.Equal(t, "app-password", auth["password"])

	// The returned record carries no credential material.
	assert.NotContains(t, body, "connectionStatus")
}

func TestAccountUpdateOmitsEmptyPassword(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/email-accounts/acc-1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"account": {"id": "acc-1", "name": "Renamed", "email": "w@example.com"}}`))
	}))
	defer server.Close()

	service := NewAccountService(newTestClient(server.URL, &memoryTokens{access: "tok"}))

	account := model.Account{ID: "acc-1", Name: "Renamed", Email: "w@example.com"}
	updated, err := service.Update(
		context.Background(), "acc-1", NewAccountPayload(account, ""),
	)

	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)

	// An empty password means "unchanged" and must not reach the wire.
	auth := body["auth"].(map[string]interface{})
	assert.NotContains(t, auth, "password")
}

func TestTestConnectionDecodesFailureReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/email-accounts/acc-1/test-connection", r.URL.Path)
		_, _ = w.Write([]byte(`{"success": false, "error": "invalid credentials"}`))
	}))
	defer server.Close()

	service := NewAccountService(newTestClient(server.URL, &memoryTokens{access: "tok"}))

	report, err := service.TestConnection(context.Background(), "acc-1")

	require.NoError(t, err, "a failed check is a report, not an error")
	assert.False(t, report.Success)
	assert.Equal(t, "invalid credentials", report.Error)
	assert.Nil(t, report.Account)
}

func TestTestConnectionDecodesEchoedAccount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": true,
			"account": {"_id": "acc-1", "email": "w@example.com", "connectionStatus": "active"}}`))
	}))
	defer server.Close()

	service := NewAccountService(newTestClient(server.URL, &memoryTokens{access: "tok"}))

	report, err := service.TestConnection(context.Background(), "acc-1")

	require.NoError(t, err)
	assert.True(t, report.Success)
	require.NotNil(t, report.Account)
	assert.Equal(t, "acc-1", report.Account.ID)
	assert.Equal(t, model.StatusActive, report.Account.ConnectionStatus)
}

func TestEmailListSendsOnlyCleanedFilters(t *testing.T) {
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(`{"emails": [
			{"_id": "em-1", "accountId": "acc-1", "folder": "INBOX",
			 "from": "a@example.com", "subject": "hello",
			 "flags": {"seen": true}}
		], "pagination": {"page": 2, "limit": 50, "total": 120}}`))
	}))
	defer server.Close()

	service := NewEmailService(newTestClient(server.URL, &memoryTokens{access: "tok"}))

	isRead := true
	filters := model.SearchFilters{
		AccountID: "acc-1",
		Folder:    "INBOX",
		IsRead:    &isRead,
		// From and Subject deliberately empty.
	}
	page, err := service.List(
		context.Background(), filters, model.Pagination{Page: 2, Limit: 50},
	)

	require.NoError(t, err)

	assert.Equal(t, "acc-1", query["accountId"][0])
	assert.Equal(t, "INBOX", query["folder"][0])
	assert.Equal(t, "true", query["isRead"][0])
	assert.NotContains(t, query, "from")
	assert.NotContains(t, query, "subject")
	assert.Equal(t, "2", query["page"][0])
	assert.Equal(t, "50", query["limit"][0])

	require.Len(t, page.Emails, 1)
	assert.Equal(t, "em-1", page.Emails[0].ID)
	assert.True(t, page.Emails[0].Flags.Seen)
	assert.Equal(t, 120, page.Pagination.Total)
}

func TestSearchSendsCleanFilterMap(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"results": [{"id": "em-1", "subject": "invoice"}], "totalCount": 1}`))
	}))
	defer server.Close()

	service := NewEmailService(newTestClient(server.URL, &memoryTokens{access: "tok"}))

	page, err := service.Search(
		context.Background(),
		"invoice",
		model.SearchFilters{Folder: "INBOX"},
		"date", "desc",
		model.Pagination{Page: 1, Limit: 50},
	)

	require.NoError(t, err)
	assert.Equal(t, "invoice", body["query"])
	assert.Equal(t, "date", body["sortBy"])
	assert.Equal(t, "desc", body["sortOrder"])

	filters := body["filters"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"folder": "INBOX"}, filters)

	require.Len(t, page.Emails, 1)
	assert.Equal(t, 1, page.Pagination.Total)
}

func TestSyncStartNestsOptions(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sync/start", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"success": true, "message": "sync started"}`))
	}))
	defer server.Close()

	service := NewSyncService(newTestClient(server.URL, &memoryTokens{access: "tok"}))

	result, err := service.Start(context.Background(), model.SyncStartRequest{
		AccountID:        "acc-1",
		SyncType:         "full",
		Folders:          []string{"INBOX", "Sent", "Drafts", "Trash"},
		PreserveFlags:    true,
		PreserveDates:    true,
		MaxEmailsPerSync: 1000,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)

	assert.Equal(t, "acc-1", body["accountId"])
	assert.Equal(t, "full", body["syncType"])
	options := body["options"].(map[string]interface{})
	assert.Equal(t, true, options["preserveFlags"])
	assert.Equal(t, float64(1000), options["maxEmailsPerSync"])
}

func TestSyncCleanupReturnsMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/sync/cleanup", r.URL.Path)
		_, _ = w.Write([]byte(`{"message": "removed 3 stale jobs"}`))
	}))
	defer server.Close()

	service := NewSyncService(newTestClient(server.URL, &memoryTokens{access: "tok"}))

	message, err := service.Cleanup(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "removed 3 stale jobs", message)
}
