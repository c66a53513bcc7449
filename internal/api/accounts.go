package api

import (
	"context"
	"fmt"

	"github.com/nhle/maildeck/internal/model"
)

// AccountService is the typed adapter for the backend's account endpoints.
type AccountService struct {
	client *Client
}

// NewAccountService creates an account adapter over the given gateway.
func NewAccountService(client *Client) *AccountService {
	return &AccountService{client: client}
}

// List fetches all configured accounts.
func (s *AccountService) List(ctx context.Context) ([]model.Account, error) {
	var resp struct {
		Accounts []accountWire `json:"accounts"`
	}
	if err := s.client.Get(ctx, "/email-accounts", nil, &resp); err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	accounts := make([]model.Account, 0, len(resp.Accounts))
	for _, w := range resp.Accounts {
		accounts = append(accounts, w.toModel())
	}
	return accounts, nil
}

// Create registers a new account on the backend and returns the stored
// record.
func (s *AccountService) Create(
	ctx context.Context,
	payload AccountPayload,
) (*model.Account, error) {
	var resp struct {
		Account accountWire `json:"account"`
	}
	if err := s.client.Post(ctx, "/email-accounts", payload, &resp); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	account := resp.Account.toModel()
	return &account, nil
}

// Update replaces the writable fields of an existing account.
func (s *AccountService) Update(
	ctx context.Context,
	id string,
	payload AccountPayload,
) (*model.Account, error) {
	var resp struct {
		Account accountWire `json:"account"`
	}
	err := s.client.Put(ctx, "/email-accounts/"+id, payload, &resp)
	if err != nil {
		return nil, fmt.Errorf("updating account %s: %w", id, err)
	}

	account := resp.Account.toModel()
	return &account, nil
}

// Delete removes an account from the backend.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	if err := s.client.Delete(ctx, "/email-accounts/"+id, nil); err != nil {
		return fmt.Errorf("deleting account %s: %w", id, err)
	}
	return nil
}

// TestConnection asks the backend to verify it can authenticate to the
// account's mail server. A failed check is a report, not an error: the
// error return is reserved for transport/auth failures of the call itself.
func (s *AccountService) TestConnection(
	ctx context.Context,
	id string,
) (*model.TestReport, error) {
	var resp struct {
		Success bool         `json:"success"`
		Account *accountWire `json:"account"`
		Error   string       `json:"error"`
	}
	err := s.client.Post(ctx, "/email-accounts/"+id+"/test-connection", nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("testing connection for account %s: %w", id, err)
	}

	report := &model.TestReport{
		Success: resp.Success,
		Error:   resp.Error,
	}
	if resp.Account != nil {
		account := resp.Account.toModel()
		report.Account = &account
	}
	return report, nil
}
