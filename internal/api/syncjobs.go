package api

import (
	"context"
	"fmt"

	"github.com/nhle/maildeck/internal/model"
)

// SyncService is the typed adapter for the backend's sync-job endpoints.
type SyncService struct {
	client *Client
}

// NewSyncService creates a sync adapter over the given gateway.
func NewSyncService(client *Client) *SyncService {
	return &SyncService{client: client}
}

// Start launches a sync job on the backend. A rejected start is reported
// through SyncStartResult, not the error return.
func (s *SyncService) Start(
	ctx context.Context,
	req model.SyncStartRequest,
) (*model.SyncStartResult, error) {
	body := map[string]interface{}{
		"accountId": req.AccountID,
		"syncType":  req.SyncType,
		"folders":   req.Folders,
		"options": map[string]interface{}{
			"preserveFlags":    req.PreserveFlags,
			"preserveDates":    req.PreserveDates,
			"maxEmailsPerSync": req.MaxEmailsPerSync,
		},
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := s.client.Post(ctx, "/sync/start", body, &resp); err != nil {
		return nil, fmt.Errorf("starting sync: %w", err)
	}

	return &model.SyncStartResult{
		Success: resp.Success,
		Message: resp.Message,
	}, nil
}

// Cleanup removes stale sync jobs left over from previous runs.
func (s *SyncService) Cleanup(ctx context.Context) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	if err := s.client.Delete(ctx, "/sync/cleanup", &resp); err != nil {
		return "", fmt.Errorf("cleaning up sync jobs: %w", err)
	}
	return resp.Message, nil
}
