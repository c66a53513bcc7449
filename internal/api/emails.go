package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nhle/maildeck/internal/model"
)

// EmailService is the typed adapter for the backend's email endpoints.
type EmailService struct {
	client *Client
}

// NewEmailService creates an email adapter over the given gateway.
func NewEmailService(client *Client) *EmailService {
	return &EmailService{client: client}
}

// List fetches one page of emails matching the given filters. Filters are
// cleaned before transmission: absent and empty values never reach the
// backend.
func (s *EmailService) List(
	ctx context.Context,
	filters model.SearchFilters,
	page model.Pagination,
) (*EmailPage, error) {
	query := url.Values{}
	for key, value := range filters.Clean() {
		query.Set(key, value)
	}
	query.Set("page", strconv.Itoa(page.Page))
	query.Set("limit", strconv.Itoa(page.Limit))

	var resp struct {
		Emails     []emailWire `json:"emails"`
		Pagination struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
			Total int `json:"total"`
		} `json:"pagination"`
	}
	if err := s.client.Get(ctx, "/emails", query, &resp); err != nil {
		return nil, fmt.Errorf("listing emails: %w", err)
	}

	emails := make([]model.Email, 0, len(resp.Emails))
	for _, w := range resp.Emails {
		emails = append(emails, w.toModel())
	}

	return &EmailPage{
		Emails: emails,
		Pagination: model.Pagination{
			Page:  resp.Pagination.Page,
			Limit: resp.Pagination.Limit,
			Total: resp.Pagination.Total,
		},
	}, nil
}

// Search runs a full-text query over the synchronized corpus. The filter
// map sent to the backend carries only keys with values.
func (s *EmailService) Search(
	ctx context.Context,
	queryText string,
	filters model.SearchFilters,
	sortBy string,
	sortOrder string,
	page model.Pagination,
) (*EmailPage, error) {
	body := map[string]interface{}{
		"query":     queryText,
		"filters":   filters.Clean(),
		"sortBy":    sortBy,
		"sortOrder": sortOrder,
		"page":      page.Page,
		"limit":     page.Limit,
	}

	var resp struct {
		Results    []emailWire `json:"results"`
		TotalCount int         `json:"totalCount"`
	}
	if err := s.client.Post(ctx, "/search/search", body, &resp); err != nil {
		return nil, fmt.Errorf("searching emails: %w", err)
	}

	emails := make([]model.Email, 0, len(resp.Results))
	for _, w := range resp.Results {
		emails = append(emails, w.toModel())
	}

	return &EmailPage{
		Emails: emails,
		Pagination: model.Pagination{
			Page:  page.Page,
			Limit: page.Limit,
			Total: resp.TotalCount,
		},
	}, nil
}
