package sync

import (
	"context"
	"sync"

	"github.com/nhle/maildeck/internal/model"
)

// fakeAccountAPI is an in-memory stand-in for the backend account adapter.
type fakeAccountAPI struct {
	mu sync.Mutex

	accounts []model.Account
	listErr  error

	reports   map[string]*model.TestReport
	reportErr map[string]error

	listCalls int
	testCalls []string
}

func (f *fakeAccountAPI) List(context.Context) ([]model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Account, len(f.accounts))
	copy(out, f.accounts)
	return out, nil
}

func (f *fakeAccountAPI) TestConnection(_ context.Context, id string) (*model.TestReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.testCalls = append(f.testCalls, id)
	if err := f.reportErr[id]; err != nil {
		return nil, err
	}
	if report, ok := f.reports[id]; ok {
		return report, nil
	}
	return &model.TestReport{Success: true}, nil
}

func (f *fakeAccountAPI) testedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.testCalls))
	copy(out, f.testCalls)
	return out
}

// fakeSyncAPI records start/cleanup calls.
type fakeSyncAPI struct {
	mu sync.Mutex

	startResult *model.SyncStartResult
	startErr    error
	cleanupErr  error

	startRequests []model.SyncStartRequest
	cleanupCalls  int
}

func (f *fakeSyncAPI) Start(_ context.Context, req model.SyncStartRequest) (*model.SyncStartResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.startRequests = append(f.startRequests, req)
	if f.startErr != nil {
		return nil, f.startErr
	}
	if f.startResult != nil {
		return f.startResult, nil
	}
	return &model.SyncStartResult{Success: true}, nil
}

func (f *fakeSyncAPI) Cleanup(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cleanupCalls++
	if f.cleanupErr != nil {
		return "", f.cleanupErr
	}
	return "cleaned", nil
}

func (f *fakeSyncAPI) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.startRequests)
}

// fakeReloader counts post-start email reloads.
type fakeReloader struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeReloader) Reload(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

func (f *fakeReloader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testAccount(id, email, host string, status model.ConnectionStatus) model.Account {
	return model.Account{
		ID:               id,
		Name:             "Account " + id,
		Email:            email,
		IMAP:             model.IMAPConfig{Host: host, Port: 993, Secure: true},
		ConnectionStatus: status,
	}
}
