package mock

import (
	"context"
	"sync"

	"github.com/kiranshivaraju/dicanalyzer/internal/dic"
	"github.com/kiranshivaraju/dicanalyzer/pkg/models"
)

// MockClient satisfies dic.Client for testing. Unset funcs return zero values.
// Every call is counted by method name; ListCalls keeps the params in order.
type MockClient struct {
	FetchTokenFunc      func(ctx context.Context) (string, error)
	ListAnalysesFunc    func(ctx context.Context, params dic.ListParams) (*models.ListResponse, error)
	GetAnalysisFunc     func(ctx context.Context, id string) (*models.Analysis, error)
	CreateAnalysisFunc  func(ctx context.Context, req models.CreateRequest) (*models.Analysis, error)
	CancelAnalysisFunc  func(ctx context.Context, id string) (*models.CancelResult, error)
	BulkDeleteFunc      func(ctx context.Context, ids []string) (*models.BulkDeleteResult, error)
	DownloadResultsFunc func(ctx context.Context, id string) (*dic.Blob, error)
	DownloadReportFunc  func(ctx context.Context, id string) (*dic.Blob, error)
	FetchImageFunc      func(ctx context.Context, id string, variant dic.ImageVariant) (*dic.Blob, error)
	FetchStatsFunc      func(ctx context.Context) (*models.Stats, error)
	FetchSummaryFunc    func(ctx context.Context) (*models.Summary, error)
	FetchRecentFunc     func(ctx context.Context) ([]models.Analysis, error)

	mu        sync.Mutex
	calls     map[string]int
	listCalls []dic.ListParams
}

func (m *MockClient) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

// Calls returns how many times the named method was invoked.
func (m *MockClient) Calls(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

// ListCalls returns the params of every ListAnalyses call in order.
func (m *MockClient) ListCalls() []dic.ListParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]dic.ListParams, len(m.listCalls))
	copy(out, m.listCalls)
	return out
}

func (m *MockClient) FetchToken(ctx context.Context) (string, error) {
	m.record("FetchToken")
	if m.FetchTokenFunc != nil {
		return m.FetchTokenFunc(ctx)
	}
	return "mock-token", nil
}

func (m *MockClient) ListAnalyses(ctx context.Context, params dic.ListParams) (*models.ListResponse, error) {
	m.record("ListAnalyses")
	m.mu.Lock()
	m.listCalls = append(m.listCalls, params)
	m.mu.Unlock()
	if m.ListAnalysesFunc != nil {
		return m.ListAnalysesFunc(ctx, params)
	}
	return &models.ListResponse{Results: []models.Analysis{}}, nil
}

func (m *MockClient) GetAnalysis(ctx context.Context, id string) (*models.Analysis, error) {
	m.record("GetAnalysis")
	if m.GetAnalysisFunc != nil {
		return m.GetAnalysisFunc(ctx, id)
	}
	return &models.Analysis{ID: id, Status: models.StatusPending}, nil
}

func (m *MockClient) CreateAnalysis(ctx context.Context, req models.CreateRequest) (*models.Analysis, error) {
	m.record("CreateAnalysis")
	if m.CreateAnalysisFunc != nil {
		return m.CreateAnalysisFunc(ctx, req)
	}
	return &models.Analysis{ID: "mock-created", Name: req.Name, Status: models.StatusPending}, nil
}

func (m *MockClient) CancelAnalysis(ctx context.Context, id string) (*models.CancelResult, error) {
	m.record("CancelAnalysis")
	if m.CancelAnalysisFunc != nil {
		return m.CancelAnalysisFunc(ctx, id)
	}
	return &models.CancelResult{Message: "cancelled"}, nil
}

func (m *MockClient) BulkDelete(ctx context.Context, ids []string) (*models.BulkDeleteResult, error) {
	m.record("BulkDelete")
	if m.BulkDeleteFunc != nil {
		return m.BulkDeleteFunc(ctx, ids)
	}
	return &models.BulkDeleteResult{DeletedCount: len(ids)}, nil
}

func (m *MockClient) DownloadResults(ctx context.Context, id string) (*dic.Blob, error) {
	m.record("DownloadResults")
	if m.DownloadResultsFunc != nil {
		return m.DownloadResultsFunc(ctx, id)
	}
	return &dic.Blob{Filename: "dic_results_" + id + ".zip"}, nil
}

func (m *MockClient) DownloadReport(ctx context.Context, id string) (*dic.Blob, error) {
	m.record("DownloadReport")
	if m.DownloadReportFunc != nil {
		return m.DownloadReportFunc(ctx, id)
	}
	return &dic.Blob{Filename: "dic_report_" + id + ".pdf"}, nil
}

func (m *MockClient) FetchImage(ctx context.Context, id string, variant dic.ImageVariant) (*dic.Blob, error) {
	m.record("FetchImage")
	if m.FetchImageFunc != nil {
		return m.FetchImageFunc(ctx, id, variant)
	}
	return &dic.Blob{Filename: string(variant) + "_" + id + ".png"}, nil
}

func (m *MockClient) FetchStats(ctx context.Context) (*models.Stats, error) {
	m.record("FetchStats")
	if m.FetchStatsFunc != nil {
		return m.FetchStatsFunc(ctx)
	}
	return &models.Stats{}, nil
}

func (m *MockClient) FetchSummary(ctx context.Context) (*models.Summary, error) {
	m.record("FetchSummary")
	if m.FetchSummaryFunc != nil {
		return m.FetchSummaryFunc(ctx)
	}
	return &models.Summary{}, nil
}

func (m *MockClient) FetchRecent(ctx context.Context) ([]models.Analysis, error) {
	m.record("FetchRecent")
	if m.FetchRecentFunc != nil {
		return m.FetchRecentFunc(ctx)
	}
	return []models.Analysis{}, nil
}

// NewFailingClient returns a MockClient whose every call fails with err.
func NewFailingClient(err error) *MockClient {
	return &MockClient{
		FetchTokenFunc: func(context.Context) (string, error) {
			return "", err
		},
		ListAnalysesFunc: func(context.Context, dic.ListParams) (*models.ListResponse, error) {
			return nil, err
		},
		GetAnalysisFunc: func(context.Context, string) (*models.Analysis, error) {
			return nil, err
		},
		CreateAnalysisFunc: func(context.Context, models.CreateRequest) (*models.Analysis, error) {
			return nil, err
		},
		CancelAnalysisFunc: func(context.Context, string) (*models.CancelResult, error) {
			return nil, err
		},
		BulkDeleteFunc: func(context.Context, []string) (*models.BulkDeleteResult, error) {
			return nil, err
		},
		DownloadResultsFunc: func(context.Context, string) (*dic.Blob, error) {
			return nil, err
		},
		DownloadReportFunc: func(context.Context, string) (*dic.Blob, error) {
			return nil, err
		},
		FetchImageFunc: func(context.Context, string, dic.ImageVariant) (*dic.Blob, error) {
			return nil, err
		},
		FetchStatsFunc: func(context.Context) (*models.Stats, error) {
			return nil, err
		},
		FetchSummaryFunc: func(context.Context) (*models.Summary, error) {
			return nil, err
		},
		FetchRecentFunc: func(context.Context) ([]models.Analysis, error) {
			return nil, err
		},
	}
}

// Compile-time check that MockClient implements dic.Client.
var _ dic.Client = (*MockClient)(nil)
