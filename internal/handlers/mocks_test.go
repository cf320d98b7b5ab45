package handlers

import (
	"context"

	"github.com/ternarybob/pretium/internal/interfaces"
	"github.com/ternarybob/pretium/internal/models"
)

// mockMarketService implements interfaces.MarketService for testing
type mockMarketService struct {
	getQuoteFunc    func(ctx context.Context, symbol string) (*models.Quote, error)
	getChartFunc    func(ctx context.Context, symbol string) (*models.ChartAnalysis, error)
	searchFunc      func(ctx context.Context, query string) ([]models.SearchResult, error)
	getNewsFunc     func(ctx context.Context, symbol string) ([]models.NewsItem, error)
	getAnalysisFunc func(ctx context.Context, symbol string) (*models.Analysis, error)
	warmFunc        func(ctx context.Context, symbols []string) error
	cacheSizesFunc  func() map[string]int
}

func (m *mockMarketService) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if m.getQuoteFunc != nil {
		return m.getQuoteFunc(ctx, symbol)
	}
	return nil, nil
}

func (m *mockMarketService) GetChart(ctx context.Context, symbol string) (*models.ChartAnalysis, error) {
	if m.getChartFunc != nil {
		return m.getChartFunc(ctx, symbol)
	}
	return nil, nil
}

func (m *mockMarketService) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, query)
	}
	return nil, nil
}

func (m *mockMarketService) GetNews(ctx context.Context, symbol string) ([]models.NewsItem, error) {
	if m.getNewsFunc != nil {
		return m.getNewsFunc(ctx, symbol)
	}
	return nil, nil
}

func (m *mockMarketService) GetAnalysis(ctx context.Context, symbol string) (*models.Analysis, error) {
	if m.getAnalysisFunc != nil {
		return m.getAnalysisFunc(ctx, symbol)
	}
	return nil, nil
}

func (m *mockMarketService) WarmSymbols(ctx context.Context, symbols []string) error {
	if m.warmFunc != nil {
		return m.warmFunc(ctx, symbols)
	}
	return nil
}

func (m *mockMarketService) CacheSizes() map[string]int {
	if m.cacheSizesFunc != nil {
		return m.cacheSizesFunc()
	}
	return map[string]int{}
}

// mockSchedulerService implements interfaces.SchedulerService for testing
type mockSchedulerService struct {
	triggerFunc     func(name string) error
	allStatusesFunc func() map[string]*interfaces.JobStatus
	running         bool
}

func (m *mockSchedulerService) RegisterJob(name, schedule, description string, handler func() error) error {
	return nil
}

func (m *mockSchedulerService) Start() error { return nil }

func (m *mockSchedulerService) Stop() error { return nil }

func (m *mockSchedulerService) IsRunning() bool { return m.running }

func (m *mockSchedulerService) TriggerJob(name string) error {
	if m.triggerFunc != nil {
		return m.triggerFunc(name)
	}
	return nil
}

func (m *mockSchedulerService) GetJobStatus(name string) (*interfaces.JobStatus, error) {
	return nil, nil
}

func (m *mockSchedulerService) GetAllJobStatuses() map[string]*interfaces.JobStatus {
	if m.allStatusesFunc != nil {
		return m.allStatusesFunc()
	}
	return map[string]*interfaces.JobStatus{}
}
