package research

import (
	"context"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/brightarrow/imagescout/internal/tools"
)

type MockSearchTool struct {
	Response      string
	ResponseQueue []string
	Err           error
	Calls         int
	LastQuery     string
}

func (m *MockSearchTool) Name() string { return "mock_search" }

func (m *MockSearchTool) Search(ctx context.Context, instructions, query string) (string, error) {
	m.Calls++
	m.LastQuery = query
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

type MockScrapeTool struct {
	Response      string
	ResponseQueue []string
	ErrQueue      []error
	Err           error
	Calls         int
	URLLog        [][]string
}

func (m *MockScrapeTool) Name() string { return "mock_scrape" }

func (m *MockScrapeTool) Scrape(ctx context.Context, urls []string, instructions string) (string, error) {
	m.Calls++
	m.URLLog = append(m.URLLog, urls)
	if len(m.ErrQueue) > 0 {
		err := m.ErrQueue[0]
		m.ErrQueue = m.ErrQueue[1:]
		if err != nil {
			return "", err
		}
	} else if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

// MockFactory hands out the same tool instances every build, and counts
// builds so tests can observe pool invalidation.
type MockFactory struct {
	SearchTool   *MockSearchTool
	ScrapeTool   *MockScrapeTool
	SearchErr    error
	ScrapeErr    error
	SearchBuilds int
	ScrapeBuilds int
}

func (f *MockFactory) NewSearchTool(ctx context.Context, provider tools.Provider) (tools.SearchTool, error) {
	f.SearchBuilds++
	if f.SearchErr != nil {
		return nil, f.SearchErr
	}
	return f.SearchTool, nil
}

func (f *MockFactory) NewScrapeTool(ctx context.Context, kind tools.ScrapeKind) (tools.ScrapeTool, error) {
	f.ScrapeBuilds++
	if f.ScrapeErr != nil {
		return nil, f.ScrapeErr
	}
	return f.ScrapeTool, nil
}

type MockLLM struct {
	Response      string
	ResponseQueue []string
	Err           error
	Calls         int
}

func (m *MockLLM) Generate(ctx context.Context, system, user string) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

// MockStructuredLLM also satisfies the structured-output interface.
type MockStructuredLLM struct {
	MockLLM
	StructuredResponse string
	StructuredCalls    int
}

func (m *MockStructuredLLM) GenerateStructured(ctx context.Context, system, user, name string, schema *jsonschema.Definition) (string, error) {
	m.StructuredCalls++
	if m.Err != nil {
		return "", m.Err
	}
	return m.StructuredResponse, nil
}
