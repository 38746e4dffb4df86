package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semsearch/internal/core/domain"
)

// mockQueryService implements driving.QueryService.
type mockQueryService struct {
	hits []domain.QueryHit
	err  error
	gotK int
}

func (m *mockQueryService) Query(_ context.Context, _ string, k int) ([]domain.QueryHit, error) {
	m.gotK = k
	return m.hits, m.err
}

// mockDocumentService implements driving.DocumentService.
type mockDocumentService struct {
	docs map[string]*domain.Document
	err  error
}

func (m *mockDocumentService) Get(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *mockDocumentService) Count(_ context.Context) (int, error) {
	return len(m.docs), m.err
}

// mockIngestionService implements driving.IngestionService.
type mockIngestionService struct {
	report    domain.BatchReport
	result    domain.IngestResult
	err       error
	gotPrefix string
	gotText   string
	gotSource string
	gotEvents []domain.ObjectEvent
}

func (m *mockIngestionService) Ingest(_ context.Context, text, source string) (domain.IngestResult, error) {
	m.gotText = text
	m.gotSource = source
	return m.result, m.err
}

func (m *mockIngestionService) IngestBatch(_ context.Context, _ []domain.SourceDocument) domain.BatchReport {
	return m.report
}

func (m *mockIngestionService) IngestPrefix(_ context.Context, prefix string) (domain.BatchReport, error) {
	m.gotPrefix = prefix
	return m.report, m.err
}

func (m *mockIngestionService) IngestEvents(_ context.Context, events []domain.ObjectEvent) domain.BatchReport {
	m.gotEvents = append(m.gotEvents, events...)
	return m.report
}

func (m *mockIngestionService) Upload(_ context.Context, text string) (string, error) {
	m.gotText = text
	if m.err != nil {
		return "", m.err
	}
	return "docs/" + text + ".txt", nil
}

// mockMaintenanceService implements driving.IndexMaintenanceService.
type mockMaintenanceService struct {
	reindex  domain.ReindexReport
	err      error
	exported string
	loaded   string
}

func (m *mockMaintenanceService) Reindex(_ context.Context) (domain.ReindexReport, error) {
	return m.reindex, m.err
}

func (m *mockMaintenanceService) ExportBulk(_ context.Context, w io.Writer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	_, err := io.WriteString(w, m.exported)
	return strings.Count(m.exported, "\n") / 2, err
}

func (m *mockMaintenanceService) LoadBulk(_ context.Context, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.loaded = string(data)
	return strings.Count(m.loaded, "\n") / 2, m.err
}

// mockSettingsService implements driving.SettingsService.
type mockSettingsService struct {
	settings     domain.AppSettings
	validateErr  error
	embedErr     error
	embedChecked bool
	setErr       error
	set          map[string]string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = make(map[string]string)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string                  { return nil }
func (m *mockSettingsService) Validate() error                 { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig(context.Context) error {
	m.embedChecked = true
	return m.embedErr
}

// testServices are the mocks installed by setupTestServices.
type testServices struct {
	query       *mockQueryService
	documents   *mockDocumentService
	ingestion   *mockIngestionService
	maintenance *mockMaintenanceService
	settings    *mockSettingsService
}

// setupTestServices installs fresh mocks and returns a cleanup that
// clears them and resets command flags.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		query:       &mockQueryService{},
		documents:   &mockDocumentService{docs: map[string]*domain.Document{}},
		ingestion:   &mockIngestionService{},
		maintenance: &mockMaintenanceService{},
		settings:    &mockSettingsService{settings: domain.DefaultAppSettings()},
	}
	SetServices(Services{
		Ingestion:   ts.ingestion,
		Query:       ts.query,
		Documents:   ts.documents,
		Maintenance: ts.maintenance,
		Settings:    ts.settings,
	})
	return ts, func() {
		SetServices(Services{})
		queryK, queryJSON, ingestJSON, getJSON = 0, false, false, false
		ingestSource = "cli"
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{
		"ingest", "upload", "query", "get", "reindex", "bulk",
		"watch", "serve", "mcp", "tui", "settings", "version",
	} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestCommands_FailWithoutServices(t *testing.T) {
	SetServices(Services{})

	tests := [][]string{
		{"query", "x"},
		{"get", "1"},
		{"upload", "x"},
		{"ingest", "prefix"},
		{"ingest", "text", "x"},
		{"ingest", "object", "a.txt"},
		{"reindex"},
		{"bulk", "export", "out.json"},
		{"watch"},
		{"serve"},
		{"settings", "show"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, err := execute(t, "", args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "not configured")
		})
	}
}

func TestSetServices_ServerAddr(t *testing.T) {
	original := defaultServerAddr
	defer func() { defaultServerAddr = original }()

	SetServices(Services{ServerAddr: ":9999"})
	assert.Equal(t, ":9999", defaultServerAddr)

	SetServices(Services{})
	assert.Equal(t, ":9999", defaultServerAddr)
}
