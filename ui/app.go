package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/spektr-org/tally/engine"
	"github.com/spektr-org/tally/helpers"
	"github.com/spektr-org/tally/schema"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// Config holds UI application configuration
type Config struct {
	Schema         *schema.Config // nil selects schema.Default()
	CORSOrigins    []string
	MaxUploadBytes int64
	KeywordLimit   int
	TopN           int
	About          string // markdown; empty selects DefaultAbout
	Logger         *zap.Logger
	Client         *http.Client // used to fetch datasets by URL
}

// App represents the dashboard application
type App struct {
	router    *chi.Mux
	store     *Store
	templates *template.Template
	config    Config
	logger    *zap.Logger
	about     template.HTML

	mu      sync.RWMutex
	loadErr string
}

// NewApp creates a new dashboard over store.
func NewApp(config Config, store *Store) (*App, error) {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Schema == nil {
		config.Schema = schema.Default()
	}
	if config.MaxUploadBytes <= 0 {
		config.MaxUploadBytes = 32 << 20
	}
	if config.Client == nil {
		config.Client = http.DefaultClient
	}
	if config.About == "" {
		config.About = DefaultAbout
	}
	if store == nil {
		store = NewStore()
	}

	funcMap := template.FuncMap{
		"add":      func(a, b int) int { return a + b },
		"pieStyle": pieStyle,
		"barWidth": barWidth,
		"fmtInt":   engine.FormatInt,
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	app := &App{
		router:    chi.NewRouter(),
		store:     store,
		templates: templates,
		config:    config,
		logger:    config.Logger.Named("ui"),
		about:     RenderMarkdown(config.About),
	}

	app.setupMiddleware()
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  zap.NewStdLog(a.logger),
		NoColor: true,
	}))
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	static, _ := fs.Sub(embeddedFiles, "static")
	a.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Post("/upload", a.handleUpload)
	a.router.Get("/healthz", a.handleHealth)

	a.router.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: a.config.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/datasets", a.handleListDatasets)
		r.Post("/datasets", a.handleFetchDataset)
		r.Get("/datasets/{id}/summary", a.handleSummary)
	})
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler { return a.router }

// Store returns the dataset store.
func (a *App) Store() *Store { return a.store }

// LoadSource loads a dataset from a path or URL and adds it to the store.
func (a *App) LoadSource(ctx context.Context, name, source string) (*Entry, error) {
	view, report, err := helpers.Load(ctx, a.config.Client, source)
	if err == nil {
		var ds *helpers.Dataset
		if ds, err = helpers.Bind(view, report, a.config.Schema); err == nil {
			entry := a.store.Add(name, ds)
			a.logger.Info("dataset loaded",
				zap.String("id", entry.ID),
				zap.String("source", source),
				zap.Int("rows", report.Rows),
				zap.Int("skipped_rows", report.SkippedRows))
			return entry, nil
		}
	}

	a.logger.Error("dataset load failed", zap.String("source", source), zap.Error(err))
	return nil, err
}

// LoadStartup is LoadSource for the dataset configured at startup. A
// failure is shown as a banner until a dataset loads; the dashboard stays up.
func (a *App) LoadStartup(ctx context.Context, name, source string) (*Entry, error) {
	entry, err := a.LoadSource(ctx, name, source)
	if err != nil {
		a.setLoadError(err.Error())
		return nil, err
	}
	a.setLoadError("")
	return entry, nil
}

func (a *App) setLoadError(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loadErr = msg
}

func (a *App) loadError() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.loadErr
}

func (a *App) engineOptions() []engine.Option {
	opts := []engine.Option{engine.WithLogger(a.logger.Named("engine"))}
	if a.config.KeywordLimit > 0 {
		opts = append(opts, engine.WithKeywordLimit(a.config.KeywordLimit))
	}
	if a.config.TopN > 0 {
		opts = append(opts, engine.WithTopN(a.config.TopN))
	}
	return opts
}

// pieStyle draws a pie chart's points as a CSS conic gradient.
func pieStyle(chart *engine.ChartConfig) template.CSS {
	if chart == nil || len(chart.Series) == 0 {
		return ""
	}
	stops := ""
	start := 0.0
	for i, p := range chart.Series[0].Data {
		end := start + p.Percent
		if i > 0 {
			stops += ", "
		}
		stops += fmt.Sprintf("%s %.1f%% %.1f%%", p.Color, start, end)
		start = end
	}
	return template.CSS("background: conic-gradient(" + stops + ")")
}

// barWidth scales v against the largest point of the chart's first series.
func barWidth(chart *engine.ChartConfig, v float64) template.CSS {
	peak := 0.0
	if chart != nil && len(chart.Series) > 0 {
		for _, p := range chart.Series[0].Data {
			if p.Value > peak {
				peak = p.Value
			}
		}
	}
	if peak == 0 {
		return "width: 0%"
	}
	return template.CSS(fmt.Sprintf("width: %.1f%%", v/peak*100))
}
