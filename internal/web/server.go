// Package web serves the upload form, the download endpoint and a small JSON
// API on top of the batch processor.
package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"fjacquet/camt-xlsx/internal/batch"
	"fjacquet/camt-xlsx/internal/export"
	"fjacquet/camt-xlsx/internal/logging"
	"fjacquet/camt-xlsx/internal/profile"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

// PreviewLimit caps the number of rows rendered on the result page.
const PreviewLimit = 200

// Service is what the server needs from the application container.
type Service interface {
	GetRegistry() *profile.Registry
	NewProcessor(profileName string) (*batch.Processor, error)
	NewFlattenProcessor() *batch.Processor
	GetWriter(format string) (export.Writer, error)
}

// Options configures the server.
type Options struct {
	MaxUploadBytes int64
	DownloadTTL    time.Duration
	FileName       string
	DefaultProfile string
}

// Server is the HTTP front end.
type Server struct {
	router    chi.Router
	svc       Service
	log       logging.Logger
	opts      Options
	downloads *downloadStore
	pages     *template.Template
}

// NewServer creates and configures the HTTP server.
func NewServer(svc Service, log logging.Logger, opts Options) *Server {
	if log == nil {
		log = logging.NewDiscardLogger()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if opts.DownloadTTL <= 0 {
		opts.DownloadTTL = 15 * time.Minute
	}
	if opts.FileName == "" {
		opts.FileName = export.DefaultFileName
	}

	s := &Server{
		svc:       svc,
		log:       log,
		opts:      opts,
		downloads: newDownloadStore(opts.DownloadTTL),
		pages:     template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Get("/", s.handleIndex)
	r.Post("/convert", s.handleConvert)
	r.Get("/download/{id}", s.handleDownload)

	r.Route("/api", func(r chi.Router) {
		r.Get("/profiles", s.handleProfiles)
		r.Post("/extract", s.handleExtract)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
