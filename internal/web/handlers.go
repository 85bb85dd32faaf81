package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"fjacquet/camt-xlsx/internal/batch"
	"fjacquet/camt-xlsx/internal/export"
	"fjacquet/camt-xlsx/internal/logging"
	"fjacquet/camt-xlsx/internal/profile"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type documentView struct {
	Name     string   `json:"name"`
	Message  string   `json:"message,omitempty"`
	Records  int      `json:"records"`
	Error    string   `json:"error,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type pageData struct {
	Profiles   []*profile.ExtractionProfile
	Selected   string
	Flatten    bool
	Error      string
	Documents  []documentView
	Columns    []string
	Rows       [][]string
	TotalRows  int
	Truncated  bool
	DownloadID string
	FileName   string
}

// rejectedFile is an upload refused before processing.
type rejectedFile struct {
	name string
	err  error
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, s.newPage(r.URL.Query().Get("profile")))
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	inputs, rejected, err := s.readUploads(w, r)
	if err != nil {
		page := s.newPage("")
		page.Error = err.Error()
		s.render(w, http.StatusBadRequest, page)
		return
	}
	page := s.newPage(r.FormValue("profile"))
	page.Flatten = flattenRequested(r)

	result, err := s.process(r, page.Selected, page.Flatten, inputs)
	if err != nil {
		page.Error = err.Error()
		s.render(w, http.StatusBadRequest, page)
		return
	}

	page.Documents = documentViews(result, rejected)
	columns := result.Columns()
	records := result.Records()
	page.Columns = columns
	page.TotalRows = len(records)
	for i, rec := range records {
		if i == PreviewLimit {
			page.Truncated = true
			break
		}
		page.Rows = append(page.Rows, rec.Row(columns))
	}

	if len(records) > 0 {
		writer, err := s.svc.GetWriter(r.FormValue("format"))
		if err != nil {
			page.Error = err.Error()
			s.render(w, http.StatusBadRequest, page)
			return
		}
		var buf bytes.Buffer
		if err := writer.Write(&buf, columns, records); err != nil {
			s.log.WithError(err).Error("Failed to build download")
			page.Error = "Die Datei konnte nicht erzeugt werden."
			s.render(w, http.StatusInternalServerError, page)
			return
		}
		page.FileName = export.FileNameFor(s.opts.FileName, writer)
		page.DownloadID = s.downloads.put(page.FileName, writer.ContentType(), buf.Bytes())
	} else if page.Error == "" {
		page.Error = "Keine Daten gefunden."
	}

	s.render(w, http.StatusOK, page)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		http.NotFound(w, r)
		return
	}
	d, ok := s.downloads.get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", d.contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.name))
	w.Header().Set("Content-Length", strconv.Itoa(len(d.data)))
	_, _ = w.Write(d.data)
}

type profileJSON struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Message     string   `json:"message,omitempty"`
	EntryTag    string   `json:"entry_tag"`
	Transaction string   `json:"transaction_tag,omitempty"`
	Columns     []string `json:"columns"`
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	var out []profileJSON
	for _, p := range s.svc.GetRegistry().All() {
		out = append(out, profileJSON{
			Name:        p.Name,
			Description: p.Description,
			Message:     p.Message,
			EntryTag:    p.EntryTag,
			Transaction: p.TransactionTag,
			Columns:     p.Columns(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": out})
}

type extractResponse struct {
	Profile   string               `json:"profile"`
	Columns   []string             `json:"columns"`
	Records   []map[string]*string `json:"records"`
	Documents []documentView       `json:"documents"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	inputs, rejected, err := s.readUploads(w, r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.process(r, r.FormValue("profile"), flattenRequested(r), inputs)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := extractResponse{
		Profile:   result.Name(),
		Columns:   result.Columns(),
		Records:   []map[string]*string{},
		Documents: documentViews(result, rejected),
	}
	for _, rec := range result.Records() {
		row := make(map[string]*string, len(resp.Columns))
		for _, c := range resp.Columns {
			if text, ok := rec.Get(c); ok {
				row[c] = &text
			} else {
				row[c] = nil
			}
		}
		resp.Records = append(resp.Records, row)
	}
	writeJSON(w, http.StatusOK, resp)
}

// process runs the batch with the named profile, or flattens the documents
// when flatten is set.
func (s *Server) process(r *http.Request, profileName string, flatten bool, inputs []batch.Input) (*batch.BatchResult, error) {
	if flatten {
		return s.svc.NewFlattenProcessor().Run(r.Context(), inputs)
	}
	if profileName == "" {
		profileName = s.opts.DefaultProfile
	}
	proc, err := s.svc.NewProcessor(profileName)
	if err != nil {
		return nil, err
	}
	return proc.Run(r.Context(), inputs)
}

// flattenRequested reports whether the form asks for profile-free flattening.
func flattenRequested(r *http.Request) bool {
	flatten, _ := strconv.ParseBool(r.FormValue("flatten"))
	return flatten
}

// readUploads reads the "files" parts. Files that are not XML or exceed the
// size limit are returned as rejected; zero-length files are passed on so the
// batch layer reports them.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request) ([]batch.Input, []rejectedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		return nil, nil, errors.New("at least one file is required")
	}

	var inputs []batch.Input
	var rejected []rejectedFile
	for _, fh := range files {
		name := sanitizeFilename(fh.Filename)
		if !strings.EqualFold(filepath.Ext(name), ".xml") {
			rejected = append(rejected, rejectedFile{name: name, err: fmt.Errorf("unsupported file type: %s", filepath.Ext(name))})
			continue
		}
		data, err := readPart(fh, s.opts.MaxUploadBytes)
		if err != nil {
			rejected = append(rejected, rejectedFile{name: name, err: err})
			continue
		}
		inputs = append(inputs, batch.Input{Name: name, Data: data})
	}

	for _, rf := range rejected {
		s.log.WithError(rf.err).Warn("Upload rejected", logging.F(logging.FieldDocument, rf.name))
	}
	return inputs, rejected, nil
}

func readPart(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errors.New("failed to open file")
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.New("failed to read file")
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file exceeds max size (%d bytes)", limit)
	}
	return data, nil
}

func (s *Server) newPage(selected string) *pageData {
	if selected == "" {
		selected = s.opts.DefaultProfile
	}
	return &pageData{Profiles: s.svc.GetRegistry().All(), Selected: selected}
}

func (s *Server) render(w http.ResponseWriter, status int, page *pageData) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, "layout", page); err != nil {
		s.log.WithError(err).Error("Failed to render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func documentViews(result *batch.BatchResult, rejected []rejectedFile) []documentView {
	views := make([]documentView, 0, len(result.Documents)+len(rejected))
	for _, d := range result.Documents {
		v := documentView{Name: d.Name, Message: d.Message, Records: len(d.Records)}
		if d.Err != nil {
			v.Error = d.Err.Error()
			v.Records = 0
		}
		if d.Warning != nil {
			v.Warnings = append(v.Warnings, d.Warning.Error())
		}
		for _, fe := range d.FieldErrors {
			v.Warnings = append(v.Warnings, fe.Error())
		}
		views = append(views, v)
	}
	for _, rf := range rejected {
		views = append(views, documentView{Name: rf.name, Error: rf.err.Error()})
	}
	return views
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
