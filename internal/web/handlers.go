package web

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/porelog/internal/core"
	"github.com/JonMunkholm/porelog/internal/history"
	"github.com/JonMunkholm/porelog/internal/logging"
	"github.com/JonMunkholm/porelog/internal/porelog"
	"github.com/JonMunkholm/porelog/internal/web/templates"
)

// PageTitle is shown in the browser tab and page header.
const PageTitle = "Pore Log Viewer"

// multipartOverhead is allowed on top of the file size for form boundaries
// and headers.
const multipartOverhead = 1 << 20

// viewResponse is the JSON form of a session's view. The embedded View
// contributes the meta, tableHeader and tableData fields.
type viewResponse struct {
	FileName   string `json:"file_name,omitempty"`
	Generation uint64 `json:"generation"`
	SortBy     string `json:"sort,omitempty"`
	Desc       bool   `json:"desc,omitempty"`
	porelog.View
}

// handleIndex renders the viewer page with the session's current state.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := s.service.Session(sessionID(r))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	page := templates.PageData{
		Title:       PageTitle,
		MaxFileSize: s.cfg.Upload.MaxFileSize,
		Viewer:      viewerData(sess, "", false),
	}
	if sess.LastError != "" {
		page.Viewer.Alert = alertFor(errors.New(sess.LastError))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Page(page).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

// handleLoad reads the multipart field "file" into the session.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if isBodyTooLarge(err) {
			err = fmt.Errorf("%w: %w", core.ErrFileTooLarge, err)
		} else {
			err = fmt.Errorf("parse load form: %w", err)
		}
		s.respondLoadError(w, r, err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		s.respondLoadError(w, r, fmt.Errorf("read load form: %w", err))
		return
	}

	var res core.LoadResult
	if file == nil {
		// Runs the missing-file path through the service so the session is
		// reset and the attempt is recorded.
		res, err = s.service.Load(r.Context(), id, "", nil, 0)
	} else {
		defer file.Close()
		res, err = s.service.Load(r.Context(), id, header.Filename, file, header.Size)
	}
	if err != nil {
		s.respondLoadError(w, r, err)
		return
	}

	if isHTMX(r) {
		s.renderViewer(w, r, http.StatusOK, templates.ViewerData{FileName: res.FileName, View: res.View})
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{
		FileName:   res.FileName,
		Generation: res.Generation,
		View:       res.View,
	})
}

// respondLoadError reports a failed load. The page script gets the reset
// viewer with the alert on top so no stale table stays visible.
func (s *Server) respondLoadError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if !isHTMX(r) || errors.Is(err, core.ErrSuperseded) {
		respondError(w, r, err, status)
		return
	}

	msg := logError(r, err, status)
	data := templates.ViewerData{View: porelog.EmptyView()}
	if sess, serr := s.service.Session(sessionID(r)); serr == nil {
		data = viewerData(sess, "", false)
	}
	data.Alert = &templates.Alert{Message: msg.Message, Action: msg.Action, Code: msg.Code}
	s.renderViewer(w, r, status, data)
}

// handleView returns the session's view, optionally sorted with
// ?sort=<column>&dir=asc|desc.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	column := r.URL.Query().Get("sort")
	desc := strings.EqualFold(r.URL.Query().Get("dir"), "desc")

	sess, err := s.service.Session(sessionID(r))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	view, err := s.service.View(sess.ID, column, desc)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	if isHTMX(r) {
		data := viewerData(sess, column, desc)
		data.View = view
		s.renderViewer(w, r, http.StatusOK, data)
		return
	}
	writeJSON(w, http.StatusOK, viewResponse{
		FileName:   sess.FileName,
		Generation: sess.Generation,
		SortBy:     column,
		Desc:       desc && column != "",
		View:       view,
	})
}

// handleExport downloads the session's table as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	filename, content, err := s.service.ExportCSV(sessionID(r))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	if _, err := w.Write([]byte(content)); err != nil {
		logging.FromContext(r.Context()).Warn("write csv export", "error", err)
	}
}

// handleReset clears the session back to the empty view.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Reset(sessionID(r)); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	logging.FromContext(r.Context()).Info("view reset")

	if isHTMX(r) {
		s.renderViewer(w, r, http.StatusOK, templates.ViewerData{View: porelog.EmptyView()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// handleHistory returns recent load events, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 50)
	entries, err := s.service.RecentLoads(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// handleHealth reports liveness and load limiter state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"loads":    s.service.LoadStatus(),
		"sessions": s.service.SessionCount(),
	})
}

func (s *Server) renderViewer(w http.ResponseWriter, r *http.Request, status int, data templates.ViewerData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Viewer(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render viewer", "error", err)
	}
}

func viewerData(sess core.Session, column string, desc bool) templates.ViewerData {
	return templates.ViewerData{
		FileName: sess.FileName,
		View:     sess.View,
		SortBy:   column,
		Desc:     desc,
	}
}

func alertFor(err error) *templates.Alert {
	msg := core.MapError(err)
	return &templates.Alert{Message: msg.Message, Action: msg.Action, Code: msg.Code}
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

func isBodyTooLarge(err error) bool {
	var maxBytes *http.MaxBytesError
	return errors.As(err, &maxBytes) || strings.Contains(err.Error(), "request body too large")
}
