package ui

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spektr-org/tally/engine"
	"github.com/spektr-org/tally/helpers"
	"github.com/spektr-org/tally/internal/errors"
)

// ============================================================================
// PAGES
// ============================================================================

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	state := ParseState(r.URL.Query())
	page := a.basePage(state)

	entry, ok := a.store.Get(state.DatasetID)
	if !ok {
		if state.DatasetID != "" {
			page.Banner = errors.NotFound("dataset " + state.DatasetID).Error()
			a.renderTemplate(w, http.StatusNotFound, page)
			return
		}
		// Nothing loaded yet: the upload form is the whole page.
		a.renderTemplate(w, http.StatusOK, page)
		return
	}

	ds := entry.Dataset
	rendered, err := Render(state, ds.View, ds.Mapping, a.engineOptions()...)
	if err != nil {
		status, appErr := classify(err)
		page.Banner = appErr.Error()
		a.renderTemplate(w, status, page)
		return
	}

	rendered.Datasets = page.Datasets
	rendered.Banner = page.Banner
	rendered.About = page.About
	info := entry.info(false)
	rendered.Dataset = &info
	rendered.State.DatasetID = entry.ID
	a.renderTemplate(w, http.StatusOK, rendered)
}

func (a *App) basePage(state State) *Page {
	return &Page{
		Title:    a.config.Schema.Name,
		State:    state,
		Tabs:     buildTabs(state),
		Datasets: a.store.List(),
		Banner:   a.loadError(),
		About:    a.about,
	}
}

func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxUploadBytes)

	fail := func(err error) {
		a.logger.Warn("upload rejected", zap.Error(err))
		page := a.basePage(State{View: ViewOverview})
		page.Banner = err.Error()
		a.renderTemplate(w, http.StatusBadRequest, page)
	}

	if err := r.ParseMultipartForm(a.config.MaxUploadBytes); err != nil {
		fail(errors.InvalidInput("upload could not be read: " + err.Error()))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		fail(errors.InvalidInput("no file was uploaded"))
		return
	}
	defer file.Close()

	format := helpers.DetectFormat(header.Filename, header.Header.Get("Content-Type"))
	view, report, err := helpers.Parse(file, format, header.Filename)
	if err != nil {
		fail(err)
		return
	}
	ds, err := helpers.Bind(view, report, a.config.Schema)
	if err != nil {
		fail(err)
		return
	}

	entry := a.store.Add(header.Filename, ds)
	a.store.SetDefault(entry.ID)
	a.setLoadError("")
	a.logger.Info("dataset uploaded",
		zap.String("id", entry.ID),
		zap.String("file", header.Filename),
		zap.Int("rows", report.Rows))

	http.Redirect(w, r, State{DatasetID: entry.ID}.URL(ViewOverview), http.StatusSeeOther)
}

func (a *App) renderTemplate(w http.ResponseWriter, status int, page *Page) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, "index.html", page); err != nil {
		a.logger.Error("template error", zap.Error(err))
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// ============================================================================
// API
// ============================================================================

type summaryResponse struct {
	Dataset DatasetInfo            `json:"dataset"`
	Request engine.Request         `json:"request"`
	Result  *engine.Result         `json:"result"`
	Charts  []*engine.ChartConfig  `json:"charts"`
	Cloud   []engine.WordCloudItem `json:"wordCloud"`
}

func (a *App) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"datasets": a.store.List(),
	})
}

type fetchRequest struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

func (a *App) handleFetchDataset(w http.ResponseWriter, r *http.Request) {
	var req fetchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.InvalidInput("request body must be JSON"))
		return
	}
	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		writeError(w, http.StatusBadRequest, errors.InvalidInput("url must be http(s)"))
		return
	}
	if req.Name == "" {
		req.Name = req.URL
	}

	entry, err := a.LoadSource(r.Context(), req.Name, req.URL)
	if err != nil {
		status := http.StatusBadGateway
		if !errors.HasCode(err, errors.CodeLoadFailed) {
			status, _ = classify(err)
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry.info(false))
}

func (a *App) handleSummary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, ok := a.store.Get(id)
	if !ok || id == "" {
		writeError(w, http.StatusNotFound, errors.NotFound("dataset "+id))
		return
	}

	state := ParseState(r.URL.Query())
	ds := entry.Dataset
	req := Request(state, ds.Mapping)
	result, err := engine.Execute(ds.View, req, a.engineOptions()...)
	if err != nil {
		status, appErr := classify(err)
		writeError(w, status, appErr)
		return
	}

	resp := summaryResponse{
		Dataset: entry.info(false),
		Request: req,
		Result:  result,
		Charts:  make([]*engine.ChartConfig, 0, len(result.Frequencies)),
		Cloud:   engine.BuildWordCloud(result.Keywords),
	}
	for _, fc := range result.Frequencies {
		if chart := engine.BuildBarChart(fc.Column, fc.Column, fc.Table); chart != nil {
			resp.Charts = append(resp.Charts, chart)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"datasets": a.store.Len(),
	})
}

// ============================================================================
// RESPONSES
// ============================================================================

// classify maps an error to an HTTP status and an AppError.
func classify(err error) (int, *errors.AppError) {
	var colErr *engine.InvalidColumnError
	if stderrors.As(err, &colErr) {
		return http.StatusUnprocessableEntity, &errors.AppError{
			Code:    errors.CodeInvalidColumn,
			Message: colErr.Error(),
			Cause:   err,
		}
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		return http.StatusInternalServerError, errors.InternalError(err.Error())
	}
	switch appErr.Code {
	case errors.CodeNotFound:
		return http.StatusNotFound, appErr
	case errors.CodeInvalidInput, errors.CodeLoadFailed:
		return http.StatusBadRequest, appErr
	case errors.CodeConfigInvalid, errors.CodeInvalidColumn:
		return http.StatusUnprocessableEntity, appErr
	}
	return http.StatusInternalServerError, appErr
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    errors.GetCode(err),
			"message": err.Error(),
		},
	})
}
