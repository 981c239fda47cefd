package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/orgnav/modules/orgnav/domain/entities"
	"github.com/iota-uz/orgnav/modules/orgnav/presentation/mappers"
	"github.com/iota-uz/orgnav/modules/orgnav/presentation/viewmodels"
	"github.com/iota-uz/orgnav/modules/orgnav/services"
	"github.com/iota-uz/orgnav/pkg/httpapi"
)

const DefaultAPIPrefix = "/orgnav/api"

type NavAPIOptions struct {
	APIPrefix       string
	RequestIDHeader string
}

// NavAPIController exposes one navigation session over JSON.
// The session is shared: filters and viewport moves are visible to every caller.
type NavAPIController struct {
	engine          *services.Engine
	log             *logrus.Logger
	apiPrefix       string
	requestIDHeader string
}

func NewNavAPIController(engine *services.Engine, log *logrus.Logger, opts NavAPIOptions) *NavAPIController {
	if opts.APIPrefix == "" {
		opts.APIPrefix = DefaultAPIPrefix
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &NavAPIController{
		engine:          engine,
		log:             log,
		apiPrefix:       opts.APIPrefix,
		requestIDHeader: opts.RequestIDHeader,
	}
}

func (c *NavAPIController) Key() string {
	return c.apiPrefix
}

func (c *NavAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()

	api.HandleFunc("/search", c.instrumentAPI("orgnav.search", c.Search)).Methods(http.MethodGet)
	api.HandleFunc("/levels", c.instrumentAPI("orgnav.levels.list", c.GetLevels)).Methods(http.MethodGet)
	api.HandleFunc("/levels/{level:[0-9]+}:go", c.instrumentAPI("orgnav.levels.go", c.GoToLevel)).Methods(http.MethodPost)
	api.HandleFunc("/stats", c.instrumentAPI("orgnav.stats", c.GetStats)).Methods(http.MethodGet)
	api.HandleFunc("/outline", c.instrumentAPI("orgnav.outline", c.GetOutline)).Methods(http.MethodGet)

	api.HandleFunc("/filters", c.instrumentAPI("orgnav.filters.get", c.GetFilters)).Methods(http.MethodGet)
	api.HandleFunc("/filters", c.instrumentAPI("orgnav.filters.put", c.PutFilters)).Methods(http.MethodPut)
	api.HandleFunc("/filters", c.instrumentAPI("orgnav.filters.delete", c.DeleteFilters)).Methods(http.MethodDelete)

	api.HandleFunc("/navigate", c.instrumentAPI("orgnav.navigate", c.Navigate)).Methods(http.MethodPost)
	api.HandleFunc("/viewport", c.instrumentAPI("orgnav.viewport.get", c.GetViewport)).Methods(http.MethodGet)
	api.HandleFunc("/viewport:pan", c.instrumentAPI("orgnav.viewport.pan", c.PanViewport)).Methods(http.MethodPost)
	api.HandleFunc("/viewport:zoom", c.instrumentAPI("orgnav.viewport.zoom", c.ZoomViewport)).Methods(http.MethodPost)
	api.HandleFunc("/viewport:fit", c.instrumentAPI("orgnav.viewport.fit", c.FitViewport)).Methods(http.MethodPost)
}

// begin assigns the request id and a request-scoped logger.
func (c *NavAPIController) begin(w http.ResponseWriter, r *http.Request) (context.Context, string) {
	requestID := httpapi.RequestID(r, c.requestIDHeader)
	header := c.requestIDHeader
	if header == "" {
		header = httpapi.DefaultRequestIDHeader
	}
	w.Header().Set(header, requestID)
	ctx := services.WithLogger(r.Context(), c.log.WithField("request_id", requestID))
	return ctx, requestID
}

// scopeFrom reads an optional comma-separated "units" override; otherwise the session filter applies.
func (c *NavAPIController) scopeFrom(r *http.Request) (entities.FilterSet, bool) {
	raw, ok := r.URL.Query()["units"]
	if !ok {
		return c.engine.Filters.Units(), true
	}
	ids := make([]int, 0, 4)
	for _, part := range strings.Split(strings.Join(raw, ","), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, false
		}
		ids = append(ids, id)
	}
	return entities.NewFilterSet(ids...), true
}

func (c *NavAPIController) Search(w http.ResponseWriter, r *http.Request) {
	ctx, requestID := c.begin(w, r)

	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeAPIError(w, http.StatusBadRequest, requestID, "ORGNAV_INVALID_QUERY", "q is required")
		return
	}
	scope, ok := c.scopeFrom(r)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, requestID, "ORGNAV_INVALID_QUERY", "units must be positive integers")
		return
	}

	results := c.engine.Search.Search(ctx, q, scope)
	resp := viewmodels.SearchResponse{
		Query:   q,
		Results: mappers.SearchResultsToViewModels(results),
	}
	if len(results) == 0 {
		resp.Suggestions = mappers.SearchResultsToViewModels(c.engine.Search.Suggest(q, scope, 5))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (c *NavAPIController) GetLevels(w http.ResponseWriter, r *http.Request) {
	ctx, _ := c.begin(w, r)
	writeJSON(w, http.StatusOK, mappers.LevelStatsToRows(c.engine.Panel.LevelStats(ctx)))
}

func (c *NavAPIController) GoToLevel(w http.ResponseWriter, r *http.Request) {
	ctx, requestID := c.begin(w, r)

	level, err := strconv.Atoi(mux.Vars(r)["level"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "ORGNAV_INVALID_LEVEL", "level is invalid")
		return
	}
	if !c.engine.Viewport.Available() {
		writeAPIError(w, http.StatusConflict, requestID, "ORGNAV_NO_SURFACE", "no diagram is mounted")
		return
	}
	focused := c.engine.Panel.GoToLevel(ctx, level)
	c.writeOutcome(w, "level-"+strconv.Itoa(level), focused)
}

func (c *NavAPIController) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, _ := c.begin(w, r)
	writeJSON(w, http.StatusOK, c.engine.Panel.Stats(ctx))
}

func (c *NavAPIController) GetOutline(w http.ResponseWriter, r *http.Request) {
	_, requestID := c.begin(w, r)

	scope, ok := c.scopeFrom(r)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, requestID, "ORGNAV_INVALID_QUERY", "units must be positive integers")
		return
	}
	var selected *int
	if raw := r.URL.Query().Get("selected"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeAPIError(w, http.StatusBadRequest, requestID, "ORGNAV_INVALID_QUERY", "selected is invalid")
			return
		}
		selected = &id
	}
	writeJSON(w, http.StatusOK, mappers.DatasetToOutline(c.engine.Catalog.Dataset(), scope, selected))
}

func (c *NavAPIController) GetFilters(w http.ResponseWriter, r *http.Request) {
	c.begin(w, r)
	writeJSON(w, http.StatusOK, viewmodels.FilterState{Units: c.engine.Filters.Units().IDs()})
}

type putFiltersRequest struct {
	Units []int `json:"units"`
}

// PutFilters replaces the session filter. Selected units bring their ancestors along.
func (c *NavAPIController) PutFilters(w http.ResponseWriter, r *http.Request) {
	ctx, requestID := c.begin(w, r)

	var req putFiltersRequest
	if err := httpapi.DecodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "ORGNAV_INVALID_BODY", "invalid json body")
		return
	}
	d := c.engine.Catalog.Dataset()
	var unknown []int
	for _, id := range req.Units {
		if _, ok := d.Unit(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		_ = httpapi.NewError(http.StatusUnprocessableEntity, "ORGNAV_UNKNOWN_UNIT", "units not found").
			WithRequestID(requestID).
			WithUnits(unknown...).
			Write(w)
		return
	}

	ids := c.engine.Panel.ReplaceFilter(ctx, req.Units)
	writeJSON(w, http.StatusOK, viewmodels.FilterState{Units: ids})
}

func (c *NavAPIController) DeleteFilters(w http.ResponseWriter, r *http.Request) {
	ctx, _ := c.begin(w, r)
	c.engine.Panel.ReplaceFilter(ctx, nil)
	w.WriteHeader(http.StatusNoContent)
}

type navigateRequest struct {
	ID string `json:"id"`
}

func (c *NavAPIController) Navigate(w http.ResponseWriter, r *http.Request) {
	ctx, requestID := c.begin(w, r)

	var req navigateRequest
	if err := httpapi.DecodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "ORGNAV_INVALID_BODY", "invalid json body")
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		writeAPIError(w, http.StatusBadRequest, requestID, "ORGNAV_INVALID_BODY", "id is required")
		return
	}
	if !c.engine.Viewport.Available() {
		writeAPIError(w, http.StatusConflict, requestID, "ORGNAV_NO_SURFACE", "no diagram is mounted")
		return
	}
	focused := c.engine.Locator.Resolve(ctx, req.ID)
	c.writeOutcome(w, req.ID, focused)
}

func (c *NavAPIController) GetViewport(w http.ResponseWriter, r *http.Request) {
	_, requestID := c.begin(w, r)
	v, ok := c.engine.Viewport.Viewport()
	if !ok {
		writeAPIError(w, http.StatusConflict, requestID, "ORGNAV_NO_SURFACE", "no diagram is mounted")
		return
	}
	writeJSON(w, http.StatusOK, mappers.ViewportToViewModel(v))
}

type panRequest struct {
	Direction string `json:"direction"`
}

func (c *NavAPIController) PanViewport(w http.ResponseWriter, r *http.Request) {
	ctx, requestID := c.begin(w, r)

	var req panRequest
	if err := httpapi.DecodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "ORGNAV_INVALID_BODY", "invalid json body")
		return
	}
	dir := services.Direction(strings.ToLower(strings.TrimSpace(req.Direction)))
	switch dir {
	case services.DirectionUp, services.DirectionDown, services.DirectionLeft, services.DirectionRight:
	default:
		writeAPIError(w, http.StatusBadRequest, requestID, "ORGNAV_INVALID_DIRECTION", "direction must be up, down, left or right")
		return
	}
	if !c.engine.Viewport.Available() {
		writeAPIError(w, http.StatusConflict, requestID, "ORGNAV_NO_SURFACE", "no diagram is mounted")
		return
	}
	c.engine.Panel.PanMinimap(ctx, dir)
	c.writeViewport(w)
}

type zoomRequest struct {
	Factor float64 `json:"factor"`
}

// ZoomViewport scales the view around the screen center. Zoom stays clamped.
func (c *NavAPIController) ZoomViewport(w http.ResponseWriter, r *http.Request) {
	ctx, requestID := c.begin(w, r)

	var req zoomRequest
	if err := httpapi.DecodeJSON(r.Body, &req); err != nil {
		writeAPIError(w, http.StatusBadRequest, requestID, "ORGNAV_INVALID_BODY", "invalid json body")
		return
	}
	if req.Factor <= 0 {
		writeAPIError(w, http.StatusBadRequest, requestID, "ORGNAV_INVALID_BODY", "factor must be positive")
		return
	}
	if !c.engine.Viewport.Available() {
		writeAPIError(w, http.StatusConflict, requestID, "ORGNAV_NO_SURFACE", "no diagram is mounted")
		return
	}
	c.engine.Panel.ZoomMinimap(ctx, req.Factor)
	c.writeViewport(w)
}

func (c *NavAPIController) FitViewport(w http.ResponseWriter, r *http.Request) {
	ctx, requestID := c.begin(w, r)
	if !c.engine.Viewport.Available() {
		writeAPIError(w, http.StatusConflict, requestID, "ORGNAV_NO_SURFACE", "no diagram is mounted")
		return
	}
	c.engine.Panel.FitMinimap(ctx)
	c.writeViewport(w)
}

func (c *NavAPIController) writeOutcome(w http.ResponseWriter, target string, focused bool) {
	out := viewmodels.NavigationOutcome{Target: target, Focused: focused}
	if v, ok := c.engine.Viewport.Viewport(); ok {
		out.Viewport = mappers.ViewportToViewModel(v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (c *NavAPIController) writeViewport(w http.ResponseWriter) {
	v, _ := c.engine.Viewport.Viewport()
	writeJSON(w, http.StatusOK, mappers.ViewportToViewModel(v))
}

func writeAPIError(w http.ResponseWriter, status int, requestID, code, message string) {
	_ = httpapi.NewError(status, code, message).WithRequestID(requestID).Write(w)
}

func writeJSON[T any](w http.ResponseWriter, status int, payload T) {
	if err := httpapi.WriteJSON(w, status, payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
