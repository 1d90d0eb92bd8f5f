package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"tagsmith/internal/api"
	"tagsmith/internal/config"
	"tagsmith/internal/inference"
	"tagsmith/internal/logging"
	"tagsmith/internal/tagstore"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	token := cfg.Paths.APIToken
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.requireAuth(token, srv.handleStatus))
	mux.HandleFunc("/api/tags/available", srv.requireAuth(token, srv.handleAvailable))
	mux.HandleFunc("/api/tags/statuses", srv.requireAuth(token, srv.handleStatuses))
	mux.HandleFunc("/api/tags/settings", srv.requireAuth(token, srv.handleSettings))
	mux.HandleFunc("/api/tags/reload", srv.requireAuth(token, srv.handleReload))
	mux.HandleFunc("/api/history", srv.requireAuth(token, srv.handleHistory))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:      status.Running,
		PID:          status.PID,
		SettingsPath: status.SettingsPath,
		LockFilePath: status.LockFilePath,
		TagCount:     status.TagCount,
		EnabledCount: status.EnabledCount,
	})
}

func (s *apiServer) handleAvailable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	includeDisabled := parseBoolParam(r.URL.Query().Get("include_disabled"))

	store := s.daemon.store
	resolved := store.List(includeDisabled)
	tags := make([]api.TagSettings, 0, len(resolved))
	for _, settings := range resolved {
		tags = append(tags, api.FromEffectiveSettings(settings, store.DisplayName(settings.Tag)))
	}

	// Inference context is best effort; the tag list is still useful when
	// the backend is down.
	var models []api.ModelInfo
	var categories []string
	if s.daemon.infer != nil {
		active, err := s.daemon.infer.ActiveModels(r.Context())
		if err != nil {
			logging.WarnWithContext(s.log(), "inference backend unavailable", "inference_unreachable",
				logging.Error(err),
				logging.String(logging.FieldImpact, "tag list served without model metadata"))
		} else {
			models = api.FromModelInfo(active)
			categories = inference.LoadedCategories(active)
		}
	}
	if models == nil {
		models = []api.ModelInfo{}
	}
	if categories == nil {
		categories = []string{}
	}

	s.writeJSON(w, http.StatusOK, api.AvailableTagsResponse{
		Tags:             tags,
		Models:           models,
		LoadedCategories: categories,
		Defaults:         api.FromDefaults(store.DefaultValues()),
	})
}

func (s *apiServer) handleStatuses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, api.StatusesResponse{
			TagStatuses: s.daemon.store.AllStatuses(),
			EnabledTags: s.daemon.store.EnabledTags(),
		})
	case http.MethodPut, http.MethodPost:
		var req api.StatusUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		statuses := req.StatusPatches()
		if len(statuses) == 0 {
			s.writeError(w, http.StatusBadRequest, "no tag statuses provided")
			return
		}
		changes, err := s.daemon.store.UpdateEnabledStatus(r.Context(), statuses)
		if err != nil {
			s.writePersistError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, s.recordChanges(r.Context(), changes))
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.SettingsUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Tags) == 0 {
		s.writeError(w, http.StatusBadRequest, "no tag settings provided")
		return
	}
	patches, err := req.StorePatches()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	changes, err := s.daemon.store.UpdateSettings(r.Context(), patches)
	if err != nil {
		s.writePersistError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.recordChanges(r.Context(), changes))
}

func (s *apiServer) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.daemon.store.Invalidate()
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.daemon.hist == nil {
		s.writeJSON(w, http.StatusOK, api.HistoryResponse{Entries: []api.HistoryEntry{}})
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	tag := strings.TrimSpace(query.Get("tag"))

	var err error
	var entries []api.HistoryEntry
	if tag != "" {
		raw, forErr := s.daemon.hist.ForTag(r.Context(), tag, limit)
		entries, err = api.FromHistoryEntries(raw), forErr
	} else {
		raw, recentErr := s.daemon.hist.Recent(r.Context(), limit)
		entries, err = api.FromHistoryEntries(raw), recentErr
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.HistoryResponse{Entries: entries})
}

// recordChanges audits applied changes under one operation ID and builds
// the update result.
func (s *apiServer) recordChanges(ctx context.Context, changes []tagstore.Change) api.UpdateResult {
	result := api.UpdateResult{Status: "ok", Updated: len(changes)}
	if len(changes) == 0 {
		return result
	}
	operationID := uuid.New()
	result.OperationID = operationID.String()
	if s.daemon.hist != nil {
		if err := s.daemon.hist.Record(ctx, operationID, changes); err != nil {
			logging.WarnWithContext(s.log(), "history record failed", "history_write_failed",
				logging.Error(err),
				logging.String(logging.FieldOperationID, operationID.String()),
				logging.String(logging.FieldImpact, "settings change applied but not audited"))
		}
	}
	return result
}

func (s *apiServer) writePersistError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, tagstore.ErrSourceUnavailable) {
		status = http.StatusServiceUnavailable
	}
	s.writeError(w, status, err.Error())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String(logging.FieldComponent, "api-server"))
	}
	return logging.NewNop()
}

func parseBoolParam(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
