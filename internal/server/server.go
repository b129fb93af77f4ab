// Package server exposes the HTTP API and websocket transport around the
// processing core: queue inspection, media download/convert submission,
// playlist runs and configuration.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/Advansoftware/m3utostrm/internal/config"
	"github.com/Advansoftware/m3utostrm/internal/media"
	"github.com/Advansoftware/m3utostrm/internal/metainfo"
	"github.com/Advansoftware/m3utostrm/internal/pipeline"
	"github.com/Advansoftware/m3utostrm/internal/playlist"
	"github.com/Advansoftware/m3utostrm/internal/queue"
	"github.com/Advansoftware/m3utostrm/internal/strm"
)

type Server struct {
	cfg          *config.Config
	cfgPath      string
	queue        *queue.Queue
	orchestrator *pipeline.Orchestrator
	hub          *Hub
	lookup       *metainfo.Client
	httpServer   *http.Server
}

func New(cfg *config.Config, cfgPath string, q *queue.Queue, hub *Hub) *Server {
	return &Server{
		cfg:          cfg,
		cfgPath:      cfgPath,
		queue:        q,
		orchestrator: pipeline.New(),
		hub:          hub,
		lookup:       metainfo.NewClient(cfg.OMDBAPIKey, cfg.TMDBAPIKey),
	}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/queue", s.handleQueueStatus)
	mux.HandleFunc("POST /api/queue/cancel", s.handleQueueCancel)
	mux.HandleFunc("POST /api/media/download", s.handleMediaDownload)
	mux.HandleFunc("POST /api/media/convert", s.handleMediaConvert)
	mux.HandleFunc("GET /api/media/formats", s.handleMediaFormats)
	mux.HandleFunc("GET /api/media/probe", s.handleMediaProbe)
	mux.HandleFunc("GET /api/media/info", s.handleMediaInfo)
	mux.HandleFunc("GET /api/content", s.handleContent)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/config", s.handleConfigGet)
	mux.HandleFunc("POST /api/config", s.handleConfigSet)
	mux.HandleFunc("POST /api/playlist/process", s.handlePlaylistProcess)
	mux.HandleFunc("POST /api/playlist/cancel", s.handlePlaylistCancel)
	mux.HandleFunc("POST /api/playlist/test", s.handlePlaylistTest)
	mux.HandleFunc("GET /ws", s.hub.Handle)
	return withCORS(mux)
}

// Start runs the HTTP server until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{Addr: addr, Handler: s.routes()}
	log.Info().Str("op", "server/start").Msgf("Listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("error running http server: %v", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Debug().Str("op", "server/api").Msgf("Error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.queue.Status())
}

func (s *Server) handleQueueCancel(w http.ResponseWriter, r *http.Request) {
	itemID := r.FormValue("item_id")
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}
	s.queue.Cancel(itemID)
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func (s *Server) handleMediaDownload(w http.ResponseWriter, r *http.Request) {
	url := r.FormValue("url")
	formatID := r.FormValue("format_id")
	if url == "" || formatID == "" {
		writeError(w, http.StatusBadRequest, "url and format_id are required")
		return
	}
	info, err := media.Formats(r.Context(), url)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read source formats")
		return
	}
	format, ok := info.FindFormat(formatID)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("format %s not available", formatID))
		return
	}
	filename := info.Title
	if filename == "" {
		filename = "video"
	}
	itemID := s.queue.Add(filename, url, formatID, format.Ext)
	writeJSON(w, http.StatusOK, map[string]string{
		"item_id":  itemID,
		"filename": filename,
		"status":   string(queue.StatusPending),
	})
}

func (s *Server) handleMediaConvert(w http.ResponseWriter, r *http.Request) {
	inputURL := r.FormValue("input_url")
	format := r.FormValue("format")
	if inputURL == "" || format == "" {
		writeError(w, http.StatusBadRequest, "input_url and format are required")
		return
	}
	itemID := s.queue.Add("Converting: "+inputURL, inputURL, "", format)
	writeJSON(w, http.StatusOK, map[string]string{"item_id": itemID})
}

func (s *Server) handleMediaFormats(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeJSON(w, http.StatusOK, map[string][]string{
			"video":   {"mp4", "mkv", "avi", "webm"},
			"audio":   {"mp3", "aac", "wav", "ogg"},
			"quality": {"480p", "720p", "1080p", "2160p"},
		})
		return
	}
	info, err := media.Formats(r.Context(), url)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read source formats")
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleMediaProbe(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	info, err := media.Probe(r.Context(), url)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleMediaInfo(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	attrs := s.lookup.Lookup(r.Context(), title)
	if attrs == nil {
		writeJSON(w, http.StatusOK, map[string]string{})
		return
	}
	writeJSON(w, http.StatusOK, attrs)
}

// handleContent lists the materialized STRM library with search and paginated
// movies. Series come back whole; their nesting does not paginate cleanly.
func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	lib := strm.ScanLibrary(s.cfg.MoviesDir, s.cfg.SeriesDir)
	lib = lib.Filter(r.URL.Query().Get("search"))

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)
	if limit < 1 {
		limit = 20
	}
	total := len(lib.Movies)
	pages := (total + limit - 1) / limit
	if pages > 0 {
		page = min(max(1, page), pages)
	} else {
		page = 1
	}
	start := (page - 1) * limit
	end := min(start+limit, total)
	writeJSON(w, http.StatusOK, map[string]any{
		"movies": lib.Movies[start:end],
		"series": lib.Series,
		"pagination": map[string]int{
			"total": total,
			"page":  page,
			"limit": limit,
			"pages": pages,
		},
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, strm.ScanLibrary(s.cfg.MoviesDir, s.cfg.SeriesDir).Stats())
}

func queryInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func (s *Server) handleConfigGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg)
}

func (s *Server) handleConfigSet(w http.ResponseWriter, r *http.Request) {
	var updated config.Config
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		writeError(w, http.StatusBadRequest, "invalid config payload")
		return
	}
	*s.cfg = updated
	s.lookup = metainfo.NewClient(s.cfg.OMDBAPIKey, s.cfg.TMDBAPIKey)
	if err := config.Save(s.cfgPath, s.cfg); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.cfg)
}

func (s *Server) handlePlaylistProcess(w http.ResponseWriter, r *http.Request) {
	if s.orchestrator.Running() {
		writeError(w, http.StatusConflict, "playlist processing already running")
		return
	}
	source := s.cfg.M3UURL
	if s.cfg.UseFile {
		source = s.cfg.M3UFile
	}
	if source == "" {
		writeError(w, http.StatusBadRequest, "no playlist source configured")
		return
	}
	opts := pipeline.Options{
		Source:        source,
		UseFile:       s.cfg.UseFile,
		MoviesDir:     s.cfg.MoviesDir,
		SeriesDir:     s.cfg.SeriesDir,
		ProcessMovies: s.cfg.ProcessMovies,
		ProcessSeries: s.cfg.ProcessSeries,
		Progress: func(item playlist.Classified, processed, total int) {
			s.hub.Notify(playlistProgressEvent(item.Title, processed, total))
		},
	}
	go func() {
		if err := s.orchestrator.Run(opts); err != nil {
			log.Error().Str("op", "server/playlist").Msgf("Playlist run failed: %v", err)
		}
	}()
	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (s *Server) handlePlaylistCancel(w http.ResponseWriter, r *http.Request) {
	s.orchestrator.Cancel()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelling"})
}

func (s *Server) handlePlaylistTest(w http.ResponseWriter, r *http.Request) {
	url := r.FormValue("url")
	if url == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	writeJSON(w, http.StatusOK, playlist.TestConnection(url))
}
