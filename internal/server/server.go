package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"voice-trading-bot/internal/interfaces"
	"voice-trading-bot/internal/logger"
	"voice-trading-bot/internal/types"
)

const maxAudioBytes = 10 << 20

// Server exposes the chatbot over HTTP. It owns no business logic; every
// handler delegates to the engine or one of its collaborators.
type Server struct {
	engine      interfaces.Engine
	transcriber interfaces.Transcriber // nil disables /api/voice-to-text
	recorder    interfaces.Recorder
	reload      func(ctx context.Context) (int, error)
	health      func() map[string]any
}

type Params struct {
	Engine      interfaces.Engine
	Transcriber interfaces.Transcriber
	Recorder    interfaces.Recorder
	// Reload re-reads the security directory and returns the entry count.
	Reload func(ctx context.Context) (int, error)
	// Health contributes process state to the health payload.
	Health func() map[string]any
}

func New(p Params) *Server {
	return &Server{
		engine:      p.Engine,
		transcriber: p.Transcriber,
		recorder:    p.Recorder,
		reload:      p.Reload,
		health:      p.Health,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Post("/process-command", s.handleProcessCommand)
		r.Post("/voice-to-text", s.handleVoiceToText)
		r.Get("/health", s.handleHealth)
		r.Get("/chat-history", s.handleChatHistory)
		r.Post("/admin/reload-directory", s.handleReloadDirectory)
	})
	return r
}

type commandRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type commandResponse struct {
	SessionID string `json:"session_id"`
	*types.Response
}

func (s *Server) handleProcessCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	ctx := r.Context()
	s.saveTurn(ctx, req.SessionID, "user", req.Text)

	resp, err := s.engine.Handle(ctx, req.SessionID, req.Text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "command processing failed")
		return
	}

	s.saveTurn(ctx, req.SessionID, "bot", resp.Message)
	writeJSON(w, http.StatusOK, commandResponse{SessionID: req.SessionID, Response: resp})
}

func (s *Server) handleVoiceToText(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		writeError(w, http.StatusServiceUnavailable, "speech recognition is not configured")
		return
	}

	audio, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio body")
		return
	}
	if len(audio) == 0 {
		writeError(w, http.StatusBadRequest, "audio body is empty")
		return
	}
	if len(audio) > maxAudioBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "audio body too large")
		return
	}

	text, err := s.transcriber.Transcribe(r.Context(), audio)
	if err != nil {
		logger.ErrorWithErr(r.Context(), "Transcription failed", err)
		writeError(w, http.StatusBadGateway, "speech recognition failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	payload := map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	if s.health != nil {
		for k, v := range s.health() {
			payload[k] = v
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	turns, err := s.recorder.ChatHistory(r.Context(), sessionID, limit)
	if err != nil {
		logger.ErrorWithErr(r.Context(), "Chat history lookup failed", err, "session_id", sessionID)
		writeError(w, http.StatusInternalServerError, "failed to load chat history")
		return
	}
	if turns == nil {
		turns = []types.ChatTurn{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "history": turns})
}

func (s *Server) handleReloadDirectory(w http.ResponseWriter, r *http.Request) {
	if s.reload == nil {
		writeError(w, http.StatusServiceUnavailable, "directory reload is not configured")
		return
	}
	count, err := s.reload(r.Context())
	if err != nil {
		logger.ErrorWithErr(r.Context(), "Directory reload failed", err)
		writeError(w, http.StatusInternalServerError, "directory reload failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "reloaded", "entries": count})
}

// saveTurn persists one chat message. Persistence failures must not break
// the conversation, so errors are logged and swallowed.
func (s *Server) saveTurn(ctx context.Context, sessionID, sender, message string) {
	if s.recorder == nil {
		return
	}
	err := s.recorder.SaveChatTurn(ctx, types.ChatTurn{
		SessionID: sessionID,
		Sender:    sender,
		Message:   message,
		At:        time.Now(),
	})
	if err != nil {
		logger.Warn(ctx, "Failed to save chat turn", "session_id", sessionID, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
