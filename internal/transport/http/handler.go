package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"go.uber.org/zap"

	"livequiz-service/internal/app"
	"livequiz-service/internal/domain"
)

// Handler exposes the session protocol over REST. Everything is a plain
// request/response read or mutation; clients poll, the server never pushes.
type Handler struct {
	service  *app.Service
	verifier TokenVerifier
	logger   *zap.Logger
}

func NewHandler(service *app.Service, verifier TokenVerifier, logger *zap.Logger) *Handler {
	return &Handler{service: service, verifier: verifier, logger: logger}
}

// Router mounts the admin and player surfaces.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(h.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Post("/game/{gameID}/mutate", h.mutateGame)
		r.Get("/session/{sessionID}/status", h.sessionStatus)
		r.Get("/session/{sessionID}/results", h.sessionResults)
	})

	r.Route("/play", func(r chi.Router) {
		r.Post("/join/{sessionID}", h.join)
		r.Get("/{playerID}/status", h.playerStatus)
		r.Get("/{playerID}/question", h.playerQuestion)
		r.Put("/{playerID}/answer", h.submitAnswer)
		r.Get("/{playerID}/answer", h.revealedAnswer)
		r.Get("/{playerID}/results", h.playerResults)
	})

	return r
}

func (h *Handler) mutateGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		h.writeError(w, r, domain.ErrGameNotFound)
		return
	}
	var body struct {
		MutationType app.Mutation `json:"mutationType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, r, domain.ErrValidation)
		return
	}
	result, err := h.service.Mutate(r.Context(), ownerFrom(r), gameID, body.MutationType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) sessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)
	if err != nil {
		h.writeError(w, r, domain.ErrSessionNotFound)
		return
	}
	status, err := h.service.Status(ownerFrom(r), sessionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

func (h *Handler) sessionResults(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)
	if err != nil {
		h.writeError(w, r, domain.ErrSessionNotFound)
		return
	}
	results, err := h.service.Results(ownerFrom(r), sessionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, results)
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)
	if err != nil {
		h.writeError(w, r, domain.ErrSessionNotFound)
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Name == "" {
		h.writeError(w, r, domain.ErrValidation)
		return
	}
	playerID, err := h.service.Join(sessionID, body.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"playerId": playerID})
}

func (h *Handler) playerStatus(w http.ResponseWriter, r *http.Request) {
	started, err := h.service.PlayerStatus(chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"started": started})
}

func (h *Handler) playerQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.service.PlayerQuestion(chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, question)
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Answers []string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Answers) == 0 {
		h.writeError(w, r, domain.ErrValidation)
		return
	}
	if err := h.service.SubmitAnswer(chi.URLParam(r, "playerID"), body.Answers); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"accepted": true})
}

func (h *Handler) revealedAnswer(w http.ResponseWriter, r *http.Request) {
	answers, err := h.service.RevealedAnswers(chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]string{"answers": answers})
}

func (h *Handler) playerResults(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.PlayerResults(chi.URLParam(r, "playerID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// errorBody carries a machine-readable code so clients can map responses back
// to the error taxonomy without parsing messages.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errorCodes = []struct {
	err    error
	code   string
	status int
}{
	{domain.ErrTooLate, "too_late", http.StatusBadRequest},
	{domain.ErrValidation, "validation", http.StatusBadRequest},
	{domain.ErrUnauthorized, "unauthorized", http.StatusUnauthorized},
	{domain.ErrSessionOver, "session_over", http.StatusForbidden},
	{domain.ErrGameNotFound, "game_not_found", http.StatusNotFound},
	{domain.ErrSessionNotFound, "session_not_found", http.StatusNotFound},
	{domain.ErrPlayerNotFound, "player_not_found", http.StatusNotFound},
	{domain.ErrQuestionNotFound, "question_not_found", http.StatusNotFound},
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, entry := range errorCodes {
		if errors.Is(err, entry.err) {
			h.writeJSON(w, entry.status, errorBody{Error: err.Error(), Code: entry.code})
			return
		}
	}
	h.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err))
	h.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error", Code: "internal"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write response", zap.Error(err))
	}
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}
