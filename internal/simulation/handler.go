package simulation

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ayush/ticket-simulator/backend/internal/models"
)

const (
	msgSimulateFailed = "模擬失敗"
	msgHistoryFailed  = "查詢失敗"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// StrategyStore defines the interface for strategy persistence.
type StrategyStore interface {
	InsertStrategy(ctx context.Context, s *models.Strategy) error
	ListStrategiesByUser(ctx context.Context, userID int64) ([]models.Strategy, error)
}

// Handler holds simulation HTTP handlers.
type Handler struct {
	strategies StrategyStore
}

func NewHandler(strategies StrategyStore) *Handler {
	return &Handler{strategies: strategies}
}

// Simulate scores the submitted choices and records the run.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req models.SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error().Err(err).Msg("simulate: decode body")
		writeMessage(w, http.StatusInternalServerError, msgSimulateFailed)
		return
	}

	res := Score(Input{
		Platform:   req.Platform,
		EntryTime:  req.EntryTime,
		TicketType: req.TicketType.String(),
		Network:    req.Network,
	})

	userID, err := req.UserID.Int64()
	if err != nil {
		logger.Error().Err(err).Str("user_id", req.UserID.String()).Msg("simulate: bad user_id")
		writeMessage(w, http.StatusInternalServerError, msgSimulateFailed)
		return
	}

	rec := &models.Strategy{
		UserID:      userID,
		Platform:    req.Platform,
		EntryTime:   req.EntryTime,
		TicketType:  req.TicketType.String(),
		Network:     req.Network,
		SuccessRate: res.SuccessRate,
		Suggestion:  res.Suggestion,
	}
	if err := h.strategies.InsertStrategy(r.Context(), rec); err != nil {
		logger.Error().Err(err).Int64("user_id", userID).Msg("simulate: insert strategy")
		writeMessage(w, http.StatusInternalServerError, msgSimulateFailed)
		return
	}

	logger.Debug().Int64("user_id", userID).Int("success_rate", res.SuccessRate).Msg("simulation recorded")
	writeJSON(w, http.StatusOK, models.SimulateResponse{
		SuccessRate: res.SuccessRate,
		Suggestion:  res.Suggestion,
	})
}

// History returns every recorded run for ?user_id=, newest first. A missing
// or non-integer user_id matches nothing.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("user_id")
	userID, err := models.FlexString(raw).Int64()
	if err != nil {
		writeJSON(w, http.StatusOK, []models.Strategy{})
		return
	}

	records, err := h.strategies.ListStrategiesByUser(r.Context(), userID)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Int64("user_id", userID).Msg("history: list strategies")
		writeMessage(w, http.StatusInternalServerError, msgHistoryFailed)
		return
	}
	if records == nil {
		records = []models.Strategy{}
	}
	writeJSON(w, http.StatusOK, records)
}
