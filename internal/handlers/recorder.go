// internal/handlers/recorder.go
package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wildstack/server/internal/cache"
	"github.com/wildstack/server/internal/database"
	"github.com/wildstack/server/internal/engine"
	"github.com/wildstack/server/internal/models"
)

// historyRecorder implements room.Recorder: actions go to the Redis queue for
// the historian to drain, final results go straight to Postgres. Both sinks
// are optional and failures never reach the game path.
type historyRecorder struct {
	logger  *logrus.Logger
	history *cache.Queue
	db      *database.Store
}

func (s *Server) recorder() *historyRecorder {
	return &historyRecorder{logger: s.Logger, history: s.History, db: s.DB}
}

func (h *historyRecorder) RecordAction(gameID uuid.UUID, seq int, actorID uuid.UUID, action engine.Action, message string) {
	if h.history == nil {
		return
	}
	rec := models.GameActionRecord{
		GameID:   gameID,
		Seq:      seq,
		ActorID:  actorID,
		Type:     string(action.Type),
		CardID:   action.CardID,
		Color:    string(action.ChosenColor),
		SwapWith: action.SwapWith,
		Message:  message,
		TS:       time.Now().Unix(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := h.history.PublishGameAction(ctx, rec); err != nil {
			h.logger.WithError(err).WithField("game_id", gameID).Warn("failed to queue game action")
		}
	}()
}

func (h *historyRecorder) RecordResult(gameID uuid.UUID, results []models.GameResult) {
	if h.db == nil {
		return
	}
	rows := append([]models.GameResult(nil), results...)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.db.RecordGameResults(ctx, rows); err != nil {
			h.logger.WithError(err).WithField("game_id", gameID).Warn("failed to record game results")
		}
	}()
}
