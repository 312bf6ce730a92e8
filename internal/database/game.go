// internal/database/game.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wildstack/server/internal/models"
)

// RecordGameResults upserts one row per seated player for a finished game:
// win flag, final hand size, and whether the player ended eliminated.
func (s *Store) RecordGameResults(ctx context.Context, results []models.GameResult) error {
	q := `
		INSERT INTO game_results (game_id, player_id, did_win, hand_size, eliminated)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id, player_id) DO UPDATE
		SET did_win = $3, hand_size = $4, eliminated = $5
	`
	err := pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, res := range results {
			if _, err := tx.Exec(ctx, q, res.GameID, res.PlayerID, res.Won, res.HandSize, res.Eliminated); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record game results: %w", err)
	}
	return nil
}

// InsertGameActions batch-inserts drained history records. Replayed records
// collide on (game_id, seq) and are ignored, making the historian idempotent.
func (s *Store) InsertGameActions(ctx context.Context, records []models.GameActionRecord) error {
	if len(records) == 0 {
		return nil
	}
	q := `
		INSERT INTO game_actions (game_id, seq, actor_id, action_type, card_id, color, swap_with, message, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (game_id, seq) DO NOTHING
	`
	err := pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range records {
			var cardID, swapWith interface{}
			if rec.CardID != uuid.Nil {
				cardID = rec.CardID
			}
			if rec.SwapWith != uuid.Nil {
				swapWith = rec.SwapWith
			}
			if _, err := tx.Exec(ctx, q,
				rec.GameID, rec.Seq, rec.ActorID, rec.Type,
				cardID, rec.Color, swapWith, rec.Message, rec.TS,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert game actions: %w", err)
	}
	return nil
}
