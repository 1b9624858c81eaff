package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// Ledger persists games, bets and winners in Postgres.
//
// Expected schema:
//
//	CREATE TABLE games (
//	    id          TEXT PRIMARY KEY,
//	    bet_amount  NUMERIC NOT NULL DEFAULT 0,
//	    is_active   BOOLEAN NOT NULL DEFAULT TRUE,
//	    winning_bot INTEGER,
//	    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    finished_at TIMESTAMPTZ
//	);
//	CREATE TABLE game_bots (
//	    game_id       TEXT NOT NULL REFERENCES games(id),
//	    bot_index     INTEGER NOT NULL,
//	    x             DOUBLE PRECISION NOT NULL,
//	    y             DOUBLE PRECISION NOT NULL,
//	    orientation   DOUBLE PRECISION NOT NULL,
//	    hp            INTEGER NOT NULL,
//	    attack        INTEGER NOT NULL,
//	    defense       INTEGER NOT NULL,
//	    speed         INTEGER NOT NULL,
//	    fuel          DOUBLE PRECISION NOT NULL,
//	    weapon_choice INTEGER NOT NULL,
//	    damage_dealt  INTEGER NOT NULL DEFAULT 0,
//	    PRIMARY KEY (game_id, bot_index)
//	);
type Ledger struct {
	db *sql.DB
}

// NewLedger accepts an existing DB handle.
func NewLedger(db *sql.DB) *Ledger {
	return &Ledger{db: db}
}

// NewLedgerFromDB builds the ledger from a connection string
// (e.g. os.Getenv("DATABASE_URL")).
func NewLedgerFromDB(connStr string) (*Ledger, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return NewLedger(db), nil
}

func (l *Ledger) CreateGame(ctx context.Context, betAmount float64) (string, error) {
	id := "g_" + uuid.NewString()
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO games (id, bet_amount, is_active)
		VALUES ($1, $2, TRUE)
	`, id, betAmount)
	if err != nil {
		return "", fmt.Errorf("ledger: create game: %w", err)
	}
	return id, nil
}

func (l *Ledger) RegisterBot(ctx context.Context, gameID string, bot BotRegistration) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("ledger: register bot: %w", err)
	}
	defer tx.Rollback()

	var active bool
	err = tx.QueryRowContext(ctx, `SELECT is_active FROM games WHERE id = $1`, gameID).Scan(&active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("ledger: game %s does not exist", gameID)
		}
		return fmt.Errorf("ledger: register bot: %w", err)
	}
	if !active {
		return fmt.Errorf("ledger: game %s is already settled", gameID)
	}

	// bot_index is the current bot count; the row count is stable because
	// bots are only ever appended.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO game_bots (game_id, bot_index, x, y, orientation, hp, attack, defense, speed, fuel, weapon_choice)
		SELECT $1, COUNT(*), $2, $3, $4, $5, $6, $7, $8, $9, $10
		FROM game_bots WHERE game_id = $1
	`, gameID, bot.X, bot.Y, bot.Orientation, bot.HP, bot.Attack, bot.Defense, bot.Speed, bot.Fuel, bot.WeaponChoice)
	if err != nil {
		return fmt.Errorf("ledger: register bot: %w", err)
	}

	return tx.Commit()
}

func (l *Ledger) UpdateBotState(ctx context.Context, gameID string, botIndex int, update BotUpdate) error {
	res, err := l.db.ExecContext(ctx, `
		UPDATE game_bots
		SET x = $1, y = $2, orientation = $3, hp = $4, fuel = $5, damage_dealt = $6
		WHERE game_id = $7 AND bot_index = $8
	`, update.X, update.Y, update.Orientation, update.HP, update.Fuel, update.DamageDealt, gameID, botIndex)
	if err != nil {
		return fmt.Errorf("ledger: update bot state: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("ledger: bot %d does not exist in game %s", botIndex, gameID)
	}
	return nil
}

func (l *Ledger) FinishGame(ctx context.Context, gameID string, winningBotIndex int) error {
	res, err := l.db.ExecContext(ctx, `
		UPDATE games
		SET is_active = FALSE, winning_bot = $1, finished_at = NOW()
		WHERE id = $2 AND is_active
	`, winningBotIndex, gameID)
	if err != nil {
		return fmt.Errorf("ledger: finish game: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("ledger: game %s does not exist or is already settled", gameID)
	}
	return nil
}
