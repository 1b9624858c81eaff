package engine

import (
	"context"
	"fmt"
	"log"
)

// TurnResult is what a processed (or skipped) turn reports back.
type TurnResult struct {
	Log             []string    `json:"log"`
	BotState        BotSnapshot `json:"botState"`
	CurrentBotIndex int         `json:"currentBotIndex"`
	TurnCount       int         `json:"turnCount"`
	Winner          *int        `json:"winner,omitempty"`
}

// Turn processes one bot's ordered action list under the game's lock.
// Request-level violations (unknown game, inactive game, wrong actor,
// missing bot) reject the call before any mutation; per-action failures are
// recorded in the result log and processing continues.
func (e *Engine) Turn(ctx context.Context, gameID string, botIndex int, actions []Action) (TurnResult, error) {
	g, ok := e.store.get(gameID)
	if !ok {
		return TurnResult{}, ErrGameNotFound
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.IsActive {
		return TurnResult{}, ErrGameInactive
	}
	if botIndex != g.CurrentBotIndex {
		return TurnResult{}, fmt.Errorf("%w: it is not bot %d's turn, it is bot %d's turn",
			ErrNotYourTurn, botIndex, g.CurrentBotIndex)
	}
	if botIndex < 0 || botIndex >= len(g.Bots) {
		return TurnResult{}, ErrBotNotFound
	}

	bot := g.Bots[botIndex]
	var turnLog []string

	// A bot that is already destroyed when its turn comes up is skipped
	// outright; no AP is spent and the pointer moves to the next alive bot.
	if !bot.Alive() {
		log.Printf("game %s: bot %d is destroyed, skipping its turn", gameID, botIndex)
		turnLog = append(turnLog, fmt.Sprintf("Bot %d is destroyed; turn skipped", botIndex))
		g.advanceTurn()
		return e.endTurn(ctx, g, bot, botIndex, turnLog)
	}

	for _, act := range actions {
		if bot.APConsumed >= maxAP {
			turnLog = append(turnLog, "No AP left; ignoring further actions")
			break
		}
		if !bot.Alive() {
			turnLog = append(turnLog, fmt.Sprintf("Bot %d was destroyed mid-turn; ignoring further actions", botIndex))
			break
		}

		switch act.Type {
		case ActionMove:
			if err := Move(bot, act.X, act.Y); err != nil {
				turnLog = append(turnLog, fmt.Sprintf("Move failed: %v", err))
				continue
			}
			bot.APConsumed++
			turnLog = append(turnLog, fmt.Sprintf("Move success to (%g, %g)", bot.X, bot.Y))

		case ActionRotate:
			if err := Rotate(bot, act.NewOrientation); err != nil {
				turnLog = append(turnLog, fmt.Sprintf("Rotate failed: %v", err))
				continue
			}
			bot.APConsumed++
			turnLog = append(turnLog, fmt.Sprintf("Rotate success: now facing %g°", bot.Orientation))

		case ActionAttack:
			if act.TargetIndex < 0 || act.TargetIndex >= len(g.Bots) {
				turnLog = append(turnLog, fmt.Sprintf("%v: %d", ErrInvalidTarget, act.TargetIndex))
				continue
			}
			// An attack costs AP win or lose.
			bot.APConsumed++
			res := PerformAttack(bot, g.Bots[act.TargetIndex])
			if res.IsHit {
				turnLog = append(turnLog, fmt.Sprintf("Attacked target #%d for %d dmg", act.TargetIndex, res.FinalDamage))
			} else {
				turnLog = append(turnLog, "Attack missed or out of range")
			}

		default:
			log.Printf("game %s: bot %d submitted unknown action type %q", gameID, botIndex, act.Type)
			turnLog = append(turnLog, fmt.Sprintf("%v: %s", ErrUnknownAction, act.Type))
		}
	}

	// The turn ends only when the budget is exhausted or the actor died.
	// A partial turn leaves the pointer in place so the caller can spend the
	// remaining AP in a follow-up request.
	if bot.APConsumed >= maxAP || !bot.Alive() {
		bot.APConsumed = 0
		g.advanceTurn()
	}

	return e.endTurn(ctx, g, bot, botIndex, turnLog)
}

// endTurn runs the auto-finish check and assembles the result. Called with
// g.mu held, on both the normal and the dead-actor paths.
func (e *Engine) endTurn(ctx context.Context, g *Game, bot *BotState, botIndex int, turnLog []string) (TurnResult, error) {
	result := TurnResult{
		Log:      turnLog,
		BotState: BotSnapshot{BotIndex: botIndex, BotState: *bot},
	}

	alive, winner := g.aliveCount()
	if alive == 1 && g.IsActive {
		// The win condition stands even if settlement fails; re-settling is
		// guarded by the finished state.
		g.IsActive = false
		result.Winner = &winner
		result.Log = append(result.Log, fmt.Sprintf("Bot %d wins the game", winner))

		if err := e.gateway.FinishGame(ctx, g.ID, winner); err != nil {
			e.notify(g.snapshotLocked())
			return TurnResult{}, fmt.Errorf("%w: finish game: %v", ErrSettlement, err)
		}
		log.Printf("game %s: finished, winner bot %d", g.ID, winner)
	}

	result.CurrentBotIndex = g.CurrentBotIndex
	result.TurnCount = g.TurnCount
	e.notify(g.snapshotLocked())
	return result, nil
}

// FinishGame is the caller-triggered finish path. The winner is the bot with
// the highest HP, ties broken by cumulative damage dealt, remaining ties by
// lowest index. Finishing an already finished game is rejected rather than
// re-settled.
func (e *Engine) FinishGame(ctx context.Context, gameID string) (int, error) {
	g, ok := e.store.get(gameID)
	if !ok {
		return 0, ErrGameNotFound
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.IsActive {
		return 0, ErrAlreadyFinished
	}
	if len(g.Bots) == 0 {
		return 0, ErrBotNotFound
	}

	winner := winnerIndex(g.Bots)
	if err := e.gateway.FinishGame(ctx, gameID, winner); err != nil {
		return 0, fmt.Errorf("%w: finish game: %v", ErrSettlement, err)
	}
	g.IsActive = false
	log.Printf("game %s: finished by caller, winner bot %d", gameID, winner)

	e.notify(g.snapshotLocked())
	return winner, nil
}

// winnerIndex picks the standing winner: highest HP, then highest damage
// dealt, then first found.
func winnerIndex(bots []*BotState) int {
	bestHP := -1
	bestDamage := -1
	winner := 0
	for i, b := range bots {
		switch {
		case b.HP > bestHP:
			bestHP = b.HP
			bestDamage = b.DamageDealt
			winner = i
		case b.HP == bestHP && b.DamageDealt > bestDamage:
			bestDamage = b.DamageDealt
			winner = i
		}
	}
	return winner
}
