package engine

import (
	"math"

	"agentbattle/internal/weapons"
)

// baseMovement is the distance every bot can cover per move action before its
// Speed stat is added.
const baseMovement = 2

// maxRotation is the largest orientation change a single rotate action allows.
const maxRotation = 60

func distance(x1, y1, x2, y2 float64) float64 {
	dx := x1 - x2
	dy := y1 - y2
	return math.Sqrt(dx*dx + dy*dy)
}

// angleDiff returns the minimal absolute difference between two angles in
// degrees, always in [0,180].
func angleDiff(a, b float64) float64 {
	diff := math.Mod(math.Abs(a-b), 360)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff
}

// normalizeAngle maps any angle onto [0,360).
func normalizeAngle(a float64) float64 {
	return math.Mod(math.Mod(a, 360)+360, 360)
}

// orientationMultiplier scales damage by relative facing:
// front (≤60°) ×1.0, side (≤120°) ×1.2, back (>120°) ×1.5.
func orientationMultiplier(attackerAngle, defenderAngle float64) float64 {
	diff := angleDiff(attackerAngle, defenderAngle)
	switch {
	case diff <= 60:
		return 1.0
	case diff <= 120:
		return 1.2
	default:
		return 1.5
	}
}

// Move commits a teleport-style move if the target lies within the bot's
// movement allowance and fuel. Fuel burned equals distance traveled exactly.
func Move(bot *BotState, newX, newY float64) error {
	maxDist := float64(baseMovement + bot.Speed)
	dist := distance(bot.X, bot.Y, newX, newY)

	if dist > maxDist {
		return ErrDistanceExceeded
	}
	if bot.Fuel < dist {
		return ErrInsufficientFuel
	}

	bot.X = newX
	bot.Y = newY
	bot.Fuel -= dist
	return nil
}

// Rotate commits a new orientation if the minimal angular change stays within
// the per-action rotation limit.
func Rotate(bot *BotState, newOrientation float64) error {
	if angleDiff(bot.Orientation, newOrientation) > maxRotation {
		return ErrRotationExceeded
	}
	bot.Orientation = normalizeAngle(newOrientation)
	return nil
}

// AttackResult reports what a resolved attack did.
type AttackResult struct {
	IsHit       bool
	FinalDamage int
}

// PerformAttack resolves one attack with the attacker's chosen weapon.
// A miss (out of range, or outside a cone weapon's arc) is not an error at
// this level; the result carries IsHit=false and the caller decides what the
// attempt cost. On a hit the defender's HP is reduced (clamped at 0) and the
// attacker's damageDealt grows by the same amount. Grenade splash stays
// single-target: only the named defender takes damage.
func PerformAttack(attacker, defender *BotState) AttackResult {
	weapon, ok := weapons.Get(attacker.WeaponChoice)
	if !ok {
		return AttackResult{}
	}

	dist := distance(attacker.X, attacker.Y, defender.X, defender.Y)
	if dist < weapon.RangeMin || dist > weapon.RangeMax {
		return AttackResult{}
	}

	// Cone weapons additionally require the defender inside the firing arc.
	if weapon.ConeAngle > 0 {
		bearing := math.Atan2(defender.Y-attacker.Y, defender.X-attacker.X) * (180 / math.Pi)
		if angleDiff(bearing, attacker.Orientation) > weapon.ConeAngle/2 {
			return AttackResult{}
		}
	}

	base := attacker.Attack + weapon.Damage
	mult := orientationMultiplier(attacker.Orientation, defender.Orientation)
	damage := int(math.Floor(float64(base) * mult))

	if weapon.Special == weapons.SpecialBackAttack &&
		angleDiff(attacker.Orientation, defender.Orientation) > 120 {
		damage++
	}

	final := damage - defender.Defense
	if final < 1 {
		final = 1
	}

	defender.HP -= final
	if defender.HP < 0 {
		defender.HP = 0
	}
	attacker.DamageDealt += final

	return AttackResult{IsHit: true, FinalDamage: final}
}
