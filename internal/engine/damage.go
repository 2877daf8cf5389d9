package engine

import (
	"cardclash/internal/model"
	"fmt"
)

// hit is one damage event moving through the pipeline
type hit struct {
	g         *model.GameState
	attacker  *model.Player
	target    *model.Player
	amount    int
	blocked   bool
	reflected int
	notes     []string
}

type damageStage func(h *hit)

// damagePipeline runs in order: weaken, immunity, reflect
var damagePipeline = []damageStage{
	weakenStage,
	immunityStage,
	reflectStage,
}

func weakenStage(h *hit) {
	bonus := 0
	for _, e := range h.g.EffectsFor(h.target.ID, model.EffectWeaken) {
		bonus += e.Weaken.Bonus
	}
	if bonus > 0 {
		h.amount += bonus
		h.notes = append(h.notes, fmt.Sprintf("+%d weakened", bonus))
	}
}

func immunityStage(h *hit) {
	shields := h.g.EffectsFor(h.target.ID, model.EffectImmunity)
	for _, e := range shields {
		if !e.Immunity.Consumed {
			e.Immunity.Consumed = true
			h.amount = 0
			h.blocked = true
			h.notes = append(h.notes, "blocked by shield")
			return
		}
	}
	pct := 0
	for _, e := range shields {
		if e.Immunity.ReductionPct > pct {
			pct = e.Immunity.ReductionPct
		}
	}
	if pct > 0 {
		if pct > 100 {
			pct = 100
		}
		reduced := h.amount * (100 - pct) / 100
		h.notes = append(h.notes, fmt.Sprintf("shield absorbed %d", h.amount-reduced))
		h.amount = reduced
	}
}

func reflectStage(h *hit) {
	if h.blocked || h.amount <= 0 {
		return
	}
	mult := 0.0
	for _, e := range h.g.EffectsFor(h.target.ID, model.EffectReflect) {
		mult += e.Reflect.Multiplier
	}
	if mult <= 0 {
		return
	}
	h.reflected = int(float64(h.amount) * mult)
	if h.reflected > 0 {
		h.notes = append(h.notes, fmt.Sprintf("%d reflected", h.reflected))
	}
}

// dealDamage runs amount through the pipeline, applies it to target and any
// reflected damage straight to attacker. It returns the HP removed from target.
func dealDamage(g *model.GameState, attacker, target *model.Player, amount int) (int, *hit) {
	h := &hit{g: g, attacker: attacker, target: target, amount: amount}
	for _, stage := range damagePipeline {
		stage(h)
	}
	dealt := target.Damage(h.amount)
	if h.reflected > 0 {
		attacker.Damage(h.reflected)
	}
	return dealt, h
}
