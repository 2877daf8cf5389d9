package engine

import (
	"cardclash/internal/catalog"
	"cardclash/internal/model"

	"github.com/google/uuid"
)

func newEffect(owner *model.Player, kind model.EffectKind, duration int, source string) model.PassiveEffect {
	return model.PassiveEffect{
		ID:       uuid.NewString(),
		PlayerID: owner.ID,
		Kind:     kind,
		Duration: duration,
		Source:   source,
	}
}

func regenEffect(owner *model.Player, source string) model.PassiveEffect {
	e := newEffect(owner, model.EffectRegen, catalog.RegenDuration, source)
	e.Regen = &model.RegenPayload{Amount: catalog.RegenAmount}
	return e
}

func immunityEffect(owner *model.Player, source string) model.PassiveEffect {
	e := newEffect(owner, model.EffectImmunity, catalog.ShieldDuration, source)
	e.Immunity = &model.ImmunityPayload{ReductionPct: catalog.ShieldReductionPct}
	return e
}

func reflectEffect(owner *model.Player, source string) model.PassiveEffect {
	e := newEffect(owner, model.EffectReflect, catalog.MirrorDuration, source)
	e.Reflect = &model.ReflectPayload{Multiplier: catalog.MirrorMultiplier}
	return e
}

func weakenEffect(owner *model.Player, source string) model.PassiveEffect {
	e := newEffect(owner, model.EffectWeaken, catalog.HexDuration, source)
	e.Weaken = &model.WeakenPayload{Bonus: catalog.HexBonus}
	return e
}

func reviveEffect(owner *model.Player, source string) model.PassiveEffect {
	e := newEffect(owner, model.EffectRevive, model.PermanentDuration, source)
	e.Revive = &model.RevivePayload{Health: catalog.PhoenixHealth}
	return e
}

// tickEffects runs per-turn effects, then decays and prunes timed ones
func tickEffects(g *model.GameState) {
	for _, e := range g.PassiveEffects {
		if e.Kind != model.EffectRegen || e.Regen == nil {
			continue
		}
		if owner := g.PlayerByID(e.PlayerID); owner != nil {
			owner.Heal(e.Regen.Amount)
		}
	}

	kept := g.PassiveEffects[:0]
	for _, e := range g.PassiveEffects {
		if !e.Permanent() {
			e.Duration--
		}
		if e.Duration > 0 {
			kept = append(kept, e)
		}
	}
	g.PassiveEffects = kept
}

// applyRevives restores every fallen player holding a revive and consumes it.
// It returns the ids of revived players.
func (e *Engine) applyRevives(g *model.GameState) []string {
	var revived []string
	for i := range g.Players {
		p := &g.Players[i]
		if p.Health > 0 {
			continue
		}
		idx := -1
		for j, eff := range g.PassiveEffects {
			if eff.PlayerID == p.ID && eff.Kind == model.EffectRevive && eff.Revive != nil {
				idx = j
				break
			}
		}
		if idx < 0 {
			continue
		}
		hp := g.PassiveEffects[idx].Revive.Health
		g.PassiveEffects = append(g.PassiveEffects[:idx], g.PassiveEffects[idx+1:]...)
		p.Health = 0
		p.Heal(hp)
		g.History = append(g.History, model.GameAction{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Team:       p.Team,
			Action:     model.ActionRevive,
			Timestamp:  e.now(),
			Effect:     "rose again",
		})
		revived = append(revived, p.ID)
	}
	return revived
}
