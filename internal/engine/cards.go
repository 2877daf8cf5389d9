package engine

import (
	"cardclash/internal/catalog"
	"cardclash/internal/model"
	"fmt"
	"strings"
)

// Gamble branches
const (
	ChoiceHeal   = "heal"
	ChoiceStrike = "strike"
	ChoiceDraw   = "draw"
)

func validChoice(c string) bool {
	switch c {
	case ChoiceHeal, ChoiceStrike, ChoiceDraw:
		return true
	}
	return false
}

// resolution carries the state of one card being resolved
type resolution struct {
	engine     *Engine
	g          *model.GameState
	actor      *model.Player
	target     *model.Player
	choice     string
	dealt      int
	extraDraws []model.Card
	reveal     []model.Card
	echoing    bool
}

type cardResolver func(r *resolution, card model.Card) string

var resolvers map[model.CardPassive]cardResolver

func init() {
	resolvers = map[model.CardPassive]cardResolver{
		model.PassiveNone:        resolvePlain,
		model.PassiveRegen:       resolveRegen,
		model.PassiveImmunity:    resolveShield,
		model.PassiveReflect:     resolveMirror,
		model.PassiveWeaken:      resolveHex,
		model.PassiveRevive:      resolvePhoenix,
		model.PassiveLowHPDamage: resolveLastStand,
		model.PassiveLowHPHeal:   resolveSecondWind,
		model.PassiveExtraDraw:   resolveScholar,
		model.PassiveCopy:        resolveEcho,
		model.PassiveChoice:      resolveGamble,
		model.PassiveReveal:      resolveSpyglass,
	}
}

func (r *resolution) resolve(card model.Card) string {
	fn, ok := resolvers[card.Passive]
	if !ok {
		fn = resolvePlain
	}
	return fn(r, card)
}

func (r *resolution) heal(amount int) string {
	healed := r.actor.Heal(amount)
	return fmt.Sprintf("healed %d HP", healed)
}

func (r *resolution) attack(amount int) string {
	if r.target == nil {
		return "no target"
	}
	dealt, h := dealDamage(r.g, r.actor, r.target, amount)
	r.dealt += dealt
	text := fmt.Sprintf("dealt %d damage", dealt)
	if len(h.notes) > 0 {
		text += " (" + strings.Join(h.notes, ", ") + ")"
	}
	return text
}

func (r *resolution) addEffect(e model.PassiveEffect) {
	r.g.PassiveEffects = append(r.g.PassiveEffects, e)
}

func (r *resolution) draw() string {
	if len(r.actor.Cards) >= r.engine.rules.MaxHandSize {
		return "hand is full"
	}
	c := r.engine.cards.RandomCard()
	r.actor.Cards = append(r.actor.Cards, c)
	r.extraDraws = append(r.extraDraws, c)
	return "drew a card"
}

func resolvePlain(r *resolution, card model.Card) string {
	switch {
	case card.Value > 0:
		return r.heal(card.Value)
	case card.Value < 0:
		return r.attack(-card.Value)
	}
	return "no effect"
}

func resolveRegen(r *resolution, card model.Card) string {
	text := resolvePlain(r, card)
	r.addEffect(regenEffect(r.actor, card.Type))
	return text + fmt.Sprintf(", regenerating %d HP per turn", catalog.RegenAmount)
}

func resolveShield(r *resolution, card model.Card) string {
	r.addEffect(immunityEffect(r.actor, card.Type))
	return "raised a shield"
}

func resolveMirror(r *resolution, card model.Card) string {
	r.addEffect(reflectEffect(r.actor, card.Type))
	return "raised a mirror"
}

func resolveHex(r *resolution, card model.Card) string {
	text := resolvePlain(r, card)
	if r.target != nil {
		r.addEffect(weakenEffect(r.target, card.Type))
		text += ", opponent weakened"
	}
	return text
}

func resolvePhoenix(r *resolution, card model.Card) string {
	r.addEffect(reviveEffect(r.actor, card.Type))
	return "gained a phoenix feather"
}

func resolveLastStand(r *resolution, card model.Card) string {
	amount := -card.Value
	if r.actor.Health <= catalog.LastStandThreshold {
		amount += catalog.LastStandBonus
	}
	return r.attack(amount)
}

func resolveSecondWind(r *resolution, card model.Card) string {
	amount := card.Value
	if r.actor.Health <= catalog.SecondWindThreshold {
		amount += catalog.SecondWindBonus
	}
	return r.heal(amount)
}

func resolveScholar(r *resolution, _ model.Card) string {
	return r.draw()
}

// resolveEcho re-resolves the most recent non-echo card played this game
func resolveEcho(r *resolution, _ model.Card) string {
	if r.echoing {
		return "no effect"
	}
	for i := len(r.g.History) - 1; i >= 0; i-- {
		a := r.g.History[i]
		if a.Action != model.ActionPlay || a.Card == nil || a.Card.Passive == model.PassiveCopy {
			continue
		}
		r.echoing = true
		text := r.resolve(*a.Card)
		r.echoing = false
		return "echoed " + a.Card.Name + ": " + text
	}
	return "nothing to echo"
}

// resolveGamble defaults to the heal branch when no choice is given
func resolveGamble(r *resolution, _ model.Card) string {
	switch r.choice {
	case ChoiceStrike:
		return r.attack(catalog.GambleAmount)
	case ChoiceDraw:
		return r.draw()
	default:
		return r.heal(catalog.GambleAmount)
	}
}

func resolveSpyglass(r *resolution, _ model.Card) string {
	if r.target == nil {
		return "no target"
	}
	r.reveal = make([]model.Card, 0, len(r.target.Cards))
	for _, c := range r.target.Cards {
		r.reveal = append(r.reveal, c.Redacted())
	}
	return "peeked at the opponent's hand"
}
