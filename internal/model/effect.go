package model

// EffectKind enumerates the passive effects a player can carry
type EffectKind string

const (
	EffectRegen    EffectKind = "regen"
	EffectImmunity EffectKind = "immunity"
	EffectReflect  EffectKind = "reflect"
	EffectWeaken   EffectKind = "weaken"
	EffectRevive   EffectKind = "revive"
)

// PermanentDuration marks an effect that lasts until the game ends
const PermanentDuration = 999

// Exactly one payload is set, matching Kind.

type RegenPayload struct {
	Amount int `json:"amount"`
}

type ImmunityPayload struct {
	ReductionPct int  `json:"reductionPct"`
	Consumed     bool `json:"consumed"`
}

type ReflectPayload struct {
	Multiplier float64 `json:"multiplier"`
}

type WeakenPayload struct {
	Bonus int `json:"bonus"`
}

type RevivePayload struct {
	Health int `json:"health"`
}

// PassiveEffect is a timed status modifier attached to a player
type PassiveEffect struct {
	ID       string     `json:"id"`
	PlayerID string     `json:"playerId"`
	Kind     EffectKind `json:"kind"`
	Duration int        `json:"duration"` // turns remaining
	Source   string     `json:"source,omitempty"`

	Regen    *RegenPayload    `json:"regen,omitempty"`
	Immunity *ImmunityPayload `json:"immunity,omitempty"`
	Reflect  *ReflectPayload  `json:"reflect,omitempty"`
	Weaken   *WeakenPayload   `json:"weaken,omitempty"`
	Revive   *RevivePayload   `json:"revive,omitempty"`
}

// Permanent reports whether the effect ignores turn decay
func (e *PassiveEffect) Permanent() bool {
	return e.Duration >= PermanentDuration
}

// Valid checks that the payload matches the kind
func (e *PassiveEffect) Valid() bool {
	set := 0
	for _, ok := range []bool{e.Regen != nil, e.Immunity != nil, e.Reflect != nil, e.Weaken != nil, e.Revive != nil} {
		if ok {
			set++
		}
	}
	if set != 1 {
		return false
	}
	switch e.Kind {
	case EffectRegen:
		return e.Regen != nil
	case EffectImmunity:
		return e.Immunity != nil
	case EffectReflect:
		return e.Reflect != nil
	case EffectWeaken:
		return e.Weaken != nil
	case EffectRevive:
		return e.Revive != nil
	}
	return false
}
