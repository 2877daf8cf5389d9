package model

// CardPassive tags cards whose effect goes beyond a plain heal or damage
type CardPassive string

const (
	PassiveNone        CardPassive = ""
	PassiveRegen       CardPassive = "regen"
	PassiveImmunity    CardPassive = "immunity"
	PassiveReflect     CardPassive = "reflect"
	PassiveWeaken      CardPassive = "weaken"
	PassiveRevive      CardPassive = "revive"
	PassiveLowHPDamage CardPassive = "low-hp-damage"
	PassiveLowHPHeal   CardPassive = "low-hp-heal"
	PassiveExtraDraw   CardPassive = "extra-draw"
	PassiveCopy        CardPassive = "copy"
	PassiveChoice      CardPassive = "choice"
	PassiveReveal      CardPassive = "reveal"
)

// Card is one drawn instance; ids are unique per draw
type Card struct {
	ID            string      `json:"id"`
	Type          string      `json:"type"`
	Name          string      `json:"name"`
	Value         int         `json:"value"` // signed HP delta
	Description   string      `json:"description"`
	Icon          string      `json:"icon"`
	Passive       CardPassive `json:"passive,omitempty"`
	Question      string      `json:"question"`
	CorrectAnswer string      `json:"correctAnswer,omitempty"`
	Options       []string    `json:"options,omitempty"`
	AttemptCount  int         `json:"attemptCount,omitempty"`
}

// Redacted strips the answer so the card can be shown to clients
func (c Card) Redacted() Card {
	c.CorrectAnswer = ""
	if c.Options != nil {
		c.Options = append([]string(nil), c.Options...)
	}
	return c
}

// CardDefinition is the static template a card type is generated from
type CardDefinition struct {
	Type         string      `json:"type"`
	Name         string      `json:"name"`
	Value        int         `json:"value"`
	Description  string      `json:"description"`
	Icon         string      `json:"icon"`
	Passive      CardPassive `json:"passive,omitempty"`
	QuestionPool string      `json:"questionPool"`
	Weight       int         `json:"weight"` // relative draw frequency
}
