package catalog

import "cardclash/internal/model"

// Question pools
const (
	PoolEasy   = "easy"
	PoolMedium = "medium"
	PoolHard   = "hard"
)

// Card types
const (
	CardHeal       = "heal"
	CardElixir     = "elixir"
	CardStrike     = "strike"
	CardFireball   = "fireball"
	CardRegen      = "regen"
	CardShield     = "shield"
	CardMirror     = "mirror"
	CardHex        = "hex"
	CardPhoenix    = "phoenix"
	CardLastStand  = "last-stand"
	CardSecondWind = "second-wind"
	CardScholar    = "scholar"
	CardEcho       = "echo"
	CardGamble     = "gamble"
	CardSpyglass   = "spyglass"
)

var definitions = []model.CardDefinition{
	{Type: CardHeal, Name: "Heal", Value: 15, Icon: "heart", QuestionPool: PoolEasy, Weight: 14,
		Description: "Restore 15 HP."},
	{Type: CardElixir, Name: "Elixir", Value: 30, Icon: "flask", QuestionPool: PoolHard, Weight: 5,
		Description: "Restore 30 HP."},
	{Type: CardStrike, Name: "Strike", Value: -20, Icon: "sword", QuestionPool: PoolEasy, Weight: 16,
		Description: "Deal 20 damage."},
	{Type: CardFireball, Name: "Fireball", Value: -30, Icon: "fire", QuestionPool: PoolHard, Weight: 6,
		Description: "Deal 30 damage."},
	{Type: CardRegen, Name: "Regeneration", Value: 5, Passive: model.PassiveRegen, Icon: "leaf", QuestionPool: PoolMedium, Weight: 6,
		Description: "Restore 5 HP, then 5 HP every turn for 3 turns."},
	{Type: CardShield, Name: "Shield", Value: 0, Passive: model.PassiveImmunity, Icon: "shield", QuestionPool: PoolMedium, Weight: 6,
		Description: "Block the next hit completely, then halve damage while it lasts."},
	{Type: CardMirror, Name: "Mirror", Value: 0, Passive: model.PassiveReflect, Icon: "mirror", QuestionPool: PoolMedium, Weight: 5,
		Description: "Reflect half of incoming damage for 2 turns."},
	{Type: CardHex, Name: "Hex", Value: -10, Passive: model.PassiveWeaken, Icon: "skull", QuestionPool: PoolMedium, Weight: 6,
		Description: "Deal 10 damage and make the opponent take 5 extra damage from your next attack."},
	{Type: CardPhoenix, Name: "Phoenix", Value: 0, Passive: model.PassiveRevive, Icon: "phoenix", QuestionPool: PoolHard, Weight: 2,
		Description: "If you fall, rise again once with 30 HP."},
	{Type: CardLastStand, Name: "Last Stand", Value: -15, Passive: model.PassiveLowHPDamage, Icon: "axe", QuestionPool: PoolMedium, Weight: 5,
		Description: "Deal 15 damage, or 30 if you are at 30 HP or less."},
	{Type: CardSecondWind, Name: "Second Wind", Value: 10, Passive: model.PassiveLowHPHeal, Icon: "wind", QuestionPool: PoolMedium, Weight: 5,
		Description: "Restore 10 HP, or 25 if you are at 40 HP or less."},
	{Type: CardScholar, Name: "Scholar", Value: 0, Passive: model.PassiveExtraDraw, Icon: "book", QuestionPool: PoolEasy, Weight: 6,
		Description: "Draw an extra card."},
	{Type: CardEcho, Name: "Echo", Value: 0, Passive: model.PassiveCopy, Icon: "echo", QuestionPool: PoolHard, Weight: 4,
		Description: "Repeat the last card played this game."},
	{Type: CardGamble, Name: "Gamble", Value: 0, Passive: model.PassiveChoice, Icon: "dice", QuestionPool: PoolMedium, Weight: 5,
		Description: "Choose: restore 20 HP, deal 20 damage, or draw a card."},
	{Type: CardSpyglass, Name: "Spyglass", Value: 0, Passive: model.PassiveReveal, Icon: "eye", QuestionPool: PoolEasy, Weight: 4,
		Description: "Look at your opponent's hand."},
}

// Tuning for passive cards
const (
	RegenAmount   = 5
	RegenDuration = 3

	ShieldDuration     = 4
	ShieldReductionPct = 50

	MirrorDuration   = 2
	MirrorMultiplier = 0.5

	HexDuration = 3
	HexBonus    = 5

	PhoenixHealth = 30

	LastStandThreshold = 30
	LastStandBonus     = 15

	SecondWindThreshold = 40
	SecondWindBonus     = 15

	GambleAmount = 20
)
