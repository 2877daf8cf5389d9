package catalog

import (
	"cardclash/internal/model"
	"math/rand"
	"testing"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	qs, err := DefaultQuestions()
	if err != nil {
		t.Fatal(err)
	}
	c, err := New(qs, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestDefaultQuestionsCoverEveryPool(t *testing.T) {
	c := newTestCatalog(t)
	for _, pool := range []string{PoolEasy, PoolMedium, PoolHard} {
		if len(c.QuestionPool(pool)) == 0 {
			t.Errorf("pool %s is empty", pool)
		}
	}
}

func TestNewCardCopiesDefinition(t *testing.T) {
	c := newTestCatalog(t)
	tests := []struct {
		cardType string
		value    int
		passive  model.CardPassive
	}{
		{CardHeal, 15, model.PassiveNone},
		{CardFireball, -30, model.PassiveNone},
		{CardShield, 0, model.PassiveImmunity},
		{CardHex, -10, model.PassiveWeaken},
		{CardGamble, 0, model.PassiveChoice},
	}
	for _, tt := range tests {
		t.Run(tt.cardType, func(t *testing.T) {
			card, err := c.NewCard(tt.cardType)
			if err != nil {
				t.Fatal(err)
			}
			if card.Type != tt.cardType || card.Value != tt.value || card.Passive != tt.passive {
				t.Fatalf("unexpected card %+v", card)
			}
			if card.ID == "" || card.Question == "" || card.CorrectAnswer == "" {
				t.Fatalf("card missing id or question: %+v", card)
			}
		})
	}
}

func TestNewCardUnknownType(t *testing.T) {
	c := newTestCatalog(t)
	if _, err := c.NewCard("nope"); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestCardIDsAreUnique(t *testing.T) {
	c := newTestCatalog(t)
	seen := make(map[string]bool)
	for _, card := range c.Hand(200) {
		if seen[card.ID] {
			t.Fatalf("duplicate card id %s", card.ID)
		}
		seen[card.ID] = true
		if _, ok := c.Definition(card.Type); !ok {
			t.Fatalf("random card has unknown type %q", card.Type)
		}
	}
}

func TestOptionsContainAnswer(t *testing.T) {
	c := newTestCatalog(t)
	for _, card := range c.Hand(100) {
		if len(card.Options) == 0 {
			continue
		}
		found := false
		for _, o := range card.Options {
			if o == card.CorrectAnswer {
				found = true
			}
		}
		if !found {
			t.Fatalf("options %v do not include answer %q", card.Options, card.CorrectAnswer)
		}
	}
}

func TestNewRejectsMissingPool(t *testing.T) {
	qs := []model.Question{{ID: "1", Pool: PoolEasy, Prompt: "1+1?", Answer: "2"}}
	if _, err := New(qs, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("expected error when medium and hard pools are empty")
	}
}
