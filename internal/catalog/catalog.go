package catalog

import (
	"cardclash/internal/model"
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

//go:embed questions.json
var defaultQuestions []byte

// DefaultQuestions returns the built-in question pools
func DefaultQuestions() ([]model.Question, error) {
	var qs []model.Question
	if err := json.Unmarshal(defaultQuestions, &qs); err != nil {
		return nil, fmt.Errorf("parse built-in questions: %w", err)
	}
	return qs, nil
}

// Catalog holds card definitions and question pools and mints card instances
type Catalog struct {
	defs        map[string]model.CardDefinition
	order       []string
	totalWeight int
	pools       map[string][]model.Question

	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a catalog. Every pool referenced by a card definition must have
// at least one question.
func New(questions []model.Question, rng *rand.Rand) (*Catalog, error) {
	c := &Catalog{
		defs:  make(map[string]model.CardDefinition, len(definitions)),
		pools: make(map[string][]model.Question),
		rng:   rng,
	}
	for _, d := range definitions {
		c.defs[d.Type] = d
		c.order = append(c.order, d.Type)
		c.totalWeight += d.Weight
	}
	for _, q := range questions {
		if strings.TrimSpace(q.Answer) == "" {
			continue
		}
		c.pools[q.Pool] = append(c.pools[q.Pool], q)
	}
	for _, d := range definitions {
		if len(c.pools[d.QuestionPool]) == 0 {
			return nil, fmt.Errorf("question pool %q for card %q is empty", d.QuestionPool, d.Type)
		}
	}
	return c, nil
}

// Definition looks up a card type
func (c *Catalog) Definition(cardType string) (model.CardDefinition, bool) {
	d, ok := c.defs[cardType]
	return d, ok
}

// Definitions lists every card type in table order
func (c *Catalog) Definitions() []model.CardDefinition {
	out := make([]model.CardDefinition, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, c.defs[t])
	}
	return out
}

// QuestionPool returns a copy of the named pool
func (c *Catalog) QuestionPool(pool string) []model.Question {
	return append([]model.Question(nil), c.pools[pool]...)
}

// PoolSizes reports how many questions each pool holds
func (c *Catalog) PoolSizes() map[string]int {
	out := make(map[string]int, len(c.pools))
	for name, qs := range c.pools {
		out[name] = len(qs)
	}
	return out
}

// NewCard mints a fresh instance of the given type with a random question
func (c *Catalog) NewCard(cardType string) (model.Card, error) {
	def, ok := c.defs[cardType]
	if !ok {
		return model.Card{}, fmt.Errorf("unknown card type %q", cardType)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mint(def), nil
}

// RandomCard mints a card of a weighted random type
func (c *Catalog) RandomCard() model.Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.rng.Intn(c.totalWeight)
	for _, t := range c.order {
		d := c.defs[t]
		if n < d.Weight {
			return c.mint(d)
		}
		n -= d.Weight
	}
	return c.mint(c.defs[c.order[len(c.order)-1]])
}

// Hand deals n random cards
func (c *Catalog) Hand(n int) []model.Card {
	cards := make([]model.Card, 0, n)
	for i := 0; i < n; i++ {
		cards = append(cards, c.RandomCard())
	}
	return cards
}

// mint must be called with mu held
func (c *Catalog) mint(def model.CardDefinition) model.Card {
	pool := c.pools[def.QuestionPool]
	q := pool[c.rng.Intn(len(pool))]
	var options []string
	if len(q.Options) > 0 {
		options = append([]string(nil), q.Options...)
		c.rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	}
	return model.Card{
		ID:            uuid.NewString(),
		Type:          def.Type,
		Name:          def.Name,
		Value:         def.Value,
		Description:   def.Description,
		Icon:          def.Icon,
		Passive:       def.Passive,
		Question:      q.Prompt,
		CorrectAnswer: q.Answer,
		Options:       options,
	}
}

// Types returns the known card types sorted by name
func (c *Catalog) Types() []string {
	out := append([]string(nil), c.order...)
	sort.Strings(out)
	return out
}
