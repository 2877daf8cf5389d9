package model

// Question is one trivia prompt in a pool
type Question struct {
	ID       string   `json:"id" bson:"_id,omitempty"`
	Pool     string   `json:"pool" bson:"pool"` // e.g. "easy", "medium", "hard"
	Prompt   string   `json:"prompt" bson:"prompt"`
	Answer   string   `json:"answer" bson:"answer"`
	Options  []string `json:"options,omitempty" bson:"options,omitempty"` // multiple choice only
	Category string   `json:"category,omitempty" bson:"category,omitempty"`
}
