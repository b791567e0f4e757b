package persona

import "strings"

// Config captures the attributes a creator fills in to design their AI friend.
// It is replaced wholesale on edit, never mutated field by field.
type Config struct {
	BotName     string `json:"botName"`
	CreatorName string `json:"creatorName"`
	Personality string `json:"personality"`
	Specialty   string `json:"specialty"`
}

// Complete reports whether every field carries a non-blank value.
func (c Config) Complete() bool {
	return len(c.MissingFields()) == 0
}

// MissingFields returns the JSON names of fields that are empty or
// whitespace-only, for boundary validation messages.
func (c Config) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(c.BotName) == "" {
		missing = append(missing, "botName")
	}
	if strings.TrimSpace(c.CreatorName) == "" {
		missing = append(missing, "creatorName")
	}
	if strings.TrimSpace(c.Personality) == "" {
		missing = append(missing, "personality")
	}
	if strings.TrimSpace(c.Specialty) == "" {
		missing = append(missing, "specialty")
	}
	return missing
}
