package themes

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keyword is a weighted match term within a theme.
type Keyword struct {
	Term   string  `yaml:"term"`
	Weight float64 `yaml:"weight"`
}

// Theme maps a narrative theme name to its weighted keywords.
type Theme struct {
	Name     string    `yaml:"name"`
	Keywords []Keyword `yaml:"keywords"`
}

// Vocabulary is the read-only theme registry. It is built once at
// process start and shared by every request; declaration order is
// preserved and used to break ranking ties.
type Vocabulary struct {
	themes []Theme
	terms  []string
}

// Load reads a vocabulary from a YAML file. An empty path yields the
// compiled-in default vocabulary.
func Load(path string) (*Vocabulary, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}

	var wrapper struct {
		Themes []Theme `yaml:"themes"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}

	return New(wrapper.Themes)
}

// New validates the theme table and builds the registry.
func New(entries []Theme) (*Vocabulary, error) {
	if len(entries) == 0 {
		return nil, errors.New("vocabulary has no themes")
	}

	seen := make(map[string]struct{}, len(entries))
	termSet := make(map[string]struct{})
	var terms []string

	for _, th := range entries {
		name := strings.TrimSpace(th.Name)
		if name == "" {
			return nil, errors.New("vocabulary theme with empty name")
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate theme %q", name)
		}
		seen[name] = struct{}{}

		if len(th.Keywords) == 0 {
			return nil, fmt.Errorf("theme %q has no keywords", name)
		}
		for _, kw := range th.Keywords {
			if strings.TrimSpace(kw.Term) == "" {
				return nil, fmt.Errorf("theme %q has an empty keyword", name)
			}
			if kw.Weight <= 0 {
				return nil, fmt.Errorf("theme %q keyword %q has non-positive weight %g", name, kw.Term, kw.Weight)
			}
			if _, dup := termSet[kw.Term]; !dup {
				termSet[kw.Term] = struct{}{}
				terms = append(terms, strings.ToLower(kw.Term))
			}
		}
	}

	return &Vocabulary{themes: entries, terms: terms}, nil
}

// Themes returns the registry entries in declaration order.
func (v *Vocabulary) Themes() []Theme { return v.themes }

// Len reports the number of registered themes.
func (v *Vocabulary) Len() int { return len(v.themes) }

// Terms returns every distinct keyword term across all themes,
// lowercased, for sentence-level keyword matching.
func (v *Vocabulary) Terms() []string { return v.terms }

// Default returns the stock twenty-theme vocabulary. The leading
// keyword of each theme is the theme's core term and carries full
// weight; supporting terms are discounted.
func Default() *Vocabulary {
	v, err := New(defaultThemes())
	if err != nil {
		// The table below is static; failing here is a programming error.
		panic(err)
	}
	return v
}

func defaultThemes() []Theme {
	kw := func(pairs ...any) []Keyword {
		out := make([]Keyword, 0, len(pairs)/2)
		for i := 0; i+1 < len(pairs); i += 2 {
			out = append(out, Keyword{Term: pairs[i].(string), Weight: pairs[i+1].(float64)})
		}
		return out
	}

	return []Theme{
		{Name: "character_development", Keywords: kw("character", 1.0, "protagonist", 0.8, "development", 0.8, "growth", 0.6, "arc", 0.6, "personality", 0.6)},
		{Name: "moral_complexity", Keywords: kw("moral", 1.0, "ethics", 0.8, "dilemma", 0.8, "choice", 0.6, "consequence", 0.6, "right and wrong", 0.6)},
		{Name: "world_building", Keywords: kw("world", 1.0, "universe", 0.8, "lore", 0.8, "setting", 0.6, "environment", 0.6, "immersive", 0.8)},
		{Name: "storytelling", Keywords: kw("story", 1.0, "narrative", 0.8, "tale", 0.6, "storytelling", 1.0, "writing", 0.6)},
		{Name: "plot_twists", Keywords: kw("twist", 1.0, "surprise", 0.8, "unexpected", 0.8, "reveal", 0.6, "shocking", 0.6)},
		{Name: "emotional_depth", Keywords: kw("emotional", 1.0, "feeling", 0.6, "heart", 0.6, "touching", 0.8, "moving", 0.8, "poignant", 0.8)},
		{Name: "philosophy", Keywords: kw("philosophy", 1.0, "philosophical", 1.0, "existential", 0.8, "meaning", 0.6, "thought-provoking", 0.8)},
		{Name: "exploration", Keywords: kw("explore", 1.0, "exploration", 1.0, "discovery", 0.8, "freedom", 0.6, "adventure", 0.8)},
		{Name: "mystery", Keywords: kw("mystery", 1.0, "mysterious", 0.8, "suspense", 0.8, "intrigue", 0.6, "puzzle", 0.6, "enigma", 0.6)},
		{Name: "humor", Keywords: kw("funny", 1.0, "humor", 1.0, "comedy", 0.8, "laugh", 0.6, "hilarious", 0.8, "witty", 0.8)},
		{Name: "visual_effects", Keywords: kw("visual", 1.0, "graphics", 0.8, "cinematography", 0.8, "effects", 0.6, "stunning", 0.6, "beautiful", 0.6)},
		{Name: "pacing", Keywords: kw("pacing", 1.0, "pace", 0.8, "rhythm", 0.6, "tempo", 0.6, "drags", 0.6)},
		{Name: "dialogue", Keywords: kw("dialogue", 1.0, "conversation", 0.6, "script", 0.8, "lines", 0.6, "banter", 0.6)},
		{Name: "atmosphere", Keywords: kw("atmosphere", 1.0, "mood", 0.8, "tone", 0.6, "ambiance", 0.8, "vibe", 0.6)},
		{Name: "innovation", Keywords: kw("innovative", 1.0, "original", 0.8, "unique", 0.8, "fresh", 0.6, "creative", 0.6)},
		{Name: "nostalgia", Keywords: kw("nostalgia", 1.0, "nostalgic", 1.0, "classic", 0.6, "retro", 0.8, "throwback", 0.8)},
		{Name: "action", Keywords: kw("action", 1.0, "combat", 0.8, "fight", 0.6, "battle", 0.6, "intense", 0.6, "adrenaline", 0.8)},
		{Name: "romance", Keywords: kw("romance", 1.0, "romantic", 1.0, "love story", 0.8, "relationship", 0.6, "chemistry", 0.8)},
		{Name: "horror", Keywords: kw("horror", 1.0, "scary", 0.8, "frightening", 0.8, "terror", 0.8, "creepy", 0.6, "disturbing", 0.6)},
		{Name: "drama", Keywords: kw("drama", 1.0, "dramatic", 0.8, "tension", 0.6, "conflict", 0.6, "serious", 0.6)},
	}
}
