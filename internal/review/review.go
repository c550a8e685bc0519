package review

// Source identifies the platform a review was collected from.
type Source string

const (
	SourceIMDb       Source = "imdb"
	SourceSteam      Source = "steam"
	SourceMetacritic Source = "metacritic"
)

// Raw is a review as delivered by a scraper, before any cleaning.
type Raw struct {
	Text   string   `json:"text"`
	Rating *float64 `json:"rating,omitempty"`
	Author string   `json:"author,omitempty"`
	Source Source   `json:"source"`
}

// Filtered is a Raw review that passed every filter rule: its text is
// non-duplicate, within the configured length bounds, free of spam
// patterns, and not dominated by a single repeated token.
type Filtered struct {
	Text   string
	Rating *float64
	Source Source
}
