package collections

type Collection struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Sections    []Section `json:"sections"`
	Slug        string    `json:"slug"`
	Image       string    `json:"image,omitempty"`
}

type Section struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	ProductIDs []string `json:"productIds"`
}

// Patch holds the fields of a partial update. Empty values keep the
// stored ones.
type Patch struct {
	Title       string
	Description string
	Sections    []Section
	Slug        string
	Image       string
}
