package projects

type Type string

const (
	TypePortfolio Type = "portfolio"
	TypePromo     Type = "promo"
)

type Project struct {
	ID    string  `json:"id"`
	Type  Type    `json:"type"`
	Title *string `json:"title,omitempty"`
	Image *string `json:"image,omitempty"`
	Text  *string `json:"text,omitempty"`
	Order int     `json:"order"`
}

// Patch is a partial update; nil fields keep the stored value.
type Patch struct {
	Type  Type
	Title *string
	Image *string
	Text  *string
	Order *int
}
