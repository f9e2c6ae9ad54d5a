package products

type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Images      []string  `json:"images"`
	Image       string    `json:"image,omitempty"`
	Description string    `json:"description,omitempty"`
	FilterIDs   []string  `json:"filterIds"`
	Tags        []string  `json:"tags"`
	Sizes       []string  `json:"sizes"`
	Colors      []Color   `json:"colors"`
	Details     Details   `json:"details"`
	Variants    []Variant `json:"variants"`
}

type Color struct {
	Name   string   `json:"name"`
	Value  string   `json:"value"`
	Label  string   `json:"label"`
	Images []string `json:"images,omitempty"`
	Sizes  []string `json:"sizes,omitempty"`
}

type Details struct {
	Material        string `json:"material,omitempty"`
	Characteristics string `json:"characteristics,omitempty"`
	Article         string `json:"article,omitempty"`
}

type Variant struct {
	ID        string   `json:"id"`
	Size      string   `json:"size,omitempty"`
	ColorName string   `json:"colorName,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	SKU       string   `json:"sku,omitempty"`
	Images    []string `json:"images,omitempty"`
}
