package entity

type MenuItem struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Category    string `json:"category" db:"category"`
	PriceCents  int64  `json:"price_cents" db:"price_cents"`
	IsAvailable bool   `json:"is_available" db:"is_available"`
	Sort        int    `json:"sort" db:"sort"`
	ImageURL    string `json:"image_url" db:"image_url"`
}
