package domain

import "fmt"

type Cuisine string

const (
	CuisineJapanese Cuisine = "japanese"
	CuisineItalian  Cuisine = "italian"
	CuisineGeneral  Cuisine = "general"
)

func Cuisines() []Cuisine {
	return []Cuisine{CuisineJapanese, CuisineItalian, CuisineGeneral}
}

func ParseCuisine(s string) (Cuisine, error) {
	for _, c := range Cuisines() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown cuisine %q", s)
}

// MenuItem is a purchasable catalog entry. Price is in the minor currency
// unit and never negative.
type MenuItem struct {
	ID          int
	Name        string
	Price       int64
	Description string
	Cuisine     Cuisine
	Available   bool
}

// DefaultMenu is the catalog seeded by the menu initialization action.
func DefaultMenu() []MenuItem {
	return []MenuItem{
		{Name: "Sushi Platter", Price: 380, Description: "Fresh sashimi sushi with wasabi and ginger", Cuisine: CuisineJapanese, Available: true},
		{Name: "Margherita Pizza", Price: 320, Description: "Classic Italian pizza with fresh mozzarella and basil", Cuisine: CuisineItalian, Available: true},
		{Name: "Burger Combo", Price: 250, Description: "Beef burger with crispy fries and coleslaw", Cuisine: CuisineGeneral, Available: true},
		{Name: "Chicken Teriyaki", Price: 280, Description: "Grilled chicken with teriyaki sauce and steamed rice", Cuisine: CuisineJapanese, Available: true},
		{Name: "Pasta Carbonara", Price: 290, Description: "Creamy pasta with bacon, eggs, and parmesan cheese", Cuisine: CuisineItalian, Available: true},
	}
}
