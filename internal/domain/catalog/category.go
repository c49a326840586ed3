// Package catalog holds the product-side domain model: canonical garment
// categories and the candidate rows returned by the vector index.
package catalog

import "strings"

// Category is a canonical garment category.
type Category string

// The closed set of canonical categories. Anything the index returns that
// does not map onto one of these normalizes to Other.
const (
	Dress     Category = "dress"
	Top       Category = "top"
	Skirt     Category = "skirt"
	Pants     Category = "pants"
	Shorts    Category = "shorts"
	Outerwear Category = "outerwear"
	Shoes     Category = "shoes"
	Bag       Category = "bag"
	Belt      Category = "belt"
	Accessory Category = "accessory"
	Other     Category = "other"
)

// Categories lists every canonical category in display order.
func Categories() []Category {
	return []Category{
		Dress, Top, Skirt, Pants, Shorts, Outerwear,
		Shoes, Bag, Belt, Accessory, Other,
	}
}

// IsValid checks if the category is one of the canonical values.
func (c Category) IsValid() bool {
	switch c {
	case Dress, Top, Skirt, Pants, Shorts, Outerwear, Shoes, Bag, Belt, Accessory, Other:
		return true
	}
	return false
}

// categorySynonyms maps catalog free-text labels onto canonical categories.
var categorySynonyms = map[string]Category{
	"dresses":     Dress,
	"gown":        Dress,
	"tops":        Top,
	"shirt":       Top,
	"shirts":      Top,
	"blouse":      Top,
	"t-shirt":     Top,
	"tee":         Top,
	"sweater":     Top,
	"knitwear":    Top,
	"skirts":      Skirt,
	"bottom":      Pants,
	"bottoms":     Pants,
	"trousers":    Pants,
	"jeans":       Pants,
	"denim":       Pants,
	"leggings":    Pants,
	"short":       Shorts,
	"jacket":      Outerwear,
	"jackets":     Outerwear,
	"coat":        Outerwear,
	"coats":       Outerwear,
	"blazer":      Outerwear,
	"cardigan":    Outerwear,
	"shoe":        Shoes,
	"footwear":    Shoes,
	"sneakers":    Shoes,
	"boots":       Shoes,
	"heels":       Shoes,
	"sandals":     Shoes,
	"bags":        Bag,
	"handbag":     Bag,
	"handbags":    Bag,
	"purse":       Bag,
	"tote":        Bag,
	"clutch":      Bag,
	"belts":       Belt,
	"accessories": Accessory,
	"jewelry":     Accessory,
	"jewellery":   Accessory,
	"hat":         Accessory,
	"hats":        Accessory,
	"scarf":       Accessory,
	"scarves":     Accessory,
	"sunglasses":  Accessory,
}

// NormalizeCategory maps a free-text catalog label to a canonical Category.
// Total and idempotent: canonical values map to themselves, anything
// unrecognized (including the empty string) maps to Other.
func NormalizeCategory(raw string) Category {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	if cleaned == "" {
		return Other
	}
	if c, ok := categorySynonyms[cleaned]; ok {
		return c
	}
	if c := Category(cleaned); c.IsValid() {
		return c
	}
	return Other
}
