package codes

import (
	"encoding/json"
	"strings"
)

// Category is the closed set of purchase line categories.
type Category string

const (
	CategoryMobile    Category = "mobile"
	CategoryAccessory Category = "accessory"
	CategoryOther     Category = "other"
)

// ParseCategory normalizes free-form text. Unknown values map to CategoryOther.
func ParseCategory(text string) Category {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "mobile", "mobiles":
		return CategoryMobile
	case "accessory", "accessories":
		return CategoryAccessory
	default:
		return CategoryOther
	}
}

// Code returns the three-letter category fragment of a unit identifier.
func (c Category) Code() string {
	switch c {
	case CategoryMobile:
		return "MOB"
	case CategoryAccessory:
		return "ACC"
	default:
		return "OTH"
	}
}

// HasInventoryEffect reports whether receiving a line of this category changes stock.
func (c Category) HasInventoryEffect() bool {
	return c == CategoryMobile || c == CategoryAccessory
}

// UnmarshalJSON accepts any spelling handled by ParseCategory.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = ParseCategory(s)
	return nil
}
