package sheet

// RestType names the rest that restores a limited-use feature.
type RestType string

const (
	RestShort RestType = "short"
	RestLong  RestType = "long"
)

// ParseRestType validates a rest type.
func ParseRestType(s string) (RestType, bool) {
	switch RestType(s) {
	case RestShort, RestLong:
		return RestType(s), true
	}
	return "", false
}

// Restores reports whether taking rest r refills a feature that recharges on t.
// A long rest refills everything; a short rest only short-rest features.
func (r RestType) Restores(t RestType) bool {
	return r == RestLong || t == RestShort
}

// Uses is a per-rest usage quota.
type Uses struct {
	Max     int      `json:"max"`
	Current int      `json:"current"`
	Rest    RestType `json:"rest_type"`
}

// Feature is a class, race, or homebrew feature.
type Feature struct {
	ID          string `json:"id"`
	CharacterID string `json:"character_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Level       int    `json:"level"`
	Uses        *Uses  `json:"uses_per_rest,omitempty"`
	IsCustom    bool   `json:"is_custom"`
}

// Trait is a racial or background trait.
type Trait struct {
	ID          string `json:"id"`
	CharacterID string `json:"character_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Source      string `json:"source"`
	IsCustom    bool   `json:"is_custom"`
}

// Currency is a coin denomination.
type Currency string

const (
	Copper   Currency = "cp"
	Silver   Currency = "sp"
	Gold     Currency = "gp"
	Platinum Currency = "pp"
)

// ParseCurrency validates a currency unit.
func ParseCurrency(s string) (Currency, bool) {
	switch Currency(s) {
	case Copper, Silver, Gold, Platinum:
		return Currency(s), true
	}
	return "", false
}

// Value is a monetary amount.
type Value struct {
	Amount   float64  `json:"amount"`
	Currency Currency `json:"currency"`
}

// Category classifies an inventory item.
type Category string

const (
	CategoryWeapon     Category = "weapon"
	CategoryArmor      Category = "armor"
	CategoryTool       Category = "tool"
	CategoryConsumable Category = "consumable"
	CategoryMisc       Category = "misc"
)

// ParseCategory validates an item category.
func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryWeapon, CategoryArmor, CategoryTool, CategoryConsumable, CategoryMisc:
		return Category(s), true
	}
	return "", false
}

// InventoryItem is a carried item.
type InventoryItem struct {
	ID          string   `json:"id"`
	CharacterID string   `json:"character_id"`
	Name        string   `json:"name"`
	Quantity    int      `json:"quantity"`
	Weight      float64  `json:"weight"`
	Value       Value    `json:"value"`
	Description *string  `json:"description,omitempty"`
	Equipped    bool     `json:"equipped"`
	Category    Category `json:"category"`
	Properties  []string `json:"properties,omitempty"`
	IsCustom    bool     `json:"is_custom"`
}

// TotalWeight returns the combined weight of all items, counting quantity.
func TotalWeight(items []InventoryItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Weight * float64(it.Quantity)
	}
	return total
}
