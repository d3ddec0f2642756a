package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/tome/internal/db"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/sheet"
)

// AddItemInput contains parameters for the AddItem operation.
type AddItemInput struct {
	CharacterID string
	Name        string
	Quantity    int     // default: 1
	Weight      float64 // per unit, in pounds
	ValueAmount float64
	Currency    string // cp, sp, gp, pp; default: gp
	Category    string // weapon, armor, tool, consumable, misc; default: misc
	Description *string
	Properties  []string
	Equipped    bool
}

// AddItem adds a custom item to a character's inventory.
func AddItem(ctx context.Context, database *sql.DB, input AddItemInput) (*sheet.InventoryItem, error) {
	characterID, err := requireID("character_id", input.CharacterID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("item name is required")
	}

	quantity := input.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, errors.NewInvalidRequest("quantity must be at least 1")
	}
	if input.Weight < 0 {
		return nil, errors.NewInvalidRequest("weight cannot be negative")
	}
	if input.ValueAmount < 0 {
		return nil, errors.NewInvalidRequest("value cannot be negative")
	}

	currency := sheet.Gold
	if c := strings.ToLower(strings.TrimSpace(input.Currency)); c != "" {
		var ok bool
		if currency, ok = sheet.ParseCurrency(c); !ok {
			return nil, errors.NewInvalidRequest("currency must be one of: cp, sp, gp, pp")
		}
	}
	category := sheet.CategoryMisc
	if c := strings.ToLower(strings.TrimSpace(input.Category)); c != "" {
		var ok bool
		if category, ok = sheet.ParseCategory(c); !ok {
			return nil, errors.NewInvalidRequest("category must be one of: weapon, armor, tool, consumable, misc")
		}
	}

	var props []string
	for _, p := range input.Properties {
		if p = strings.TrimSpace(p); p != "" {
			props = append(props, p)
		}
	}

	it := sheet.InventoryItem{
		CharacterID: characterID,
		Name:        name,
		Quantity:    quantity,
		Weight:      input.Weight,
		Value:       sheet.Value{Amount: input.ValueAmount, Currency: currency},
		Description: input.Description,
		Equipped:    input.Equipped,
		Category:    category,
		Properties:  props,
		IsCustom:    true,
	}
	if it.ID, err = generateULID(); err != nil {
		return nil, errors.NewInternal(err)
	}

	err = withTx(ctx, database, func(tx *sql.Tx) error {
		if err := db.InsertItem(ctx, tx, &it); err != nil {
			return err
		}
		return db.TouchCharacter(ctx, tx, characterID, nowUnix())
	})
	if err != nil {
		return nil, failed("add item", err)
	}
	return &it, nil
}

// SetEquipped marks an item as equipped or not.
func SetEquipped(ctx context.Context, database *sql.DB, itemID string, equipped bool) (*sheet.InventoryItem, error) {
	itemID, err := requireID("item_id", itemID)
	if err != nil {
		return nil, err
	}

	var it *sheet.InventoryItem
	err = withTx(ctx, database, func(tx *sql.Tx) error {
		var err error
		it, err = db.GetItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		it.Equipped = equipped
		if err := db.SetItemEquipped(ctx, tx, it.ID, equipped); err != nil {
			return err
		}
		return db.TouchCharacter(ctx, tx, it.CharacterID, nowUnix())
	})
	if err != nil {
		return nil, failed("update item", err)
	}
	return it, nil
}

// RemoveItem deletes an inventory item. Removing an unknown ID is not an error.
func RemoveItem(ctx context.Context, database *sql.DB, itemID string) (*DeleteOutput, error) {
	return removeChild(ctx, database, "item_id", itemID, "remove item",
		func(ctx context.Context, q db.Querier, id string) (string, error) {
			it, err := db.GetItem(ctx, q, id)
			if err != nil {
				return "", err
			}
			return it.CharacterID, nil
		},
		db.DeleteItem,
	)
}
