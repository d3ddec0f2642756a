package db

import (
	"context"
	"testing"

	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/sheet"
)

func TestFeatures(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	if err := InsertCharacter(ctx, database, newTestCharacter("01C", "C", 1)); err != nil {
		t.Fatal(err)
	}

	limited := &sheet.Feature{
		ID: "01F1", CharacterID: "01C", Name: "Second Wind", Description: "heal",
		Source: "Fighter", Level: 1,
		Uses: &sheet.Uses{Max: 1, Current: 0, Rest: sheet.RestShort},
	}
	rage := &sheet.Feature{
		ID: "01F2", CharacterID: "01C", Name: "Rage", Description: "angry",
		Source: "Barbarian", Level: 1,
		Uses: &sheet.Uses{Max: 2, Current: 0, Rest: sheet.RestLong},
	}
	passive := &sheet.Feature{ID: "01F3", CharacterID: "01C", Name: "Darkvision", Description: "see", Source: "Dwarf", Level: 1}
	for _, f := range []*sheet.Feature{limited, rage, passive} {
		if err := InsertFeature(ctx, database, f); err != nil {
			t.Fatalf("InsertFeature %s: %v", f.Name, err)
		}
	}

	got, err := ListFeatures(ctx, database, "01C")
	if err != nil {
		t.Fatalf("ListFeatures: %v", err)
	}
	if len(got) != 3 || got[0].Name != "Second Wind" || got[2].Name != "Darkvision" {
		t.Fatalf("ListFeatures = %+v", got)
	}
	if got[2].Uses != nil {
		t.Errorf("passive feature Uses = %+v, want nil", got[2].Uses)
	}
	if got[1].Uses == nil || got[1].Uses.Rest != sheet.RestLong {
		t.Errorf("rage Uses = %+v", got[1].Uses)
	}

	n, err := RestoreFeatureUses(ctx, database, "01C", []sheet.RestType{sheet.RestShort})
	if err != nil || n != 1 {
		t.Errorf("short rest restored = %d, %v; want 1", n, err)
	}
	f, _ := GetFeature(ctx, database, "01F2")
	if f.Uses.Current != 0 {
		t.Errorf("rage after short rest = %d, want 0", f.Uses.Current)
	}

	n, err = RestoreFeatureUses(ctx, database, "01C", []sheet.RestType{sheet.RestShort, sheet.RestLong})
	if err != nil || n != 2 {
		t.Errorf("long rest restored = %d, %v; want 2", n, err)
	}
	f, _ = GetFeature(ctx, database, "01F2")
	if f.Uses.Current != 2 {
		t.Errorf("rage after long rest = %d, want 2", f.Uses.Current)
	}

	if err := UpdateFeatureUses(ctx, database, "01F2", 1); err != nil {
		t.Fatalf("UpdateFeatureUses: %v", err)
	}
	if err := UpdateFeatureUses(ctx, database, "01F3", 1); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("UpdateFeatureUses on passive err = %v, want NOT_FOUND", err)
	}

	deleted, err := DeleteFeature(ctx, database, "01F3")
	if err != nil || !deleted {
		t.Errorf("DeleteFeature = %v, %v", deleted, err)
	}
}

func TestTraits(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	if err := InsertCharacter(ctx, database, newTestCharacter("01C", "C", 1)); err != nil {
		t.Fatal(err)
	}

	tr := &sheet.Trait{ID: "01T", CharacterID: "01C", Name: "Stonecunning", Description: "rocks", Source: "Dwarf"}
	if err := InsertTrait(ctx, database, tr); err != nil {
		t.Fatalf("InsertTrait: %v", err)
	}
	got, err := GetTrait(ctx, database, "01T")
	if err != nil || got.Name != "Stonecunning" {
		t.Fatalf("GetTrait = %+v, %v", got, err)
	}
	list, err := ListTraits(ctx, database, "01C")
	if err != nil || len(list) != 1 {
		t.Fatalf("ListTraits = %+v, %v", list, err)
	}
	if deleted, err := DeleteTrait(ctx, database, "01T"); err != nil || !deleted {
		t.Errorf("DeleteTrait = %v, %v", deleted, err)
	}
	if _, err := GetTrait(ctx, database, "01T"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetTrait after delete err = %v", err)
	}
}

func TestInventory(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	if err := InsertCharacter(ctx, database, newTestCharacter("01C", "C", 1)); err != nil {
		t.Fatal(err)
	}

	it := &sheet.InventoryItem{
		ID: "01I", CharacterID: "01C", Name: "Longsword", Quantity: 1, Weight: 3,
		Value:      sheet.Value{Amount: 15, Currency: sheet.Gold},
		Category:   sheet.CategoryWeapon,
		Properties: []string{"versatile"},
	}
	if err := InsertItem(ctx, database, it); err != nil {
		t.Fatalf("InsertItem: %v", err)
	}
	if err := SetItemEquipped(ctx, database, "01I", true); err != nil {
		t.Fatalf("SetItemEquipped: %v", err)
	}

	items, err := ListItems(ctx, database, "01C")
	if err != nil || len(items) != 1 {
		t.Fatalf("ListItems = %+v, %v", items, err)
	}
	got := items[0]
	if !got.Equipped {
		t.Error("item should be equipped")
	}
	if got.Value.Currency != sheet.Gold || got.Value.Amount != 15 {
		t.Errorf("Value = %+v", got.Value)
	}
	if len(got.Properties) != 1 || got.Properties[0] != "versatile" {
		t.Errorf("Properties = %v", got.Properties)
	}

	if deleted, err := DeleteItem(ctx, database, "01I"); err != nil || !deleted {
		t.Errorf("DeleteItem = %v, %v", deleted, err)
	}
	if _, err := GetItem(ctx, database, "01I"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetItem after delete err = %v", err)
	}
}
