package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/sheet"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// newTestCharacter creates a valid character with fixed timestamps.
func newTestCharacter(id, name string, ts int64) *sheet.Character {
	d := sheet.DefaultDraft()
	d.Name = name
	d.Class = "Fighter"
	d.Race = "Human"
	d.Background = "Soldier"
	c := d.Build()
	c.ID = id
	c.CreatedAt = ts
	c.UpdatedAt = ts
	return c
}

func stringPtr(s string) *string {
	return &s
}

func TestInsertAndGetCharacter(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	c := newTestCharacter("01CHAR001", "Thorin", 1000)
	c.Abilities.Dexterity = 14
	c.Initiative = 2
	c.Notes = stringPtr("grumpy")

	if err := InsertCharacter(ctx, database, c); err != nil {
		t.Fatalf("InsertCharacter failed: %v", err)
	}

	got, err := GetCharacter(ctx, database, "01CHAR001")
	if err != nil {
		t.Fatalf("GetCharacter failed: %v", err)
	}
	if got.Name != "Thorin" {
		t.Errorf("Name = %q, want %q", got.Name, "Thorin")
	}
	if got.Abilities.Dexterity != 14 {
		t.Errorf("Dexterity = %d, want 14", got.Abilities.Dexterity)
	}
	if got.HitPoints != c.HitPoints {
		t.Errorf("HitPoints = %+v, want %+v", got.HitPoints, c.HitPoints)
	}
	if got.Notes == nil || *got.Notes != "grumpy" {
		t.Errorf("Notes = %v, want grumpy", got.Notes)
	}
	if got.CreatedAt != 1000 || got.UpdatedAt != 1000 {
		t.Errorf("timestamps = %d/%d, want 1000/1000", got.CreatedAt, got.UpdatedAt)
	}
}

func TestInsertCharacter_DuplicateID(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	if err := InsertCharacter(ctx, database, newTestCharacter("01DUP", "A", 1)); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	err := InsertCharacter(ctx, database, newTestCharacter("01DUP", "B", 2))
	if err != ErrUniqueConstraint {
		t.Errorf("second insert err = %v, want ErrUniqueConstraint", err)
	}
}

func TestGetCharacter_NotFound(t *testing.T) {
	database := openTestDB(t)

	_, err := GetCharacter(context.Background(), database, "missing")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestListCharacters_Order(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	// Same updated_at: created_at breaks the tie, then id.
	for _, c := range []*sheet.Character{
		newTestCharacter("01A", "Old", 100),
		newTestCharacter("01B", "TieLow", 200),
		newTestCharacter("01C", "TieHigh", 200),
		newTestCharacter("01D", "Newest", 300),
	} {
		if err := InsertCharacter(ctx, database, c); err != nil {
			t.Fatalf("insert %s: %v", c.ID, err)
		}
	}
	late := newTestCharacter("01E", "CreatedLate", 150)
	late.UpdatedAt = 200
	if err := InsertCharacter(ctx, database, late); err != nil {
		t.Fatalf("insert late: %v", err)
	}

	got, total, err := ListCharacters(ctx, database, 10, 0)
	if err != nil {
		t.Fatalf("ListCharacters failed: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	want := []string{"01D", "01C", "01B", "01E", "01A"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("item[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}

	page, _, err := ListCharacters(ctx, database, 2, 3)
	if err != nil {
		t.Fatalf("ListCharacters page failed: %v", err)
	}
	if len(page) != 2 || page[0].ID != "01E" {
		t.Errorf("page = %+v, want [01E 01A]", page)
	}
}

func TestUpdateCharacter(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	c := newTestCharacter("01UPD", "Before", 100)
	if err := InsertCharacter(ctx, database, c); err != nil {
		t.Fatalf("insert: %v", err)
	}

	c.Name = "After"
	c.Level = 5
	c.ProficiencyBonus = 3
	c.Notes = nil
	c.UpdatedAt = 500
	if err := UpdateCharacter(ctx, database, c); err != nil {
		t.Fatalf("UpdateCharacter failed: %v", err)
	}

	got, err := GetCharacter(ctx, database, "01UPD")
	if err != nil {
		t.Fatalf("GetCharacter: %v", err)
	}
	if got.Name != "After" || got.Level != 5 || got.ProficiencyBonus != 3 {
		t.Errorf("got %+v", got)
	}
	if got.UpdatedAt != 500 || got.CreatedAt != 100 {
		t.Errorf("timestamps = %d/%d, want 100/500", got.CreatedAt, got.UpdatedAt)
	}

	missing := newTestCharacter("nope", "X", 1)
	if err := UpdateCharacter(ctx, database, missing); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("update missing err = %v, want NOT_FOUND", err)
	}
}

func TestUpdateHitPoints(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	c := newTestCharacter("01HP", "Hurt", 100)
	if err := InsertCharacter(ctx, database, c); err != nil {
		t.Fatalf("insert: %v", err)
	}

	hp := sheet.HitPoints{Current: 3, Max: 10, Temporary: 4}
	if err := UpdateHitPoints(ctx, database, "01HP", hp, 200); err != nil {
		t.Fatalf("UpdateHitPoints: %v", err)
	}
	got, _ := GetCharacter(ctx, database, "01HP")
	if got.HitPoints != hp {
		t.Errorf("HitPoints = %+v, want %+v", got.HitPoints, hp)
	}
	if got.UpdatedAt != 200 {
		t.Errorf("UpdatedAt = %d, want 200", got.UpdatedAt)
	}
}

func TestDeleteCharacter_Cascades(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	c := newTestCharacter("01DEL", "Doomed", 100)
	if err := InsertCharacter(ctx, database, c); err != nil {
		t.Fatalf("insert: %v", err)
	}
	s := &sheet.Skill{ID: "01SK", CharacterID: "01DEL", Name: "Stealth", Ability: sheet.Dexterity}
	if err := InsertSkill(ctx, database, s); err != nil {
		t.Fatalf("InsertSkill: %v", err)
	}
	f := &sheet.Feature{ID: "01FE", CharacterID: "01DEL", Name: "Second Wind", Description: "d", Source: "Fighter", Level: 1}
	if err := InsertFeature(ctx, database, f); err != nil {
		t.Fatalf("InsertFeature: %v", err)
	}

	deleted, err := DeleteCharacter(ctx, database, "01DEL")
	if err != nil || !deleted {
		t.Fatalf("DeleteCharacter = %v, %v; want true, nil", deleted, err)
	}

	var n int
	if err := database.QueryRow("SELECT COUNT(*) FROM skills").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("skills left after delete = %d, want 0", n)
	}
	if err := database.QueryRow("SELECT COUNT(*) FROM features").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("features left after delete = %d, want 0", n)
	}

	deleted, err = DeleteCharacter(ctx, database, "01DEL")
	if err != nil || deleted {
		t.Errorf("second delete = %v, %v; want false, nil", deleted, err)
	}
}

func TestCharacterExists(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	if ok, err := CharacterExists(ctx, database, "01X"); err != nil || ok {
		t.Errorf("CharacterExists before insert = %v, %v", ok, err)
	}
	if err := InsertCharacter(ctx, database, newTestCharacter("01X", "X", 1)); err != nil {
		t.Fatal(err)
	}
	if ok, err := CharacterExists(ctx, database, "01X"); err != nil || !ok {
		t.Errorf("CharacterExists after insert = %v, %v", ok, err)
	}
}

func TestQuerier_Tx(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := InsertCharacter(ctx, tx, newTestCharacter("01TX", "Rolled", 1)); err != nil {
		t.Fatalf("insert in tx: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatal(err)
	}

	if ok, _ := CharacterExists(ctx, database, "01TX"); ok {
		t.Error("rolled back character is visible")
	}
}
