package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/db"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/sheet"
)

// testSetup creates a temporary database and config for testing.
func testSetup(t *testing.T) (*sql.DB, *config.Config) {
	t.Helper()

	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("failed to init db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database, config.DefaultConfig()
}

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	database, cfg := testSetup(t)
	return NewHandlers(database, cfg, zap.NewNop())
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

type toolFunc func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// call runs a tool handler and fails the test on a transport-level error.
func call(t *testing.T, fn toolFunc, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := fn(context.Background(), makeRequest(args))
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return result
}

// decodeOutput unmarshals a success result into T.
func decodeOutput[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	if result.IsError {
		t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
	}
	var out T
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &out); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return out
}

func createArgs(name string) map[string]any {
	return map[string]any{
		"name":       name,
		"class":      "Paladin",
		"race":       "Dragonborn",
		"background": "Acolyte",
		"level":      float64(5),
		"dexterity":  float64(8),
		"charisma":   float64(16),
	}
}

func mustCreate(t *testing.T, h *Handlers, name string) *sheet.Character {
	t.Helper()
	c := decodeOutput[sheet.Character](t, call(t, h.HandleCreate, createArgs(name)))
	return &c
}

func TestHandleCreate(t *testing.T) {
	h := newTestHandlers(t)

	tests := []struct {
		name      string
		args      map[string]any
		wantError bool
		errorCode string
	}{
		{
			name: "defaults fill omitted fields",
			args: createArgs("Vax"),
		},
		{
			name: "missing name",
			args: map[string]any{
				"class": "Rogue", "race": "Elf", "background": "Criminal",
			},
			wantError: true,
			errorCode: "VALIDATION_FAILED",
		},
		{
			name: "score out of range",
			args: map[string]any{
				"name": "Grog", "class": "Barbarian", "race": "Goliath", "background": "Outlander",
				"strength": float64(21),
			},
			wantError: true,
			errorCode: "VALIDATION_FAILED",
		},
		{
			name: "unknown argument",
			args: map[string]any{
				"name": "Pike", "class": "Cleric", "race": "Gnome", "background": "Acolyte",
				"wisdon": float64(16),
			},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
		{
			name: "fractional level",
			args: map[string]any{
				"name": "Scanlan", "class": "Bard", "race": "Gnome", "background": "Entertainer",
				"level": 2.5,
			},
			wantError: true,
			errorCode: "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := call(t, h.HandleCreate, tt.args)
			if tt.wantError {
				if !result.IsError {
					t.Fatalf("expected error result, got success")
				}
				assertErrorCode(t, result, tt.errorCode)
				return
			}
			if result.IsError {
				t.Fatalf("expected success, got error: %v", extractErrorMessage(result))
			}
		})
	}
}

func TestHandleCreate_DerivedFieldsAndSeeding(t *testing.T) {
	h := newTestHandlers(t)

	args := createArgs("Keyleth")
	args["seed_skills"] = true
	args["seed_saving_throws"] = true
	c := decodeOutput[sheet.Character](t, call(t, h.HandleCreate, args))

	require.Equal(t, 3, c.ProficiencyBonus)
	require.Equal(t, -1, c.Initiative)
	require.Equal(t, 10, c.HitPoints.Current)
	require.Len(t, c.Skills, len(sheet.DefaultSkills()))
	require.Len(t, c.SavingThrows, 6)
}

func TestCreateRequest_Draft(t *testing.T) {
	ptr := func(v int) *int { return &v }

	t.Run("omitted fields keep defaults", func(t *testing.T) {
		d := CreateRequest{Name: "Vex"}.draft()
		require.Equal(t, sheet.DefaultDraft().Abilities, d.Abilities)
		require.Equal(t, 1, d.Level)
		require.Equal(t, 10, d.MaxHP)
		require.Equal(t, 10, d.ArmorClass)
		require.Equal(t, 30, d.Speed)
	})

	t.Run("every numeric field overrides", func(t *testing.T) {
		d := CreateRequest{
			Name:         "Vex",
			Level:        ptr(7),
			Strength:     ptr(8),
			Dexterity:    ptr(18),
			Constitution: ptr(14),
			Intelligence: ptr(12),
			Wisdom:       ptr(15),
			Charisma:     ptr(11),
			MaxHP:        ptr(52),
			ArmorClass:   ptr(16),
			Speed:        ptr(35),
		}.draft()
		require.Equal(t, 7, d.Level)
		require.Equal(t, sheet.Abilities{
			Strength: 8, Dexterity: 18, Constitution: 14,
			Intelligence: 12, Wisdom: 15, Charisma: 11,
		}, d.Abilities)
		require.Equal(t, 52, d.MaxHP)
		require.Equal(t, 16, d.ArmorClass)
		require.Equal(t, 35, d.Speed)
	})
}

func TestHandleFetch(t *testing.T) {
	h := newTestHandlers(t)
	c := mustCreate(t, h, "Percy")

	out := decodeOutput[FetchOutput](t, call(t, h.HandleFetch, map[string]any{"id": c.ID}))
	require.Equal(t, "Percy", out.Character.Name)
	require.Equal(t, "-1", out.View.Initiative)
	require.Equal(t, "+3", out.View.ProficiencyBonus)
	require.Equal(t, "10 / 10", out.View.HitPoints)

	result := call(t, h.HandleFetch, map[string]any{"id": "missing"})
	assertErrorCode(t, result, "NOT_FOUND")

	result = call(t, h.HandleFetch, map[string]any{})
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleList(t *testing.T) {
	h := newTestHandlers(t)
	for _, name := range []string{"A", "B", "C"} {
		mustCreate(t, h, name)
	}

	type listOut struct {
		Items []sheet.CharacterSummary `json:"items"`
		Sort  string                   `json:"sort"`
		Page  struct {
			HasMore bool `json:"has_more"`
			Total   int  `json:"total"`
		} `json:"pagination"`
	}
	out := decodeOutput[listOut](t, call(t, h.HandleList, map[string]any{"limit": float64(2)}))

	require.Len(t, out.Items, 2)
	require.Equal(t, "updated_at_desc", out.Sort)
	require.True(t, out.Page.HasMore)
	require.Equal(t, 3, out.Page.Total)
}

func TestHandleLatest(t *testing.T) {
	h := newTestHandlers(t)

	empty := decodeOutput[map[string]any](t, call(t, h.HandleLatest, nil))
	require.Nil(t, empty["item"])

	c := mustCreate(t, h, "Vex")
	out := decodeOutput[struct {
		Item *sheet.Character `json:"item"`
	}](t, call(t, h.HandleLatest, nil))
	require.NotNil(t, out.Item)
	require.Equal(t, c.ID, out.Item.ID)
}

func TestHandleUpdate(t *testing.T) {
	h := newTestHandlers(t)
	c := mustCreate(t, h, "Tary")

	got := decodeOutput[sheet.Character](t, call(t, h.HandleUpdate, map[string]any{
		"id":                 c.ID,
		"level":              float64(9),
		"dexterity":          float64(14),
		"hit_points_current": float64(500),
	}))
	require.Equal(t, 9, got.Level)
	require.Equal(t, 4, got.ProficiencyBonus)
	require.Equal(t, 2, got.Initiative)
	require.Equal(t, got.HitPoints.Max, got.HitPoints.Current)
	require.Equal(t, "Tary", got.Name)

	result := call(t, h.HandleUpdate, map[string]any{"id": c.ID, "level": float64(0)})
	assertErrorCode(t, result, "VALIDATION_FAILED")

	result = call(t, h.HandleUpdate, map[string]any{"id": "missing", "name": "X"})
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleDelete(t *testing.T) {
	h := newTestHandlers(t)
	c := mustCreate(t, h, "Doty")

	result := call(t, h.HandleDelete, map[string]any{"id": c.ID})
	assertErrorCode(t, result, "INVALID_REQUEST")

	out := decodeOutput[map[string]any](t, call(t, h.HandleDelete, map[string]any{"id": c.ID, "confirm": true}))
	require.Equal(t, true, out["deleted"])

	out = decodeOutput[map[string]any](t, call(t, h.HandleDelete, map[string]any{"id": c.ID, "confirm": true}))
	require.Equal(t, false, out["deleted"])

	result = call(t, h.HandleFetch, map[string]any{"id": c.ID})
	assertErrorCode(t, result, "NOT_FOUND")
}

func TestHandleHitPoints(t *testing.T) {
	h := newTestHandlers(t)
	c := mustCreate(t, h, "Trinket")

	type hpOut struct {
		HitPoints sheet.HitPoints `json:"hit_points"`
	}

	out := decodeOutput[hpOut](t, call(t, h.HandleDamage, map[string]any{"id": c.ID, "amount": float64(25)}))
	require.Equal(t, 0, out.HitPoints.Current)

	out = decodeOutput[hpOut](t, call(t, h.HandleHeal, map[string]any{"id": c.ID, "amount": float64(4)}))
	require.Equal(t, 4, out.HitPoints.Current)

	out = decodeOutput[hpOut](t, call(t, h.HandleTempHP, map[string]any{"id": c.ID, "delta": float64(6)}))
	require.Equal(t, 6, out.HitPoints.Temporary)

	out = decodeOutput[hpOut](t, call(t, h.HandleTempHP, map[string]any{"id": c.ID, "delta": float64(-10)}))
	require.Equal(t, 0, out.HitPoints.Temporary)

	result := call(t, h.HandleHeal, map[string]any{"id": c.ID, "amount": float64(-1)})
	assertErrorCode(t, result, "INVALID_REQUEST")
}

func TestHandleSkills(t *testing.T) {
	h := newTestHandlers(t)
	c := mustCreate(t, h, "Kashaw")

	seed := decodeOutput[map[string]any](t, call(t, h.HandleSkillSeed, map[string]any{"character_id": c.ID}))
	require.Equal(t, float64(18), seed["inserted"])

	seed = decodeOutput[map[string]any](t, call(t, h.HandleSkillSeed, map[string]any{"character_id": c.ID}))
	require.Equal(t, float64(0), seed["inserted"])

	result := call(t, h.HandleSkillAdd, map[string]any{"character_id": c.ID, "name": "PERCEPTION", "ability": "wis"})
	assertErrorCode(t, result, "SKILL_ALREADY_EXISTS")

	result = call(t, h.HandleSkillAdd, map[string]any{"character_id": c.ID, "name": "Cooking", "ability": "luck"})
	assertErrorCode(t, result, "INVALID_REQUEST")

	skill := decodeOutput[sheet.Skill](t, call(t, h.HandleSkillAdd, map[string]any{
		"character_id": c.ID, "name": "Cooking", "ability": "WIS",
	}))
	require.True(t, skill.IsCustom)
	require.Equal(t, sheet.Wisdom, skill.Ability)

	for _, want := range []sheet.ProficiencyState{sheet.StateProficient, sheet.StateExpertise, sheet.StateNone} {
		s := decodeOutput[sheet.Skill](t, call(t, h.HandleSkillToggle, map[string]any{"id": skill.ID}))
		require.Equal(t, want, sheet.StateOf(s.Proficient, s.Expertise))
	}
}

func TestHandleSaves(t *testing.T) {
	h := newTestHandlers(t)
	c := mustCreate(t, h, "Zahra")

	seed := decodeOutput[map[string]any](t, call(t, h.HandleSaveSeed, map[string]any{"character_id": c.ID}))
	require.Equal(t, float64(6), seed["inserted"])

	out := decodeOutput[FetchOutput](t, call(t, h.HandleFetch, map[string]any{"id": c.ID}))
	cha := out.Character.SavingThrows[5]
	require.Equal(t, sheet.Charisma, cha.Ability)

	st := decodeOutput[sheet.SavingThrow](t, call(t, h.HandleSaveToggle, map[string]any{"id": cha.ID}))
	require.True(t, st.Proficient)

	out = decodeOutput[FetchOutput](t, call(t, h.HandleFetch, map[string]any{"id": c.ID}))
	// CHA 16 (+3) plus proficiency +3
	require.Equal(t, "+6", out.View.SavingThrows[5].Bonus)
}

func TestHandleFeatures(t *testing.T) {
	h := newTestHandlers(t)
	c := mustCreate(t, h, "Kima")

	result := call(t, h.HandleFeatureAdd, map[string]any{
		"character_id": c.ID, "name": "Lay on Hands", "uses_max": float64(2),
	})
	assertErrorCode(t, result, "INVALID_REQUEST")

	f := decodeOutput[sheet.Feature](t, call(t, h.HandleFeatureAdd, map[string]any{
		"character_id": c.ID, "name": "Channel Divinity", "uses_max": float64(1), "rest_type": "short",
	}))
	require.NotNil(t, f.Uses)
	require.Equal(t, 1, f.Uses.Current)

	f = decodeOutput[sheet.Feature](t, call(t, h.HandleFeatureUse, map[string]any{"id": f.ID}))
	require.Equal(t, 0, f.Uses.Current)

	result = call(t, h.HandleFeatureUse, map[string]any{"id": f.ID})
	assertErrorCode(t, result, "NO_USES_LEFT")

	rest := decodeOutput[map[string]any](t, call(t, h.HandleRest, map[string]any{"id": c.ID, "type": "long"}))
	require.Equal(t, float64(1), rest["restored"])

	result = call(t, h.HandleRest, map[string]any{"id": c.ID, "type": "nap"})
	assertErrorCode(t, result, "INVALID_REQUEST")

	del := decodeOutput[map[string]any](t, call(t, h.HandleFeatureRemove, map[string]any{"id": f.ID}))
	require.Equal(t, true, del["deleted"])
}

func TestHandleTraitsAndItems(t *testing.T) {
	h := newTestHandlers(t)
	c := mustCreate(t, h, "Allura")

	tr := decodeOutput[sheet.Trait](t, call(t, h.HandleTraitAdd, map[string]any{
		"character_id": c.ID, "name": "Draconic Ancestry", "source": "Dragonborn",
	}))
	require.Equal(t, "Dragonborn", tr.Source)

	it := decodeOutput[sheet.InventoryItem](t, call(t, h.HandleItemAdd, map[string]any{
		"character_id": c.ID,
		"name":         "Longsword",
		"weight":       float64(3),
		"value":        float64(15),
		"category":     "weapon",
		"properties":   []any{"versatile"},
	}))
	require.Equal(t, sheet.CategoryWeapon, it.Category)
	require.Equal(t, []string{"versatile"}, it.Properties)

	it = decodeOutput[sheet.InventoryItem](t, call(t, h.HandleItemEquip, map[string]any{"id": it.ID, "equipped": true}))
	require.True(t, it.Equipped)

	result := call(t, h.HandleItemAdd, map[string]any{"character_id": c.ID, "name": "Gem", "currency": "ep"})
	assertErrorCode(t, result, "INVALID_REQUEST")

	out := decodeOutput[FetchOutput](t, call(t, h.HandleFetch, map[string]any{"id": c.ID}))
	require.Len(t, out.Character.Traits, 1)
	require.Len(t, out.Character.Inventory, 1)
	require.Equal(t, 3.0, out.View.CarriedWeight)

	decodeOutput[map[string]any](t, call(t, h.HandleTraitRemove, map[string]any{"id": tr.ID}))
	decodeOutput[map[string]any](t, call(t, h.HandleItemRemove, map[string]any{"id": it.ID}))

	out = decodeOutput[FetchOutput](t, call(t, h.HandleFetch, map[string]any{"id": c.ID}))
	require.Empty(t, out.Character.Traits)
	require.Empty(t, out.Character.Inventory)
}

func TestServerRegistration(t *testing.T) {
	database, cfg := testSetup(t)

	s := NewServer(database, cfg, zap.NewNop(), "test")
	tools := s.ListTools()
	if tools == nil {
		t.Fatal("expected tools to be registered, got nil")
	}

	if len(tools) != len(toolRegistry) {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry))
	}
	for _, name := range []string{
		"character_create", "character_list", "character_fetch", "character_update",
		"character_delete", "character_damage", "character_heal", "character_temp_hp",
		"skill_seed", "skill_add", "skill_toggle",
	} {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing registered tool: %s", name)
		}
	}
}

func TestServerRegistration_WithDisabledTools(t *testing.T) {
	database, cfg := testSetup(t)

	cfg.DisabledTools = []string{"character_delete", "character_delete", "item_remove", "bogus"}
	s := NewServer(database, cfg, zap.NewNop(), "test")
	tools := s.ListTools()

	if len(tools) != len(toolRegistry)-2 {
		t.Errorf("registered tool count = %d, want %d", len(tools), len(toolRegistry)-2)
	}
	for _, name := range []string{"character_delete", "item_remove"} {
		if _, ok := tools[name]; ok {
			t.Errorf("disabled tool %q should not be registered", name)
		}
	}
}

func TestServerRegistration_AllToolsDisabled(t *testing.T) {
	database, cfg := testSetup(t)

	cfg.DisabledTools = AllToolNames()
	s := NewServer(database, cfg, zap.NewNop(), "test")

	if tools := s.ListTools(); len(tools) != 0 {
		t.Errorf("registered tool count = %d, want 0 (all disabled)", len(tools))
	}
}

func TestValidateDisabledTools(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantLen int
	}{
		{"all valid", []string{"character_delete", "skill_add"}, 0},
		{"one unknown", []string{"character_delete", "fake_tool"}, 1},
		{"all unknown", []string{"foo", "bar", "baz"}, 3},
		{"empty list", []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unknown := ValidateDisabledTools(tt.input)
			if len(unknown) != tt.wantLen {
				t.Errorf("ValidateDisabledTools() returned %d unknown, want %d", len(unknown), tt.wantLen)
			}
		})
	}
}

func TestAllToolNames(t *testing.T) {
	names := AllToolNames()
	require.Len(t, names, len(toolRegistry))
	require.Empty(t, ValidateDisabledTools(names))
	require.IsIncreasing(t, names)
}

func TestToolDefsMatchRegistryKeys(t *testing.T) {
	for name, entry := range toolRegistry {
		if entry.def.Name != name {
			t.Errorf("registry key %q has tool def named %q", name, entry.def.Name)
		}
	}
}

func TestErrorResult_InternalDoesNotExposeDetails(t *testing.T) {
	r := errorResult(errors.NewStorageFailure("load character", fmt.Errorf("open /tmp/secret.db: permission denied")))
	if !r.IsError {
		t.Fatal("expected IsError=true")
	}

	var payload map[string]map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	errObj := payload["error"]

	if errObj["code"] != string(errors.ErrInternal) {
		t.Fatalf("code=%v, want %v", errObj["code"], errors.ErrInternal)
	}
	if errObj["message"] != "failed to load character" {
		t.Errorf("message=%v", errObj["message"])
	}
	if _, ok := errObj["details"]; ok {
		t.Fatal("expected INTERNAL errors to omit details")
	}
}

func TestErrorResult_WrappedError(t *testing.T) {
	r := errorResult(fmt.Errorf("seed: %w", errors.NewNotFound("character", "abc")))
	assertErrorCode(t, r, "NOT_FOUND")
}

func TestErrorResult_NonInternalIncludesDetails(t *testing.T) {
	r := errorResult(errors.NewNotFound("character", "abc"))

	var payload map[string]map[string]any
	if err := json.Unmarshal([]byte(r.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to unmarshal error payload: %v", err)
	}
	details, ok := payload["error"]["details"].(map[string]any)
	if !ok {
		t.Fatal("expected details for NOT_FOUND")
	}
	if details["id"] != "abc" {
		t.Errorf("details.id=%v, want abc", details["id"])
	}
}

func TestErrorResult_PlainError(t *testing.T) {
	r := errorResult(fmt.Errorf("boom"))
	assertErrorCode(t, r, "INTERNAL")
}

func assertErrorCode(t *testing.T, result *mcp.CallToolResult, expectedCode string) {
	t.Helper()

	if !result.IsError {
		t.Errorf("expected error result, got success: %s", extractErrorMessage(result))
		return
	}
	if len(result.Content) == 0 {
		t.Errorf("no content in error result")
		return
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Errorf("content is not TextContent")
		return
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		t.Errorf("failed to unmarshal error payload: %v", err)
		return
	}

	errorObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Errorf("no error object in payload")
		return
	}

	code, ok := errorObj["code"].(string)
	if !ok {
		t.Errorf("no code in error object")
		return
	}
	if code != expectedCode {
		t.Errorf("error code = %q, want %q (%s)", code, expectedCode, text.Text)
	}
}

func extractErrorMessage(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return "<no content>"
	}

	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		return "<not text content>"
	}

	return text.Text
}
