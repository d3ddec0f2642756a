package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/logging"
	"github.com/hpungsan/tome/internal/ops"
	"github.com/hpungsan/tome/internal/sheet"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db     *sql.DB
	cfg    *config.Config
	logger *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{db: db, cfg: cfg, logger: logger}
}

// Request types for each tool

// CreateRequest represents the arguments for character_create.
// Omitted numeric fields take the creation form's defaults.
type CreateRequest struct {
	Name         string  `json:"name"`
	Class        string  `json:"class"`
	Race         string  `json:"race"`
	Background   string  `json:"background"`
	Level        *int    `json:"level,omitempty"`
	Strength     *int    `json:"strength,omitempty"`
	Dexterity    *int    `json:"dexterity,omitempty"`
	Constitution *int    `json:"constitution,omitempty"`
	Intelligence *int    `json:"intelligence,omitempty"`
	Wisdom       *int    `json:"wisdom,omitempty"`
	Charisma     *int    `json:"charisma,omitempty"`
	MaxHP        *int    `json:"hit_points_max,omitempty"`
	ArmorClass   *int    `json:"armor_class,omitempty"`
	Speed        *int    `json:"speed,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	SeedSkills   bool    `json:"seed_skills,omitempty"`
	SeedSaves    bool    `json:"seed_saving_throws,omitempty"`
}

// draft fills a sheet.Draft over the defaults.
func (r CreateRequest) draft() sheet.Draft {
	d := sheet.DefaultDraft()
	d.Name = r.Name
	d.Class = r.Class
	d.Race = r.Race
	d.Background = r.Background
	d.Notes = r.Notes
	if r.Level != nil {
		d.Level = *r.Level
	}
	if r.Strength != nil {
		d.Abilities.Strength = *r.Strength
	}
	if r.Dexterity != nil {
		d.Abilities.Dexterity = *r.Dexterity
	}
	if r.Constitution != nil {
		d.Abilities.Constitution = *r.Constitution
	}
	if r.Intelligence != nil {
		d.Abilities.Intelligence = *r.Intelligence
	}
	if r.Wisdom != nil {
		d.Abilities.Wisdom = *r.Wisdom
	}
	if r.Charisma != nil {
		d.Abilities.Charisma = *r.Charisma
	}
	if r.MaxHP != nil {
		d.MaxHP = *r.MaxHP
	}
	if r.ArmorClass != nil {
		d.ArmorClass = *r.ArmorClass
	}
	if r.Speed != nil {
		d.Speed = *r.Speed
	}
	return d
}

// ListRequest represents the arguments for character_list.
type ListRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// IDRequest is shared by tools that take a single record ID.
type IDRequest struct {
	ID string `json:"id"`
}

// CharacterRequest is shared by tools that act on a whole character.
type CharacterRequest struct {
	CharacterID string `json:"character_id"`
}

// UpdateRequest represents the arguments for character_update.
type UpdateRequest struct {
	ID string `json:"id"`
	sheet.Patch
}

// DeleteRequest represents the arguments for character_delete.
type DeleteRequest struct {
	ID      string `json:"id"`
	Confirm bool   `json:"confirm"`
}

// AmountRequest represents the arguments for character_damage and character_heal.
type AmountRequest struct {
	ID     string `json:"id"`
	Amount int    `json:"amount"`
}

// TempHPRequest represents the arguments for character_temp_hp.
type TempHPRequest struct {
	ID    string `json:"id"`
	Delta int    `json:"delta"`
}

// RestRequest represents the arguments for character_rest.
type RestRequest struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// SkillAddRequest represents the arguments for skill_add.
type SkillAddRequest struct {
	CharacterID string  `json:"character_id"`
	Name        string  `json:"name"`
	Ability     string  `json:"ability"`
	Description *string `json:"description,omitempty"`
}

// FeatureAddRequest represents the arguments for feature_add.
type FeatureAddRequest struct {
	CharacterID string `json:"character_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
	Level       int    `json:"level,omitempty"`
	UsesMax     int    `json:"uses_max,omitempty"`
	RestType    string `json:"rest_type,omitempty"`
}

// TraitAddRequest represents the arguments for trait_add.
type TraitAddRequest struct {
	CharacterID string `json:"character_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
}

// ItemAddRequest represents the arguments for item_add.
type ItemAddRequest struct {
	CharacterID string   `json:"character_id"`
	Name        string   `json:"name"`
	Quantity    int      `json:"quantity,omitempty"`
	Weight      float64  `json:"weight,omitempty"`
	Value       float64  `json:"value,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Category    string   `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	Properties  []string `json:"properties,omitempty"`
	Equipped    bool     `json:"equipped,omitempty"`
}

// ItemEquipRequest represents the arguments for item_equip.
type ItemEquipRequest struct {
	ID       string `json:"id"`
	Equipped bool   `json:"equipped"`
}

// FetchOutput is a character with its computed display values.
type FetchOutput struct {
	Character *sheet.Character `json:"character"`
	View      sheet.SheetView  `json:"view"`
}

// Handler implementations

// HandleCreate handles the character_create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	c, err := ops.Create(ctx, h.db, input.draft())
	if err != nil {
		return h.fail("create character", err), nil
	}
	if input.SeedSkills {
		if _, err := ops.SeedSkills(ctx, h.db, c.ID); err != nil {
			return h.fail("seed skills", err), nil
		}
	}
	if input.SeedSaves {
		if _, err := ops.SeedSavingThrows(ctx, h.db, c.ID); err != nil {
			return h.fail("seed saving throws", err), nil
		}
	}
	if input.SeedSkills || input.SeedSaves {
		if c, err = ops.Load(ctx, h.db, c.ID); err != nil {
			return h.fail("load character", err), nil
		}
	}
	return successResult(c)
}

// HandleList handles the character_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.List(ctx, h.db, ops.ListInput{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return h.fail("list characters", err), nil
	}
	return successResult(result)
}

// HandleFetch handles the character_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	c, err := ops.Load(ctx, h.db, input.ID)
	if err != nil {
		return h.fail("load character", err), nil
	}
	return successResult(FetchOutput{Character: c, View: sheet.Present(c)})
}

// HandleLatest handles the character_latest tool call.
func (h *Handlers) HandleLatest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := decode[struct{}](req); err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Latest(ctx, h.db)
	if err != nil {
		return h.fail("load latest character", err), nil
	}
	return successResult(result)
}

// HandleUpdate handles the character_update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	c, err := ops.UpdateFields(ctx, h.db, input.ID, input.Patch)
	if err != nil {
		return h.fail("update character", err), nil
	}
	return successResult(c)
}

// HandleDelete handles the character_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if !input.Confirm {
		return errorResult(errors.NewInvalidRequest("confirm: true is required to delete a character")), nil
	}
	result, err := ops.Delete(ctx, h.db, input.ID)
	if err != nil {
		return h.fail("delete character", err), nil
	}
	return successResult(result)
}

// HandleDamage handles the character_damage tool call.
func (h *Handlers) HandleDamage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AmountRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.ApplyDamage(ctx, h.db, input.ID, input.Amount)
	if err != nil {
		return h.fail("apply damage", err), nil
	}
	return successResult(result)
}

// HandleHeal handles the character_heal tool call.
func (h *Handlers) HandleHeal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AmountRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.ApplyHeal(ctx, h.db, input.ID, input.Amount)
	if err != nil {
		return h.fail("heal", err), nil
	}
	return successResult(result)
}

// HandleTempHP handles the character_temp_hp tool call.
func (h *Handlers) HandleTempHP(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TempHPRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.AdjustTempHP(ctx, h.db, input.ID, input.Delta)
	if err != nil {
		return h.fail("update temporary hit points", err), nil
	}
	return successResult(result)
}

// HandleRest handles the character_rest tool call.
func (h *Handlers) HandleRest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.Rest(ctx, h.db, input.ID, input.Type)
	if err != nil {
		return h.fail("rest", err), nil
	}
	return successResult(result)
}

// HandleSkillSeed handles the skill_seed tool call.
func (h *Handlers) HandleSkillSeed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CharacterRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.SeedSkills(ctx, h.db, input.CharacterID)
	if err != nil {
		return h.fail("seed skills", err), nil
	}
	return successResult(result)
}

// HandleSkillAdd handles the skill_add tool call.
func (h *Handlers) HandleSkillAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SkillAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.AddCustomSkill(ctx, h.db, ops.AddSkillInput{
		CharacterID: input.CharacterID,
		Name:        input.Name,
		Ability:     input.Ability,
		Description: input.Description,
	})
	if err != nil {
		return h.fail("add skill", err), nil
	}
	return successResult(result)
}

// HandleSkillToggle handles the skill_toggle tool call.
func (h *Handlers) HandleSkillToggle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.ToggleSkill(ctx, h.db, input.ID)
	if err != nil {
		return h.fail("toggle skill", err), nil
	}
	return successResult(result)
}

// HandleSaveSeed handles the save_seed tool call.
func (h *Handlers) HandleSaveSeed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CharacterRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.SeedSavingThrows(ctx, h.db, input.CharacterID)
	if err != nil {
		return h.fail("seed saving throws", err), nil
	}
	return successResult(result)
}

// HandleSaveToggle handles the save_toggle tool call.
func (h *Handlers) HandleSaveToggle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.ToggleSavingThrow(ctx, h.db, input.ID)
	if err != nil {
		return h.fail("toggle saving throw", err), nil
	}
	return successResult(result)
}

// HandleFeatureAdd handles the feature_add tool call.
func (h *Handlers) HandleFeatureAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FeatureAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.AddFeature(ctx, h.db, ops.AddFeatureInput{
		CharacterID: input.CharacterID,
		Name:        input.Name,
		Description: input.Description,
		Source:      input.Source,
		Level:       input.Level,
		UsesMax:     input.UsesMax,
		RestType:    input.RestType,
	})
	if err != nil {
		return h.fail("add feature", err), nil
	}
	return successResult(result)
}

// HandleFeatureUse handles the feature_use tool call.
func (h *Handlers) HandleFeatureUse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.UseFeature(ctx, h.db, input.ID)
	if err != nil {
		return h.fail("use feature", err), nil
	}
	return successResult(result)
}

// HandleFeatureRemove handles the feature_remove tool call.
func (h *Handlers) HandleFeatureRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.RemoveFeature(ctx, h.db, input.ID)
	if err != nil {
		return h.fail("remove feature", err), nil
	}
	return successResult(result)
}

// HandleTraitAdd handles the trait_add tool call.
func (h *Handlers) HandleTraitAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TraitAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.AddTrait(ctx, h.db, ops.AddTraitInput{
		CharacterID: input.CharacterID,
		Name:        input.Name,
		Description: input.Description,
		Source:      input.Source,
	})
	if err != nil {
		return h.fail("add trait", err), nil
	}
	return successResult(result)
}

// HandleTraitRemove handles the trait_remove tool call.
func (h *Handlers) HandleTraitRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.RemoveTrait(ctx, h.db, input.ID)
	if err != nil {
		return h.fail("remove trait", err), nil
	}
	return successResult(result)
}

// HandleItemAdd handles the item_add tool call.
func (h *Handlers) HandleItemAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ItemAddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.AddItem(ctx, h.db, ops.AddItemInput{
		CharacterID: input.CharacterID,
		Name:        input.Name,
		Quantity:    input.Quantity,
		Weight:      input.Weight,
		ValueAmount: input.Value,
		Currency:    input.Currency,
		Category:    input.Category,
		Description: input.Description,
		Properties:  input.Properties,
		Equipped:    input.Equipped,
	})
	if err != nil {
		return h.fail("add item", err), nil
	}
	return successResult(result)
}

// HandleItemEquip handles the item_equip tool call.
func (h *Handlers) HandleItemEquip(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ItemEquipRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.SetEquipped(ctx, h.db, input.ID, input.Equipped)
	if err != nil {
		return h.fail("equip item", err), nil
	}
	return successResult(result)
}

// HandleItemRemove handles the item_remove tool call.
func (h *Handlers) HandleItemRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IDRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	result, err := ops.RemoveItem(ctx, h.db, input.ID)
	if err != nil {
		return h.fail("remove item", err), nil
	}
	return successResult(result)
}

// Result helpers

// fail logs err and converts it to an error result.
func (h *Handlers) fail(action string, err error) *mcp.CallToolResult {
	logging.Failure(h.logger, action, err)
	return errorResult(err)
}

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// INTERNAL errors carry only their generic message; the storage detail
// stays in the log.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var tErr *errors.TomeError
	if stderrors.As(err, &tErr) {
		errorObj := map[string]any{
			"code":    tErr.Code,
			"message": tErr.Message,
			"status":  tErr.Status,
		}
		if tErr.Code != errors.ErrInternal && tErr.Details != nil {
			errorObj["details"] = tErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
