package web

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/logging"
	"github.com/hpungsan/tome/internal/ops"
	"github.com/hpungsan/tome/internal/sheet"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
	logger   *zap.Logger
}

// fail logs err and renders it for the client.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	logging.Failure(h.logger, action, err)
	h.renderer.renderError(w, r, err)
}

// HandleList handles GET /characters: the character list, most recently
// touched first.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	result, err := ops.List(r.Context(), h.db, ops.ListInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.fail(w, r, "list characters", err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData:   h.renderer.page("Characters", "characters"),
		Items:      result.Items,
		Pagination: result.Pagination,
	})
}

// HandleSheet handles GET /characters/{id}.
func (h *Handlers) HandleSheet(w http.ResponseWriter, r *http.Request) {
	c, err := ops.Load(r.Context(), h.db, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "load character", err)
		return
	}

	view := sheet.Present(c)
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"character": c,
			"view":      view,
		})
		return
	}

	data := SheetPageData{
		PageData:  h.renderer.page(c.Name, "characters"),
		Character: c,
		View:      view,
	}
	if c.Notes != nil {
		data.NotesHTML = renderMarkdown(*c.Notes)
	}
	h.renderer.renderPage(w, r, "sheet", data)
}

// HandleNew handles GET /characters/new, the empty creation form.
func (h *Handlers) HandleNew(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, FormPageData{
		Action:     "/characters",
		Draft:      sheet.DefaultDraft(),
		SeedSkills: true,
		SeedSaves:  true,
	})
}

// createRequest is the JSON body accepted by POST /characters.
type createRequest struct {
	sheet.Draft
	SeedSkills bool `json:"seed_skills"`
	SeedSaves  bool `json:"seed_saving_throws"`
}

// HandleCreate handles POST /characters. Invalid input re-renders the form
// with a message next to each rejected field.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var (
		req      createRequest
		parseErr []errors.FieldError
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid JSON body"))
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
			return
		}
		fp := formParser{r: r}
		req.Draft = fp.draft()
		req.SeedSkills = r.PostForm.Get("seed_skills") != ""
		req.SeedSaves = r.PostForm.Get("seed_saves") != ""
		parseErr = fp.errs
	}

	form := FormPageData{
		Action:     "/characters",
		Draft:      req.Draft,
		SeedSkills: req.SeedSkills,
		SeedSaves:  req.SeedSaves,
	}

	if len(parseErr) > 0 {
		form.Errors = mergeFieldErrors(parseErr, sheet.ValidateDraft(req.Draft))
		h.renderFormOrError(w, r, form, errors.NewValidationFailed(parseErr))
		return
	}

	c, err := ops.Create(r.Context(), h.db, req.Draft)
	if err != nil {
		if errors.Is(err, errors.ErrValidationFailed) {
			form.Errors = mergeFieldErrors(errors.Fields(err), nil)
			h.renderFormOrError(w, r, form, err)
			return
		}
		h.fail(w, r, "create character", err)
		return
	}

	if req.SeedSkills {
		if _, err := ops.SeedSkills(r.Context(), h.db, c.ID); err != nil {
			h.fail(w, r, "seed skills", err)
			return
		}
	}
	if req.SeedSaves {
		if _, err := ops.SeedSavingThrows(r.Context(), h.db, c.ID); err != nil {
			h.fail(w, r, "seed saving throws", err)
			return
		}
	}

	if wantsJSON(r) {
		c, err = ops.Load(r.Context(), h.db, c.ID)
		if err != nil {
			h.fail(w, r, "load character", err)
			return
		}
		renderJSON(w, http.StatusCreated, c)
		return
	}
	redirect(w, r, sheetURL(c.ID))
}

// HandleEdit handles GET /characters/{id}/edit.
func (h *Handlers) HandleEdit(w http.ResponseWriter, r *http.Request) {
	c, err := ops.Load(r.Context(), h.db, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "load character", err)
		return
	}

	h.renderForm(w, r, http.StatusOK, FormPageData{
		Action: sheetURL(c.ID) + "/edit",
		IsEdit: true,
		Draft: sheet.Draft{
			Name:       c.Name,
			Class:      c.Class,
			Race:       c.Race,
			Background: c.Background,
			Level:      c.Level,
			Abilities:  c.Abilities,
			MaxHP:      c.HitPoints.Max,
			ArmorClass: c.ArmorClass,
			Speed:      c.Speed,
			Notes:      c.Notes,
		},
		CurrentHP:        c.HitPoints.Current,
		TemporaryHP:      c.HitPoints.Temporary,
		ExperiencePoints: c.ExperiencePoints,
	})
}

// HandleUpdate handles POST /characters/{id}/edit. Every field on the form is
// written back, so the patch sets all of them.
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	fp := formParser{r: r}
	d := fp.draft()
	current := fp.intField("hit_points_current", "Current HP")
	temp := fp.intField("hit_points_temporary", "Temporary HP")
	xp := fp.intField("experience_points", "Experience points")

	form := FormPageData{
		Action:           sheetURL(id) + "/edit",
		IsEdit:           true,
		Draft:            d,
		CurrentHP:        current,
		TemporaryHP:      temp,
		ExperiencePoints: xp,
	}

	notes := ""
	if d.Notes != nil {
		notes = *d.Notes
	}
	patch := sheet.Patch{
		Name:               &d.Name,
		Class:              &d.Class,
		Race:               &d.Race,
		Background:         &d.Background,
		Level:              &d.Level,
		Strength:           &d.Abilities.Strength,
		Dexterity:          &d.Abilities.Dexterity,
		Constitution:       &d.Abilities.Constitution,
		Intelligence:       &d.Abilities.Intelligence,
		Wisdom:             &d.Abilities.Wisdom,
		Charisma:           &d.Abilities.Charisma,
		HitPointsCurrent:   &current,
		HitPointsMax:       &d.MaxHP,
		HitPointsTemporary: &temp,
		ArmorClass:         &d.ArmorClass,
		Speed:              &d.Speed,
		ExperiencePoints:   &xp,
		Notes:              &notes,
	}

	if len(fp.errs) > 0 {
		form.Errors = mergeFieldErrors(fp.errs, sheet.ValidatePatch(patch))
		h.renderFormOrError(w, r, form, errors.NewValidationFailed(fp.errs))
		return
	}

	c, err := ops.UpdateFields(r.Context(), h.db, id, patch)
	if err != nil {
		if errors.Is(err, errors.ErrValidationFailed) {
			form.Errors = mergeFieldErrors(errors.Fields(err), nil)
			h.renderFormOrError(w, r, form, err)
			return
		}
		h.fail(w, r, "update character", err)
		return
	}
	h.done(w, r, c.ID, c)
}

// HandleDelete handles POST /characters/{id}/delete and DELETE /characters/{id}.
// Both require confirm=true.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm=true is required to delete a character"))
		return
	}

	result, err := ops.Delete(r.Context(), h.db, id)
	if err != nil {
		h.fail(w, r, "delete character", err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/characters")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	redirect(w, r, "/characters")
}

// HandleHitPoints handles POST /characters/{id}/hp. The action field picks
// damage, heal, or temp; amount is the number entered.
func (h *Handlers) HandleHitPoints(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	amount, err := strconv.Atoi(strings.TrimSpace(r.FormValue("amount")))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("amount must be a whole number"))
		return
	}

	var result *ops.HitPointsOutput
	action := r.FormValue("action")
	switch action {
	case "damage":
		result, err = ops.ApplyDamage(r.Context(), h.db, id, amount)
	case "heal":
		result, err = ops.ApplyHeal(r.Context(), h.db, id, amount)
	case "temp":
		result, err = ops.AdjustTempHP(r.Context(), h.db, id, amount)
	default:
		h.renderer.renderError(w, r, errors.NewInvalidRequest("action must be one of: damage, heal, temp"))
		return
	}
	if err != nil {
		h.fail(w, r, "update hit points", err)
		return
	}
	h.done(w, r, id, result)
}

// HandleRest handles POST /characters/{id}/rest.
func (h *Handlers) HandleRest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, err := ops.Rest(r.Context(), h.db, id, r.FormValue("type"))
	if err != nil {
		h.fail(w, r, "rest", err)
		return
	}
	h.done(w, r, id, result)
}

// HandleSeedSkills handles POST /characters/{id}/skills/seed.
func (h *Handlers) HandleSeedSkills(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, err := ops.SeedSkills(r.Context(), h.db, id)
	if err != nil {
		h.fail(w, r, "seed skills", err)
		return
	}
	h.done(w, r, id, result)
}

// HandleAddSkill handles POST /characters/{id}/skills.
func (h *Handlers) HandleAddSkill(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	skill, err := ops.AddCustomSkill(r.Context(), h.db, ops.AddSkillInput{
		CharacterID: id,
		Name:        r.FormValue("name"),
		Ability:     r.FormValue("ability"),
		Description: ptrString(strings.TrimSpace(r.FormValue("description"))),
	})
	if err != nil {
		h.fail(w, r, "add skill", err)
		return
	}
	h.done(w, r, id, skill)
}

// HandleToggleSkill handles POST /skills/{id}/toggle: one step through
// none, proficient, expertise.
func (h *Handlers) HandleToggleSkill(w http.ResponseWriter, r *http.Request) {
	skill, err := ops.ToggleSkill(r.Context(), h.db, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "toggle skill", err)
		return
	}
	h.done(w, r, skill.CharacterID, skill)
}

// HandleSeedSaves handles POST /characters/{id}/saves/seed.
func (h *Handlers) HandleSeedSaves(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, err := ops.SeedSavingThrows(r.Context(), h.db, id)
	if err != nil {
		h.fail(w, r, "seed saving throws", err)
		return
	}
	h.done(w, r, id, result)
}

// HandleToggleSave handles POST /saves/{id}/toggle.
func (h *Handlers) HandleToggleSave(w http.ResponseWriter, r *http.Request) {
	st, err := ops.ToggleSavingThrow(r.Context(), h.db, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "toggle saving throw", err)
		return
	}
	h.done(w, r, st.CharacterID, st)
}

// HandleAddFeature handles POST /characters/{id}/features.
func (h *Handlers) HandleAddFeature(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	f, err := ops.AddFeature(r.Context(), h.db, ops.AddFeatureInput{
		CharacterID: id,
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Source:      r.FormValue("source"),
		Level:       parseFormInt(r, "level", 0),
		UsesMax:     parseFormInt(r, "uses_max", 0),
		RestType:    r.FormValue("rest_type"),
	})
	if err != nil {
		h.fail(w, r, "add feature", err)
		return
	}
	h.done(w, r, id, f)
}

// HandleUseFeature handles POST /features/{id}/use.
func (h *Handlers) HandleUseFeature(w http.ResponseWriter, r *http.Request) {
	f, err := ops.UseFeature(r.Context(), h.db, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "use feature", err)
		return
	}
	h.done(w, r, f.CharacterID, f)
}

// HandleRemoveFeature handles POST /features/{id}/remove.
func (h *Handlers) HandleRemoveFeature(w http.ResponseWriter, r *http.Request) {
	result, err := ops.RemoveFeature(r.Context(), h.db, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "remove feature", err)
		return
	}
	h.done(w, r, r.FormValue("character_id"), result)
}

// HandleAddTrait handles POST /characters/{id}/traits.
func (h *Handlers) HandleAddTrait(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	t, err := ops.AddTrait(r.Context(), h.db, ops.AddTraitInput{
		CharacterID: id,
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Source:      r.FormValue("source"),
	})
	if err != nil {
		h.fail(w, r, "add trait", err)
		return
	}
	h.done(w, r, id, t)
}

// HandleRemoveTrait handles POST /traits/{id}/remove.
func (h *Handlers) HandleRemoveTrait(w http.ResponseWriter, r *http.Request) {
	result, err := ops.RemoveTrait(r.Context(), h.db, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "remove trait", err)
		return
	}
	h.done(w, r, r.FormValue("character_id"), result)
}

// HandleAddItem handles POST /characters/{id}/items.
func (h *Handlers) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	weight, err := parseFormFloat(r, "weight")
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("weight must be a number"))
		return
	}
	value, err := parseFormFloat(r, "value")
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("value must be a number"))
		return
	}

	var props []string
	if s := r.FormValue("properties"); s != "" {
		props = strings.Split(s, ",")
	}

	it, err := ops.AddItem(r.Context(), h.db, ops.AddItemInput{
		CharacterID: id,
		Name:        r.FormValue("name"),
		Quantity:    parseFormInt(r, "quantity", 0),
		Weight:      weight,
		ValueAmount: value,
		Currency:    r.FormValue("currency"),
		Category:    r.FormValue("category"),
		Description: ptrString(strings.TrimSpace(r.FormValue("description"))),
		Properties:  props,
		Equipped:    parseBoolForm(r, "equipped"),
	})
	if err != nil {
		h.fail(w, r, "add item", err)
		return
	}
	h.done(w, r, id, it)
}

// HandleEquipItem handles POST /items/{id}/equip. equipped=true equips,
// anything else unequips.
func (h *Handlers) HandleEquipItem(w http.ResponseWriter, r *http.Request) {
	it, err := ops.SetEquipped(r.Context(), h.db, r.PathValue("id"), parseBoolForm(r, "equipped"))
	if err != nil {
		h.fail(w, r, "equip item", err)
		return
	}
	h.done(w, r, it.CharacterID, it)
}

// HandleRemoveItem handles POST /items/{id}/remove.
func (h *Handlers) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	result, err := ops.RemoveItem(r.Context(), h.db, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, "remove item", err)
		return
	}
	h.done(w, r, r.FormValue("character_id"), result)
}

// done finishes a successful mutation: JSON clients get the result, browsers
// go back to the character's sheet.
func (h *Handlers) done(w http.ResponseWriter, r *http.Request, characterID string, result any) {
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	target := "/characters"
	if characterID != "" {
		target = sheetURL(characterID)
	}
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusOK)
		return
	}
	redirect(w, r, target)
}

// renderForm renders the create/edit form.
func (h *Handlers) renderForm(w http.ResponseWriter, r *http.Request, status int, data FormPageData) {
	title, nav := "New character", "new"
	if data.IsEdit {
		title, nav = "Edit "+data.Draft.Name, "characters"
	}
	data.PageData = h.renderer.page(title, nav)
	data.Scores = scoreFields(data.Draft.Abilities)
	h.renderer.renderPageStatus(w, r, status, "form", data)
}

// renderFormOrError shows field errors inline for browsers and as a coded
// error for JSON clients.
func (h *Handlers) renderFormOrError(w http.ResponseWriter, r *http.Request, form FormPageData, err error) {
	if wantsJSON(r) {
		h.renderer.renderError(w, r, err)
		return
	}
	h.renderForm(w, r, http.StatusUnprocessableEntity, form)
}

// formParser reads typed form fields, collecting one error per field that
// does not parse.
type formParser struct {
	r    *http.Request
	errs []errors.FieldError
}

func (p *formParser) text(name string) string {
	return p.r.PostForm.Get(name)
}

func (p *formParser) intField(name, label string) int {
	s := strings.TrimSpace(p.r.PostForm.Get(name))
	if s == "" {
		p.errs = append(p.errs, errors.FieldError{Field: name, Message: label + " is required"})
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		p.errs = append(p.errs, errors.FieldError{Field: name, Message: label + " must be a whole number"})
		return 0
	}
	return v
}

func (p *formParser) draft() sheet.Draft {
	d := sheet.Draft{
		Name:       p.text("name"),
		Class:      p.text("class"),
		Race:       p.text("race"),
		Background: p.text("background"),
		Level:      p.intField("level", "Level"),
		MaxHP:      p.intField("hit_points_max", "Max HP"),
		ArmorClass: p.intField("armor_class", "Armor Class"),
		Speed:      p.intField("speed", "Speed"),
		Notes:      ptrString(strings.TrimSpace(p.text("notes"))),
	}
	for _, f := range scoreFields(sheet.Abilities{}) {
		v := p.intField(f.Name, f.Label)
		switch sheet.Ability(f.Name) {
		case sheet.Strength:
			d.Abilities.Strength = v
		case sheet.Dexterity:
			d.Abilities.Dexterity = v
		case sheet.Constitution:
			d.Abilities.Constitution = v
		case sheet.Intelligence:
			d.Abilities.Intelligence = v
		case sheet.Wisdom:
			d.Abilities.Wisdom = v
		case sheet.Charisma:
			d.Abilities.Charisma = v
		}
	}
	return d
}

// scoreFields lists the six ability inputs in sheet order.
func scoreFields(a sheet.Abilities) []ScoreField {
	fields := make([]ScoreField, 0, len(sheet.AllAbilities))
	for _, ab := range sheet.AllAbilities {
		score, _ := a.Score(ab)
		name := string(ab)
		fields = append(fields, ScoreField{
			Name:  name,
			Label: strings.ToUpper(name[:1]) + name[1:],
			Value: score,
		})
	}
	return fields
}

// mergeFieldErrors keys messages by field. The first message for a field wins,
// so parse errors take precedence over range errors on the zero value.
func mergeFieldErrors(primary, secondary []errors.FieldError) map[string]string {
	out := make(map[string]string, len(primary)+len(secondary))
	for _, list := range [][]errors.FieldError{primary, secondary} {
		for _, fe := range list {
			if _, ok := out[fe.Field]; !ok {
				out[fe.Field] = fe.Message
			}
		}
	}
	return out
}

// redirect sends the browser to target after a POST.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// sheetURL is the sheet page for a character.
func sheetURL(id string) string {
	return "/characters/" + url.PathEscape(id)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseFormInt parses an optional integer form field with a default value.
func parseFormInt(r *http.Request, name string, defaultVal int) int {
	s := strings.TrimSpace(r.FormValue(name))
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseFormFloat parses an optional decimal form field; empty is zero.
func parseFormFloat(r *http.Request, name string) (float64, error) {
	s := strings.TrimSpace(r.FormValue(name))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return v, nil
}

// parseBoolForm parses a boolean form field (checkbox or "true"/"1").
func parseBoolForm(r *http.Request, name string) bool {
	s := r.FormValue(name)
	return s == "true" || s == "1" || s == "on"
}

// ptrString returns a pointer to s if non-empty, nil otherwise.
func ptrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
