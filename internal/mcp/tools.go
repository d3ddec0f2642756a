package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions. Argument names match the request structs in handlers.go.

var characterCreateToolDef = mcp.NewTool(
	"character_create",
	mcp.WithDescription("Create a new character sheet. Hit points start full. Set seed_skills to add the 18 standard skills."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Character name (1-50 characters)")),
	mcp.WithString("class", mcp.Required(), mcp.Description("Class, e.g. Fighter")),
	mcp.WithString("race", mcp.Required(), mcp.Description("Race, e.g. Dwarf")),
	mcp.WithString("background", mcp.Required(), mcp.Description("Background, e.g. Soldier")),
	mcp.WithNumber("level", mcp.Description("Level 1-20 (default 1)"), mcp.Min(1), mcp.Max(20)),
	mcp.WithNumber("strength", mcp.Description("Score 1-20 (default 10)")),
	mcp.WithNumber("dexterity", mcp.Description("Score 1-20 (default 10)")),
	mcp.WithNumber("constitution", mcp.Description("Score 1-20 (default 10)")),
	mcp.WithNumber("intelligence", mcp.Description("Score 1-20 (default 10)")),
	mcp.WithNumber("wisdom", mcp.Description("Score 1-20 (default 10)")),
	mcp.WithNumber("charisma", mcp.Description("Score 1-20 (default 10)")),
	mcp.WithNumber("hit_points_max", mcp.Description("Maximum hit points (default 10)"), mcp.Min(1)),
	mcp.WithNumber("armor_class", mcp.Description("Armor class (default 10)"), mcp.Min(1)),
	mcp.WithNumber("speed", mcp.Description("Walking speed in feet (default 30)"), mcp.Min(0)),
	mcp.WithString("notes", mcp.Description("Free-form markdown notes")),
	mcp.WithBoolean("seed_skills", mcp.Description("Add the standard skill list")),
	mcp.WithBoolean("seed_saving_throws", mcp.Description("Add one saving throw per ability")),
)

var characterListToolDef = mcp.NewTool(
	"character_list",
	mcp.WithDescription("List characters, most recently updated first."),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Rows to skip")),
)

var characterFetchToolDef = mcp.NewTool(
	"character_fetch",
	mcp.WithDescription("Fetch a full character sheet with skills, saving throws, features, traits, inventory, and computed display values."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Character ID")),
)

var characterLatestToolDef = mcp.NewTool(
	"character_latest",
	mcp.WithDescription("Fetch the most recently updated character, or null if there are none."),
)

var characterUpdateToolDef = mcp.NewTool(
	"character_update",
	mcp.WithDescription("Update scalar character fields. Omitted fields are unchanged. Hit points are re-clamped."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Character ID")),
	mcp.WithString("name", mcp.Description("Character name")),
	mcp.WithString("class", mcp.Description("Class")),
	mcp.WithString("race", mcp.Description("Race")),
	mcp.WithString("background", mcp.Description("Background")),
	mcp.WithNumber("level", mcp.Description("Level 1-20")),
	mcp.WithNumber("strength", mcp.Description("Score 1-20")),
	mcp.WithNumber("dexterity", mcp.Description("Score 1-20")),
	mcp.WithNumber("constitution", mcp.Description("Score 1-20")),
	mcp.WithNumber("intelligence", mcp.Description("Score 1-20")),
	mcp.WithNumber("wisdom", mcp.Description("Score 1-20")),
	mcp.WithNumber("charisma", mcp.Description("Score 1-20")),
	mcp.WithNumber("hit_points_current", mcp.Description("Current hit points")),
	mcp.WithNumber("hit_points_max", mcp.Description("Maximum hit points")),
	mcp.WithNumber("hit_points_temporary", mcp.Description("Temporary hit points")),
	mcp.WithNumber("armor_class", mcp.Description("Armor class")),
	mcp.WithNumber("speed", mcp.Description("Speed in feet")),
	mcp.WithNumber("experience_points", mcp.Description("Experience points")),
	mcp.WithString("notes", mcp.Description("Markdown notes; empty string clears")),
)

var characterDeleteToolDef = mcp.NewTool(
	"character_delete",
	mcp.WithDescription("Permanently delete a character and everything it owns. Requires confirm: true."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Character ID")),
	mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true")),
)

var characterDamageToolDef = mcp.NewTool(
	"character_damage",
	mcp.WithDescription("Apply damage. Current hit points never drop below 0; temporary hit points are not consumed."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Character ID")),
	mcp.WithNumber("amount", mcp.Required(), mcp.Description("Damage taken"), mcp.Min(0)),
)

var characterHealToolDef = mcp.NewTool(
	"character_heal",
	mcp.WithDescription("Heal. Current hit points never exceed the maximum."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Character ID")),
	mcp.WithNumber("amount", mcp.Required(), mcp.Description("Hit points restored"), mcp.Min(0)),
)

var characterTempHPToolDef = mcp.NewTool(
	"character_temp_hp",
	mcp.WithDescription("Add (or with a negative delta, remove) temporary hit points. Never below 0."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Character ID")),
	mcp.WithNumber("delta", mcp.Required(), mcp.Description("Change in temporary hit points")),
)

var characterRestToolDef = mcp.NewTool(
	"character_rest",
	mcp.WithDescription("Take a rest. Short restores short-rest features; long restores all limited-use features."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Character ID")),
	mcp.WithString("type", mcp.Required(), mcp.Enum("short", "long")),
)

var skillSeedToolDef = mcp.NewTool(
	"skill_seed",
	mcp.WithDescription("Add the 18 standard skills. Skills the character already has are skipped."),
	mcp.WithString("character_id", mcp.Required(), mcp.Description("Character ID")),
)

var skillAddToolDef = mcp.NewTool(
	"skill_add",
	mcp.WithDescription("Add a custom skill. Names are unique per character, ignoring case and spacing."),
	mcp.WithString("character_id", mcp.Required(), mcp.Description("Character ID")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Skill name")),
	mcp.WithString("ability", mcp.Required(), mcp.Description("Governing ability: full name or STR/DEX/CON/INT/WIS/CHA")),
	mcp.WithString("description", mcp.Description("Optional description")),
)

var skillToggleToolDef = mcp.NewTool(
	"skill_toggle",
	mcp.WithDescription("Advance a skill one step: none, proficient, expertise, back to none."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Skill ID")),
)

var saveSeedToolDef = mcp.NewTool(
	"save_seed",
	mcp.WithDescription("Add one saving throw per ability. Existing ones are skipped."),
	mcp.WithString("character_id", mcp.Required(), mcp.Description("Character ID")),
)

var saveToggleToolDef = mcp.NewTool(
	"save_toggle",
	mcp.WithDescription("Toggle proficiency on a saving throw."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Saving throw ID")),
)

var featureAddToolDef = mcp.NewTool(
	"feature_add",
	mcp.WithDescription("Add a class, race, or custom feature. Set uses_max and rest_type for limited-use features."),
	mcp.WithString("character_id", mcp.Required(), mcp.Description("Character ID")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Feature name")),
	mcp.WithString("description", mcp.Description("What it does")),
	mcp.WithString("source", mcp.Description("Where it comes from, e.g. Fighter 2")),
	mcp.WithNumber("level", mcp.Description("Level gained (default 1)")),
	mcp.WithNumber("uses_max", mcp.Description("Uses per rest; omit for unlimited"), mcp.Min(0)),
	mcp.WithString("rest_type", mcp.Enum("short", "long"), mcp.Description("Rest that restores uses")),
)

var featureUseToolDef = mcp.NewTool(
	"feature_use",
	mcp.WithDescription("Spend one use of a limited-use feature."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Feature ID")),
)

var featureRemoveToolDef = mcp.NewTool(
	"feature_remove",
	mcp.WithDescription("Remove a feature."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Feature ID")),
)

var traitAddToolDef = mcp.NewTool(
	"trait_add",
	mcp.WithDescription("Add a racial or background trait."),
	mcp.WithString("character_id", mcp.Required(), mcp.Description("Character ID")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Trait name")),
	mcp.WithString("description", mcp.Description("What it does")),
	mcp.WithString("source", mcp.Description("Where it comes from")),
)

var traitRemoveToolDef = mcp.NewTool(
	"trait_remove",
	mcp.WithDescription("Remove a trait."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Trait ID")),
)

var itemAddToolDef = mcp.NewTool(
	"item_add",
	mcp.WithDescription("Add an inventory item."),
	mcp.WithString("character_id", mcp.Required(), mcp.Description("Character ID")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Item name")),
	mcp.WithNumber("quantity", mcp.Description("Count (default 1)"), mcp.Min(1)),
	mcp.WithNumber("weight", mcp.Description("Weight per unit in pounds"), mcp.Min(0)),
	mcp.WithNumber("value", mcp.Description("Value per unit"), mcp.Min(0)),
	mcp.WithString("currency", mcp.Enum("cp", "sp", "gp", "pp"), mcp.Description("Currency of value (default gp)")),
	mcp.WithString("category", mcp.Enum("weapon", "armor", "tool", "consumable", "misc"), mcp.Description("Default misc")),
	mcp.WithString("description", mcp.Description("Optional description")),
	mcp.WithArray("properties", mcp.Description("Item properties, e.g. finesse"), mcp.WithStringItems()),
	mcp.WithBoolean("equipped", mcp.Description("Whether the item is equipped")),
)

var itemEquipToolDef = mcp.NewTool(
	"item_equip",
	mcp.WithDescription("Equip or unequip an item."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item ID")),
	mcp.WithBoolean("equipped", mcp.Required(), mcp.Description("true to equip, false to unequip")),
)

var itemRemoveToolDef = mcp.NewTool(
	"item_remove",
	mcp.WithDescription("Remove an inventory item."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Item ID")),
)
