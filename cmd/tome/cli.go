package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/errors"
	"github.com/hpungsan/tome/internal/ops"
	"github.com/hpungsan/tome/internal/sheet"
	"github.com/hpungsan/tome/internal/web"
)

// newCLIApp creates the CLI application with all commands.
// Flags come before positional arguments: tome delete --yes <id>.
func newCLIApp(db *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.App {
	app := &cli.App{
		Name:    "tome",
		Usage:   "Local D&D character sheets",
		Version: Version,
		Commands: []*cli.Command{
			createCmd(db),
			listCmd(db),
			showCmd(db),
			updateCmd(db),
			deleteCmd(db),
			damageCmd(db),
			healCmd(db),
			tempHPCmd(db),
			restCmd(db),
			skillCmd(db),
			saveCmd(db),
			featureCmd(db),
			traitCmd(db),
			itemCmd(db),
			uiCmd(db, cfg, logger),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// draftFlags are shared by create and update. Update only applies the ones set.
func draftFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Character name"},
		&cli.StringFlag{Name: "class", Aliases: []string{"c"}, Usage: "Class, e.g. Fighter"},
		&cli.StringFlag{Name: "race", Aliases: []string{"r"}, Usage: "Race, e.g. Dwarf"},
		&cli.StringFlag{Name: "background", Aliases: []string{"b"}, Usage: "Background, e.g. Soldier"},
		&cli.IntFlag{Name: "level", Aliases: []string{"l"}, Value: 1, Usage: "Level 1-20"},
		&cli.IntFlag{Name: "str", Value: 10, Usage: "Strength score"},
		&cli.IntFlag{Name: "dex", Value: 10, Usage: "Dexterity score"},
		&cli.IntFlag{Name: "con", Value: 10, Usage: "Constitution score"},
		&cli.IntFlag{Name: "int", Value: 10, Usage: "Intelligence score"},
		&cli.IntFlag{Name: "wis", Value: 10, Usage: "Wisdom score"},
		&cli.IntFlag{Name: "cha", Value: 10, Usage: "Charisma score"},
		&cli.IntFlag{Name: "max-hp", Value: 10, Usage: "Maximum hit points"},
		&cli.IntFlag{Name: "ac", Value: 10, Usage: "Armor class"},
		&cli.IntFlag{Name: "speed", Value: 30, Usage: "Walking speed in feet"},
		&cli.StringFlag{Name: "notes", Usage: "Markdown notes (or pipe them via stdin)"},
	}
}

// createCmd creates the create command.
func createCmd(db *sql.DB) *cli.Command {
	flags := append(draftFlags(),
		&cli.BoolFlag{Name: "seed-skills", Usage: "Add the 18 standard skills"},
		&cli.BoolFlag{Name: "seed-saves", Usage: "Add one saving throw per ability"},
	)
	return &cli.Command{
		Name:  "create",
		Usage: "Create a new character",
		Flags: flags,
		Action: func(c *cli.Context) error {
			draft := sheet.Draft{
				Name:       c.String("name"),
				Class:      c.String("class"),
				Race:       c.String("race"),
				Background: c.String("background"),
				Level:      c.Int("level"),
				Abilities: sheet.Abilities{
					Strength:     c.Int("str"),
					Dexterity:    c.Int("dex"),
					Constitution: c.Int("con"),
					Intelligence: c.Int("int"),
					Wisdom:       c.Int("wis"),
					Charisma:     c.Int("cha"),
				},
				MaxHP:      c.Int("max-hp"),
				ArmorClass: c.Int("ac"),
				Speed:      c.Int("speed"),
			}
			notes, err := notesInput(c)
			if err != nil {
				return outputError(err)
			}
			draft.Notes = notes

			character, err := ops.Create(c.Context, db, draft)
			if err != nil {
				return outputError(err)
			}
			if c.Bool("seed-skills") {
				if _, err := ops.SeedSkills(c.Context, db, character.ID); err != nil {
					return outputError(err)
				}
			}
			if c.Bool("seed-saves") {
				if _, err := ops.SeedSavingThrows(c.Context, db, character.ID); err != nil {
					return outputError(err)
				}
			}
			if c.Bool("seed-skills") || c.Bool("seed-saves") {
				character, err = ops.Load(c.Context, db, character.ID)
				if err != nil {
					return outputError(err)
				}
			}
			return outputJSON(character)
		},
	}
}

// listCmd creates the list command.
func listCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List characters, most recently updated first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "Maximum results (max 100)"},
			&cli.IntFlag{Name: "offset", Value: 0, Usage: "Pagination offset"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.List(c.Context, db, ops.ListInput{
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// showOutput pairs the stored sheet with its derived display values.
type showOutput struct {
	Character *sheet.Character `json:"character"`
	View      sheet.SheetView  `json:"view"`
}

// showCmd creates the show command.
func showCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a character sheet",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "latest", Usage: "Show the most recently updated character"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("latest") {
				latest, err := ops.Latest(c.Context, db)
				if err != nil {
					return outputError(err)
				}
				if latest.Item == nil {
					return outputJSON(latest)
				}
				return outputJSON(showOutput{Character: latest.Item, View: sheet.Present(latest.Item)})
			}

			id, err := requireArg(c, 0, "id")
			if err != nil {
				return outputError(err)
			}
			character, err := ops.Load(c.Context, db, id)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(showOutput{Character: character, View: sheet.Present(character)})
		},
	}
}

// updateCmd creates the update command. Only flags given on the command
// line are applied.
func updateCmd(db *sql.DB) *cli.Command {
	flags := append(draftFlags(),
		&cli.IntFlag{Name: "hp", Usage: "Current hit points"},
		&cli.IntFlag{Name: "temp-hp", Usage: "Temporary hit points"},
		&cli.IntFlag{Name: "xp", Usage: "Experience points"},
	)
	return &cli.Command{
		Name:      "update",
		Usage:     "Update character fields",
		ArgsUsage: "<id>",
		Flags:     flags,
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, 0, "id")
			if err != nil {
				return outputError(err)
			}

			var patch sheet.Patch
			patch.Name = stringIfSet(c, "name")
			patch.Class = stringIfSet(c, "class")
			patch.Race = stringIfSet(c, "race")
			patch.Background = stringIfSet(c, "background")
			patch.Level = intIfSet(c, "level")
			patch.Strength = intIfSet(c, "str")
			patch.Dexterity = intIfSet(c, "dex")
			patch.Constitution = intIfSet(c, "con")
			patch.Intelligence = intIfSet(c, "int")
			patch.Wisdom = intIfSet(c, "wis")
			patch.Charisma = intIfSet(c, "cha")
			patch.HitPointsCurrent = intIfSet(c, "hp")
			patch.HitPointsMax = intIfSet(c, "max-hp")
			patch.HitPointsTemporary = intIfSet(c, "temp-hp")
			patch.ArmorClass = intIfSet(c, "ac")
			patch.Speed = intIfSet(c, "speed")
			patch.ExperiencePoints = intIfSet(c, "xp")

			if patch.Notes, err = notesInput(c); err != nil {
				return outputError(err)
			}

			character, err := ops.UpdateFields(c.Context, db, id, patch)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(character)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Permanently delete a character and everything it owns",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm the deletion"},
		},
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, 0, "id")
			if err != nil {
				return outputError(err)
			}
			if !c.Bool("yes") {
				return outputError(errors.NewInvalidRequest("deletion is permanent; pass --yes to confirm"))
			}
			output, err := ops.Delete(c.Context, db, id)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// hitPointsCmd builds a command taking <id> <amount>.
func hitPointsCmd(name, usage string, apply func(c *cli.Context, id string, amount int) (*ops.HitPointsOutput, error)) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<id> <amount>",
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, 0, "id")
			if err != nil {
				return outputError(err)
			}
			amount, err := intArg(c, 1, "amount")
			if err != nil {
				return outputError(err)
			}
			output, err := apply(c, id, amount)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

func damageCmd(db *sql.DB) *cli.Command {
	return hitPointsCmd("damage", "Apply damage (never below 0 HP)",
		func(c *cli.Context, id string, amount int) (*ops.HitPointsOutput, error) {
			return ops.ApplyDamage(c.Context, db, id, amount)
		})
}

func healCmd(db *sql.DB) *cli.Command {
	return hitPointsCmd("heal", "Heal (never above max HP)",
		func(c *cli.Context, id string, amount int) (*ops.HitPointsOutput, error) {
			return ops.ApplyHeal(c.Context, db, id, amount)
		})
}

func tempHPCmd(db *sql.DB) *cli.Command {
	return hitPointsCmd("temp-hp", "Add or remove temporary hit points",
		func(c *cli.Context, id string, delta int) (*ops.HitPointsOutput, error) {
			return ops.AdjustTempHP(c.Context, db, id, delta)
		})
}

// restCmd creates the rest command.
func restCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "rest",
		Usage:     "Take a short or long rest",
		ArgsUsage: "<id> <short|long>",
		Action: func(c *cli.Context) error {
			id, err := requireArg(c, 0, "id")
			if err != nil {
				return outputError(err)
			}
			restType, err := requireArg(c, 1, "rest type")
			if err != nil {
				return outputError(err)
			}
			output, err := ops.Rest(c.Context, db, id, restType)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// skillCmd groups skill subcommands.
func skillCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "skill",
		Usage: "Manage skills",
		Subcommands: []*cli.Command{
			{
				Name:      "seed",
				Usage:     "Add the 18 standard skills",
				ArgsUsage: "<character-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "character id")
					if err != nil {
						return outputError(err)
					}
					output, err := ops.SeedSkills(c.Context, db, id)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "add",
				Usage:     "Add a custom skill",
				ArgsUsage: "<character-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Skill name"},
					&cli.StringFlag{Name: "ability", Aliases: []string{"a"}, Usage: "Governing ability, e.g. DEX"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Optional description"},
				},
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "character id")
					if err != nil {
						return outputError(err)
					}
					output, err := ops.AddCustomSkill(c.Context, db, ops.AddSkillInput{
						CharacterID: id,
						Name:        c.String("name"),
						Ability:     c.String("ability"),
						Description: stringIfSet(c, "description"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "toggle",
				Usage:     "Advance a skill: none, proficient, expertise, none",
				ArgsUsage: "<skill-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "skill id")
					if err != nil {
						return outputError(err)
					}
					output, err := ops.ToggleSkill(c.Context, db, id)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// saveCmd groups saving throw subcommands.
func saveCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Manage saving throws",
		Subcommands: []*cli.Command{
			{
				Name:      "seed",
				Usage:     "Add one saving throw per ability",
				ArgsUsage: "<character-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "character id")
					if err != nil {
						return outputError(err)
					}
					output, err := ops.SeedSavingThrows(c.Context, db, id)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "toggle",
				Usage:     "Toggle saving throw proficiency",
				ArgsUsage: "<save-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "saving throw id")
					if err != nil {
						return outputError(err)
					}
					output, err := ops.ToggleSavingThrow(c.Context, db, id)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// featureCmd groups feature subcommands.
func featureCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "feature",
		Usage: "Manage class and race features",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a feature",
				ArgsUsage: "<character-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Feature name"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "What it does"},
					&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "Where it comes from, e.g. Fighter 2"},
					&cli.IntFlag{Name: "level", Aliases: []string{"l"}, Value: 1, Usage: "Level gained"},
					&cli.IntFlag{Name: "uses", Usage: "Uses per rest (0 = unlimited)"},
					&cli.StringFlag{Name: "rest", Usage: "Rest that restores uses: short|long"},
				},
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "character id")
					if err != nil {
						return outputError(err)
					}
					output, err := ops.AddFeature(c.Context, db, ops.AddFeatureInput{
						CharacterID: id,
						Name:        c.String("name"),
						Description: c.String("description"),
						Source:      c.String("source"),
						Level:       c.Int("level"),
						UsesMax:     c.Int("uses"),
						RestType:    c.String("rest"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "use",
				Usage:     "Spend one use of a limited-use feature",
				ArgsUsage: "<feature-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "feature id")
					if err != nil {
						return outputError(err)
					}
					output, err := ops.UseFeature(c.Context, db, id)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a feature",
				ArgsUsage: "<feature-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "feature id")
					if err != nil {
						return outputError(err)
					}
					output, err := ops.RemoveFeature(c.Context, db, id)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// traitCmd groups trait subcommands.
func traitCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "trait",
		Usage: "Manage racial and background traits",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a trait",
				ArgsUsage: "<character-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Trait name"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "What it does"},
					&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "Where it comes from"},
				},
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "character id")
					if err != nil {
						return outputError(err)
					}
					output, err := ops.AddTrait(c.Context, db, ops.AddTraitInput{
						CharacterID: id,
						Name:        c.String("name"),
						Description: c.String("description"),
						Source:      c.String("source"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a trait",
				ArgsUsage: "<trait-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "trait id")
					if err != nil {
						return outputError(err)
					}
					output, err := ops.RemoveTrait(c.Context, db, id)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// itemCmd groups inventory subcommands.
func itemCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "item",
		Usage: "Manage inventory",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add an item",
				ArgsUsage: "<character-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Item name"},
					&cli.IntFlag{Name: "quantity", Aliases: []string{"q"}, Value: 1, Usage: "Count"},
					&cli.Float64Flag{Name: "weight", Aliases: []string{"w"}, Usage: "Weight per unit in pounds"},
					&cli.Float64Flag{Name: "value", Usage: "Value per unit"},
					&cli.StringFlag{Name: "currency", Value: "gp", Usage: "cp|sp|gp|pp"},
					&cli.StringFlag{Name: "category", Value: "misc", Usage: "weapon|armor|tool|consumable|misc"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Optional description"},
					&cli.StringFlag{Name: "properties", Aliases: []string{"p"}, Usage: "Comma-separated properties, e.g. finesse,light"},
					&cli.BoolFlag{Name: "equipped", Aliases: []string{"e"}, Usage: "Mark the item equipped"},
				},
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "character id")
					if err != nil {
						return outputError(err)
					}
					output, err := ops.AddItem(c.Context, db, ops.AddItemInput{
						CharacterID: id,
						Name:        c.String("name"),
						Quantity:    c.Int("quantity"),
						Weight:      c.Float64("weight"),
						ValueAmount: c.Float64("value"),
						Currency:    c.String("currency"),
						Category:    c.String("category"),
						Description: stringIfSet(c, "description"),
						Properties:  parseList(c.String("properties")),
						Equipped:    c.Bool("equipped"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "equip",
				Usage:     "Equip an item (--off to unequip)",
				ArgsUsage: "<item-id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "off", Usage: "Unequip instead"},
				},
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "item id")
					if err != nil {
						return outputError(err)
					}
					output, err := ops.SetEquipped(c.Context, db, id, !c.Bool("off"))
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove an item",
				ArgsUsage: "<item-id>",
				Action: func(c *cli.Context) error {
					id, err := requireArg(c, 0, "item id")
					if err != nil {
						return outputError(err)
					}
					output, err := ops.RemoveItem(c.Context, db, id)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// uiCmd serves the browser UI until interrupted.
func uiCmd(db *sql.DB, cfg *config.Config, logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Serve the character sheet UI in a browser",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Listen address (default from config, 127.0.0.1)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (default from config, 7420)"},
		},
		Action: func(c *cli.Context) error {
			uiCfg := *cfg
			if c.IsSet("bind") {
				uiCfg.UIBind = c.String("bind")
			}
			if c.IsSet("port") {
				uiCfg.UIPort = c.Int("port")
			}
			srv, err := web.NewServer(db, &uiCfg, logger, Version)
			if err != nil {
				return outputError(err)
			}
			if err := web.Run(srv, logger); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if tomeErr, ok := err.(*errors.TomeError); ok {
		msg := fmt.Sprintf("[%s] %s", tomeErr.Code, tomeErr.Message)
		for _, f := range errors.Fields(err) {
			msg += fmt.Sprintf("\n  %s: %s", f.Field, f.Message)
		}
		return cli.Exit(msg, 1)
	}
	return cli.Exit(err.Error(), 1)
}

// requireArg returns positional argument i, or INVALID_REQUEST naming it.
func requireArg(c *cli.Context, i int, name string) (string, error) {
	v := strings.TrimSpace(c.Args().Get(i))
	if v == "" {
		return "", errors.NewInvalidRequest(name + " is required")
	}
	return v, nil
}

// intArg parses positional argument i as a whole number.
func intArg(c *cli.Context, i int, name string) (int, error) {
	v, err := requireArg(c, i, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.NewInvalidRequest(name + " must be a whole number")
	}
	return n, nil
}

func stringIfSet(c *cli.Context, name string) *string {
	if !c.IsSet(name) {
		return nil
	}
	v := c.String(name)
	return &v
}

func intIfSet(c *cli.Context, name string) *int {
	if !c.IsSet(name) {
		return nil
	}
	v := c.Int(name)
	return &v
}

// notesInput takes --notes if given, else piped stdin, else nothing.
func notesInput(c *cli.Context) (*string, error) {
	if c.IsSet("notes") {
		return stringIfSet(c, "notes"), nil
	}
	if !stdinHasData() {
		return nil, nil
	}
	notes, err := readStdin(maxNotesBytes)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if notes == "" {
		return nil, nil
	}
	return &notes, nil
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// maxNotesBytes bounds what is read from stdin.
const maxNotesBytes = 1 << 20

// readStdin reads all of stdin, failing if it is longer than limit bytes.
func readStdin(limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(os.Stdin, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("stdin exceeds %d bytes", limit)
	}
	return strings.TrimSpace(string(data)), nil
}

// parseList splits a comma-separated string, dropping blanks.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
