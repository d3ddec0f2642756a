package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/tome/internal/config"
	"github.com/hpungsan/tome/internal/db"
	"github.com/hpungsan/tome/internal/ops"
	"github.com/hpungsan/tome/internal/sheet"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func testApp(database *sql.DB) *cli.App {
	return newCLIApp(database, config.DefaultConfig(), zap.NewNop())
}

// run executes the CLI with args and returns what it wrote to stdout.
func run(t *testing.T, app *cli.App, args ...string) (string, error) {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := app.Run(append([]string{"tome"}, args...))

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout
	return buf.String(), runErr
}

func decodeJSON[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), "output: %s", out)
	return v
}

func seedCharacter(t *testing.T, database *sql.DB) *sheet.Character {
	t.Helper()
	draft := sheet.DefaultDraft()
	draft.Name = "Bruenor"
	draft.Class = "Fighter"
	draft.Race = "Dwarf"
	draft.Background = "Soldier"
	draft.MaxHP = 12
	c, err := ops.Create(context.Background(), database, draft)
	require.NoError(t, err)
	return c
}

func TestCLICreate(t *testing.T) {
	database := setupTestDB(t)
	app := testApp(database)

	out, err := run(t, app, "create",
		"--name=Vex", "--class=Ranger", "--race=Half-Elf", "--background=Outlander",
		"--level=3", "--dex=16", "--max-hp=24", "--notes=Has a bear",
		"--seed-skills", "--seed-saves")
	require.NoError(t, err)

	c := decodeJSON[sheet.Character](t, out)
	require.NotEmpty(t, c.ID)
	require.Equal(t, "Vex", c.Name)
	require.Equal(t, 3, c.Level)
	require.Equal(t, 16, c.Abilities.Dexterity)
	require.Equal(t, 10, c.Abilities.Strength)
	require.Equal(t, 24, c.HitPoints.Current)
	require.Len(t, c.Skills, 18)
	require.Len(t, c.SavingThrows, 6)
	require.NotNil(t, c.Notes)
	require.Equal(t, "Has a bear", *c.Notes)
}

func TestCLICreate_ValidationFailed(t *testing.T) {
	database := setupTestDB(t)
	app := testApp(database)

	_, err := run(t, app, "create", "--class=Ranger", "--race=Elf", "--background=Sage", "--str=25")
	require.Error(t, err)
	require.Contains(t, err.Error(), "[VALIDATION_FAILED]")
	require.Contains(t, err.Error(), "name:")
	require.Contains(t, err.Error(), "strength:")
}

func TestCLIListAndShow(t *testing.T) {
	database := setupTestDB(t)
	c := seedCharacter(t, database)
	app := testApp(database)

	t.Run("list", func(t *testing.T) {
		out, err := run(t, app, "list", "--limit=5")
		require.NoError(t, err)
		list := decodeJSON[ops.ListOutput](t, out)
		require.Len(t, list.Items, 1)
		require.Equal(t, c.ID, list.Items[0].ID)
		require.Equal(t, 5, list.Pagination.Limit)
	})

	t.Run("show by id", func(t *testing.T) {
		out, err := run(t, app, "show", c.ID)
		require.NoError(t, err)
		got := decodeJSON[showOutput](t, out)
		require.Equal(t, c.ID, got.Character.ID)
		require.Equal(t, "12 / 12", got.View.HitPoints)
	})

	t.Run("show latest", func(t *testing.T) {
		out, err := run(t, app, "show", "--latest")
		require.NoError(t, err)
		got := decodeJSON[showOutput](t, out)
		require.Equal(t, c.ID, got.Character.ID)
	})

	t.Run("show missing id", func(t *testing.T) {
		_, err := run(t, app, "show")
		require.Error(t, err)
		require.Contains(t, err.Error(), "[INVALID_REQUEST]")
	})
}

func TestCLIShowLatest_Empty(t *testing.T) {
	database := setupTestDB(t)
	out, err := run(t, testApp(database), "show", "--latest")
	require.NoError(t, err)
	got := decodeJSON[ops.LatestOutput](t, out)
	require.Nil(t, got.Item)
}

func TestCLIUpdate(t *testing.T) {
	database := setupTestDB(t)
	c := seedCharacter(t, database)
	app := testApp(database)

	out, err := run(t, app, "update", "--level=2", "--xp=300", "--max-hp=8", c.ID)
	require.NoError(t, err)

	got := decodeJSON[sheet.Character](t, out)
	require.Equal(t, 2, got.Level)
	require.Equal(t, 300, got.ExperiencePoints)
	require.Equal(t, 8, got.HitPoints.Max)
	require.Equal(t, 8, got.HitPoints.Current, "current re-clamped to the new max")
	require.Equal(t, "Bruenor", got.Name, "unset flags leave fields alone")
	require.Equal(t, 10, got.Abilities.Strength)
}

func TestCLIHitPoints(t *testing.T) {
	database := setupTestDB(t)
	c := seedCharacter(t, database)
	app := testApp(database)

	out, err := run(t, app, "damage", c.ID, "20")
	require.NoError(t, err)
	hp := decodeJSON[ops.HitPointsOutput](t, out)
	require.Equal(t, 0, hp.HitPoints.Current)

	out, err = run(t, app, "heal", c.ID, "5")
	require.NoError(t, err)
	hp = decodeJSON[ops.HitPointsOutput](t, out)
	require.Equal(t, 5, hp.HitPoints.Current)

	out, err = run(t, app, "temp-hp", c.ID, "4")
	require.NoError(t, err)
	hp = decodeJSON[ops.HitPointsOutput](t, out)
	require.Equal(t, 4, hp.HitPoints.Temporary)

	out, err = run(t, app, "temp-hp", c.ID, "-9")
	require.NoError(t, err)
	hp = decodeJSON[ops.HitPointsOutput](t, out)
	require.Equal(t, 0, hp.HitPoints.Temporary)

	_, err = run(t, app, "damage", c.ID, "lots")
	require.Error(t, err)
	require.Contains(t, err.Error(), "amount must be a whole number")
}

func TestCLISkillsAndSaves(t *testing.T) {
	database := setupTestDB(t)
	c := seedCharacter(t, database)
	app := testApp(database)

	out, err := run(t, app, "skill", "seed", c.ID)
	require.NoError(t, err)
	require.Equal(t, 18, decodeJSON[ops.SeedOutput](t, out).Inserted)

	out, err = run(t, app, "skill", "add", "--name=Brewing", "--ability=INT", c.ID)
	require.NoError(t, err)
	skill := decodeJSON[sheet.Skill](t, out)
	require.Equal(t, "Brewing", skill.Name)

	_, err = run(t, app, "skill", "add", "--name=  brewing ", "--ability=WIS", c.ID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "[SKILL_ALREADY_EXISTS]")

	out, err = run(t, app, "skill", "toggle", skill.ID)
	require.NoError(t, err)
	require.True(t, decodeJSON[sheet.Skill](t, out).Proficient)

	out, err = run(t, app, "save", "seed", c.ID)
	require.NoError(t, err)
	require.Equal(t, 6, decodeJSON[ops.SeedOutput](t, out).Inserted)

	loaded, err := ops.Load(context.Background(), database, c.ID)
	require.NoError(t, err)
	out, err = run(t, app, "save", "toggle", loaded.SavingThrows[0].ID)
	require.NoError(t, err)
	require.True(t, decodeJSON[sheet.SavingThrow](t, out).Proficient)
}

func TestCLIFeaturesAndRest(t *testing.T) {
	database := setupTestDB(t)
	c := seedCharacter(t, database)
	app := testApp(database)

	out, err := run(t, app, "feature", "add", "--name=Second Wind", "--source=Fighter 1", "--uses=1", "--rest=short", c.ID)
	require.NoError(t, err)
	feature := decodeJSON[sheet.Feature](t, out)

	out, err = run(t, app, "feature", "use", feature.ID)
	require.NoError(t, err)
	used := decodeJSON[sheet.Feature](t, out)
	require.NotNil(t, used.Uses)
	require.Equal(t, 0, used.Uses.Current)

	_, err = run(t, app, "feature", "use", feature.ID)
	require.Error(t, err)
	require.Contains(t, err.Error(), "[NO_USES_LEFT]")

	out, err = run(t, app, "rest", c.ID, "short")
	require.NoError(t, err)
	require.Equal(t, 1, decodeJSON[ops.RestOutput](t, out).Restored)

	_, err = run(t, app, "rest", c.ID, "nap")
	require.Error(t, err)

	out, err = run(t, app, "feature", "remove", feature.ID)
	require.NoError(t, err)
	require.True(t, decodeJSON[ops.DeleteOutput](t, out).Deleted)
}

func TestCLITraitsAndItems(t *testing.T) {
	database := setupTestDB(t)
	c := seedCharacter(t, database)
	app := testApp(database)

	out, err := run(t, app, "trait", "add", "--name=Darkvision", "--source=Dwarf", c.ID)
	require.NoError(t, err)
	trait := decodeJSON[sheet.Trait](t, out)
	require.Equal(t, "Darkvision", trait.Name)

	out, err = run(t, app, "trait", "remove", trait.ID)
	require.NoError(t, err)
	require.True(t, decodeJSON[ops.DeleteOutput](t, out).Deleted)

	out, err = run(t, app, "item", "add", "--name=Handaxe", "--quantity=2", "--weight=2",
		"--value=5", "--category=weapon", "--properties=light, thrown", c.ID)
	require.NoError(t, err)
	item := decodeJSON[sheet.InventoryItem](t, out)
	require.Equal(t, 2, item.Quantity)
	require.Equal(t, []string{"light", "thrown"}, item.Properties)
	require.False(t, item.Equipped)

	out, err = run(t, app, "item", "equip", item.ID)
	require.NoError(t, err)
	require.True(t, decodeJSON[sheet.InventoryItem](t, out).Equipped)

	out, err = run(t, app, "item", "equip", "--off", item.ID)
	require.NoError(t, err)
	require.False(t, decodeJSON[sheet.InventoryItem](t, out).Equipped)

	_, err = run(t, app, "item", "add", "--name=Gem", "--currency=zz", c.ID)
	require.Error(t, err)

	out, err = run(t, app, "item", "remove", item.ID)
	require.NoError(t, err)
	require.True(t, decodeJSON[ops.DeleteOutput](t, out).Deleted)
}

func TestCLIDelete(t *testing.T) {
	database := setupTestDB(t)
	c := seedCharacter(t, database)
	app := testApp(database)

	t.Run("requires confirmation", func(t *testing.T) {
		_, err := run(t, app, "delete", c.ID)
		require.Error(t, err)
		require.Contains(t, err.Error(), "--yes")
	})

	t.Run("deletes", func(t *testing.T) {
		out, err := run(t, app, "delete", "--yes", c.ID)
		require.NoError(t, err)
		got := decodeJSON[ops.DeleteOutput](t, out)
		require.True(t, got.Deleted)
		require.Equal(t, c.ID, got.ID)
	})

	t.Run("not found afterwards", func(t *testing.T) {
		_, err := run(t, app, "show", c.ID)
		require.Error(t, err)
		require.Contains(t, err.Error(), "[NOT_FOUND]")
	})
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "single", input: "finesse", expected: []string{"finesse"}},
		{name: "multiple", input: "finesse,light", expected: []string{"finesse", "light"}},
		{name: "spaces trimmed", input: " finesse , light ", expected: []string{"finesse", "light"}},
		{name: "blanks dropped", input: "finesse,,light,", expected: []string{"finesse", "light"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, parseList(tt.input))
		})
	}
}

func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{name: "no args", args: []string{"tome"}, expected: false},
		{name: "create command", args: []string{"tome", "create"}, expected: true},
		{name: "ui command", args: []string{"tome", "ui"}, expected: true},
		{name: "item group", args: []string{"tome", "item"}, expected: true},
		{name: "help flag", args: []string{"tome", "--help"}, expected: true},
		{name: "version flag", args: []string{"tome", "--version"}, expected: true},
		{name: "short help flag", args: []string{"tome", "-h"}, expected: true},
		{name: "short version flag", args: []string{"tome", "-v"}, expected: true},
		{name: "unknown arg defaults to MCP", args: []string{"tome", "--unknown"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			require.Equal(t, tt.expected, isCLIMode())
		})
	}
}

func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{name: "no args", args: []string{"tome"}, expected: false},
		{name: "help flag", args: []string{"tome", "--help"}, expected: true},
		{name: "short help flag", args: []string{"tome", "-h"}, expected: true},
		{name: "version flag", args: []string{"tome", "--version"}, expected: true},
		{name: "short version flag", args: []string{"tome", "-v"}, expected: true},
		{name: "help subcommand", args: []string{"tome", "help"}, expected: true},
		{name: "create command is not help", args: []string{"tome", "create"}, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			require.Equal(t, tt.expected, isHelpOrVersion())
		})
	}
}

func TestReadStdinWithLimit(t *testing.T) {
	withStdin := func(t *testing.T, content string) {
		t.Helper()
		r, w, err := os.Pipe()
		require.NoError(t, err)
		go func() {
			_, _ = w.WriteString(content)
			w.Close()
		}()
		oldStdin := os.Stdin
		os.Stdin = r
		t.Cleanup(func() { os.Stdin = oldStdin })
	}

	t.Run("within limit", func(t *testing.T) {
		withStdin(t, "  small content\n")
		result, err := readStdin(1000)
		require.NoError(t, err)
		require.Equal(t, "small content", result)
	})

	t.Run("exceeds limit", func(t *testing.T) {
		withStdin(t, strings.Repeat("x", 100))
		_, err := readStdin(50)
		require.Error(t, err)
	})
}
