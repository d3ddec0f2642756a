package mcp

import (
	"database/sql"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hpungsan/tome/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"character_create": {
		def:     characterCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreate },
	},
	"character_list": {
		def:     characterListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"character_fetch": {
		def:     characterFetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"character_latest": {
		def:     characterLatestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLatest },
	},
	"character_update": {
		def:     characterUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdate },
	},
	"character_delete": {
		def:     characterDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"character_damage": {
		def:     characterDamageToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDamage },
	},
	"character_heal": {
		def:     characterHealToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHeal },
	},
	"character_temp_hp": {
		def:     characterTempHPToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTempHP },
	},
	"character_rest": {
		def:     characterRestToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRest },
	},
	"skill_seed": {
		def:     skillSeedToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSkillSeed },
	},
	"skill_add": {
		def:     skillAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSkillAdd },
	},
	"skill_toggle": {
		def:     skillToggleToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSkillToggle },
	},
	"save_seed": {
		def:     saveSeedToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSaveSeed },
	},
	"save_toggle": {
		def:     saveToggleToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSaveToggle },
	},
	"feature_add": {
		def:     featureAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFeatureAdd },
	},
	"feature_use": {
		def:     featureUseToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFeatureUse },
	},
	"feature_remove": {
		def:     featureRemoveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFeatureRemove },
	},
	"trait_add": {
		def:     traitAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTraitAdd },
	},
	"trait_remove": {
		def:     traitRemoveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTraitRemove },
	},
	"item_add": {
		def:     itemAddToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleItemAdd },
	},
	"item_equip": {
		def:     itemEquipToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleItemEquip },
	},
	"item_remove": {
		def:     itemRemoveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleItemRemove },
	},
}

// AllToolNames returns every tool name, sorted.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with Tome tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, logger *zap.Logger, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"tome",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg, logger)

	disabled := make(map[string]bool, len(cfg.DisabledTools))
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}
	if unknown := ValidateDisabledTools(cfg.DisabledTools); len(unknown) > 0 {
		h.logger.Warn("ignoring unknown disabled tools", zap.Strings("tools", unknown))
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, cfg *config.Config, logger *zap.Logger, version string) error {
	s := NewServer(db, cfg, logger, version)
	return server.ServeStdio(s)
}
