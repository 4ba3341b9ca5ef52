// Package config loads the bot's YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"github.com/ichi0g0y/spin-the-wheel/internal/types"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Overrides are values from the environment that take precedence over the
// file.
type Overrides struct {
	BotToken string
	SendDMs  *bool
}

// Load reads and validates the config file at path. Failures are returned as
// *ExitError.
func Load(path string, ov Overrides) (*types.Config, error) {
	logger.Info("Reading config!", zap.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Error(fmt.Sprintf("Config file %s not found", path))
			return nil, exitError(ExitConfigFileNotFound, ErrFileNotFound, err)
		}
		return nil, exitError(ExitConfigMalformed, ErrMalformed, err)
	}
	return Parse(data, ov)
}

// Parse validates a YAML document. Invalid optional sections disable their
// feature instead of failing.
func Parse(data []byte, ov Overrides) (*types.Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		logger.Error("Failed to parse config", zap.Error(err))
		return nil, exitError(ExitConfigMalformed, ErrMalformed, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		logger.Error("Config root is not a mapping")
		return nil, exitError(ExitConfigMalformed, ErrMalformed, errors.New("root is not a mapping"))
	}
	root := doc.Content[0]

	cfg := &types.Config{
		CommandPrefix: types.DefaultCommandPrefix,
		SendDMs:       true,
	}

	token, _ := scalar(root, "bot-token")
	if ov.BotToken != "" {
		token = ov.BotToken
	}
	if strings.TrimSpace(token) == "" {
		logger.Error("Bot Token not found in config! Exiting!")
		return nil, exitError(ExitBotTokenMissing, ErrBotTokenMissing, nil)
	}
	cfg.BotToken = token

	if prefix, ok := scalar(root, "command-prefix"); ok {
		cfg.CommandPrefix = prefix
	} else {
		logger.Warn("Command prefix not set, using default", zap.String("prefix", cfg.CommandPrefix))
	}

	if dms, ok := parseBool(root, "send-dms"); ok {
		cfg.SendDMs = dms
	}
	if ov.SendDMs != nil {
		cfg.SendDMs = *ov.SendDMs
	}

	if node := child(root, "big-red-button"); node == nil {
		logger.Warn("No configuration for the button. It will not be enabled")
	} else if node.Kind != yaml.MappingNode {
		logger.Warn("Configuration for the big red button is malformed. It will not be enabled.")
	} else {
		cfg.Button = parseButton(node)
	}

	if node := child(root, "spin"); node == nil {
		logger.Warn("No configuration for the spin function. It will not be enabled")
	} else if node.Kind != yaml.MappingNode {
		logger.Warn("Configuration for the spin function is malformed. It will not be enabled.")
	} else {
		cfg.Spin = parseSpin(node)
	}

	if !cfg.Spin.Enabled && !cfg.Button.Enabled {
		logger.Error("No features enabled! Exiting.")
		return nil, exitError(ExitNoFeatures, ErrNoFeatures, nil)
	}

	logger.Info("Parsing complete!",
		zap.Bool("spin", cfg.Spin.Enabled),
		zap.Int("prizes", len(cfg.Spin.Prizes)),
		zap.Bool("consolation", cfg.Spin.ConsolationEnabled),
		zap.Bool("penalty", cfg.Spin.Penalty.Enabled),
		zap.Bool("button", cfg.Button.Enabled))
	return cfg, nil
}

func parseButton(node *yaml.Node) types.ButtonConfig {
	b := types.ButtonConfig{
		ImagePath:        types.DefaultButtonImagePath,
		PressedImagePath: types.DefaultPressedImagePath,
	}

	var ok bool
	if b.RoleID, ok = parseInt64(node, "role-id"); !ok {
		logger.Warn("Button role-id missing. The button will not be enabled")
		return types.ButtonConfig{}
	}
	if b.ActiveTime, ok = parseDuration(node, "active-time"); !ok {
		logger.Warn("Button active-time missing. The button will not be enabled")
		return types.ButtonConfig{}
	}
	if b.RoleTime, ok = parseDuration(node, "role-time"); !ok {
		logger.Warn("Button role-time missing. The button will not be enabled")
		return types.ButtonConfig{}
	}
	if b.Message, ok = scalar(node, "message"); !ok {
		logger.Warn("Button message missing. The button will not be enabled")
		return types.ButtonConfig{}
	}

	b.IsSilencing, _ = parseBool(node, "is-silencing-role")
	b.MoveBackAfterSilence, _ = parseBool(node, "move-user-back-after-silence")
	if path, ok := scalar(node, "image-resource"); ok {
		b.ImagePath = path
	}
	if path, ok := scalar(node, "pressed-image-resource"); ok {
		b.PressedImagePath = path
	}

	b.Enabled = true
	logger.Debug("Big red button configured", zap.Int64("role_id", b.RoleID), zap.Duration("active_time", b.ActiveTime))
	return b
}

func parseSpin(node *yaml.Node) types.SpinConfig {
	var s types.SpinConfig

	if cons := child(node, "consolation"); cons == nil {
		logger.Warn("No consolation configuration. It will not be enabled")
	} else if cons.Kind != yaml.MappingNode {
		logger.Warn("Consolation configuration is malformed. It will not be enabled")
	} else if p, ok := parseConsolation(cons); ok {
		s.Consolation = p
		s.ConsolationEnabled = true
	}

	reset, resetOK := parseDuration(node, "spin-penalty-reset")
	threshold, thresholdOK := parseUint32(node, "consecutive-spins-before-penalty")
	if resetOK && thresholdOK {
		s.Penalty = types.PenaltyConfig{Enabled: true, ResetTime: reset, SpinsBeforePenalty: threshold}
	} else {
		logger.Info("Consecutive spin penalty will not be enabled.")
	}

	seen := map[string]bool{types.ConsolationPrizeName: true}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		if !strings.HasPrefix(key, "prize") || value.Kind != yaml.MappingNode {
			continue
		}

		p, ok := parsePrize(key, value)
		if !ok {
			logger.Warn("Could not parse prize config", zap.String("key", key))
			continue
		}
		if seen[p.Name] {
			logger.Warn("Duplicate prize name, skipping", zap.String("key", key), zap.String("name", p.Name))
			continue
		}
		seen[p.Name] = true
		s.Prizes = append(s.Prizes, p)
		logger.Debug("Successfully parsed prize", zap.String("key", key), zap.String("name", p.Name))
	}

	if len(s.Prizes) == 0 {
		logger.Warn("No prizes configured. Spin function will not be enabled.")
		return s
	}
	s.Enabled = true
	return s
}

func parseConsolation(node *yaml.Node) (types.Prize, bool) {
	p := types.Prize{
		Name: types.ConsolationPrizeName,
		Type: types.PrizeTypeRole,
		Odds: 1,
	}

	var ok bool
	if p.Message, ok = scalar(node, "message"); !ok {
		logger.Warn("Consolation message not found. Consolation prize will not be enabled")
		return types.Prize{}, false
	}
	if p.Description, ok = scalar(node, "description"); !ok {
		logger.Warn("Consolation description not found. Consolation prize will not be enabled")
		return types.Prize{}, false
	}
	if p.RoleID, ok = parseInt64(node, "role-id"); !ok {
		logger.Warn("Consolation role ID not found. Consolation prize will not be enabled")
		return types.Prize{}, false
	}
	parseRoleOptions(node, &p)
	return p, true
}

func parsePrize(key string, node *yaml.Node) (types.Prize, bool) {
	var p types.Prize

	kind, ok := scalar(node, "type")
	if !ok {
		logger.Warn("Prize does not define a valid prize type", zap.String("key", key))
		return p, false
	}
	if p.Type = types.ParsePrizeType(kind); p.Type != types.PrizeTypeRole {
		logger.Warn("Prize does not define a valid prize type", zap.String("key", key), zap.String("type", kind))
		return p, false
	}

	if p.Name, ok = scalar(node, "name"); !ok {
		logger.Warn("Prize does not define a name", zap.String("key", key))
		return p, false
	}
	if p.Description, ok = scalar(node, "description"); !ok {
		logger.Warn("Prize does not define a description", zap.String("key", key))
		return p, false
	}
	p.ImagePath, _ = scalar(node, "image-resource")
	if p.Message, ok = scalar(node, "message"); !ok {
		logger.Warn("Prize does not define a message", zap.String("key", key))
		return p, false
	}
	if p.Odds, ok = parseUint32(node, "odds"); !ok || p.Odds == 0 {
		logger.Warn("Prize does not define valid odds", zap.String("key", key))
		return p, false
	}
	if p.RoleID, ok = parseInt64(node, "role-id"); !ok {
		logger.Warn("Prize does not define a role-id", zap.String("key", key))
		return p, false
	}
	parseRoleOptions(node, &p)
	return p, true
}

func parseRoleOptions(node *yaml.Node, p *types.Prize) {
	p.RoleTime, _ = parseDuration(node, "role-time")
	p.RoleTimeVariation, _ = parseDuration(node, "role-time-variation")
	p.IsSilencing, _ = parseBool(node, "is-silencing-role")
	p.MoveBackAfterSilence, _ = parseBool(node, "move-user-back-after-silence")
}
