package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ichi0g0y/spin-the-wheel/internal/shared/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// child returns the value node stored under key in a mapping node.
func child(parent *yaml.Node, key string) *yaml.Node {
	if parent == nil || parent.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(parent.Content); i += 2 {
		if parent.Content[i].Value == key {
			return parent.Content[i+1]
		}
	}
	return nil
}

// scalar returns the non-empty scalar under key.
func scalar(parent *yaml.Node, key string) (string, bool) {
	node := child(parent, key)
	switch {
	case node == nil:
		logger.Debug("Config key not found", zap.String("key", key))
		return "", false
	case node.Kind != yaml.ScalarNode:
		logger.Warn("Config key is not a scalar", zap.String("key", key))
		return "", false
	case strings.TrimSpace(node.Value) == "":
		logger.Warn("Config key is empty", zap.String("key", key))
		return "", false
	}
	logger.Debug("Config key found", zap.String("key", key), zap.String("value", node.Value))
	return node.Value, true
}

func parseInt64(parent *yaml.Node, key string) (int64, bool) {
	raw, ok := scalar(parent, key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		logger.Debug("Failed to convert config value", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	return v, true
}

func parseUint32(parent *yaml.Node, key string) (uint32, bool) {
	raw, ok := scalar(parent, key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		logger.Debug("Failed to convert config value", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	return uint32(v), true
}

func parseBool(parent *yaml.Node, key string) (bool, bool) {
	node := child(parent, key)
	if node == nil || node.Kind != yaml.ScalarNode {
		return false, false
	}
	var v bool
	if err := node.Decode(&v); err != nil {
		logger.Debug("Failed to convert config value", zap.String("key", key), zap.Error(err))
		return false, false
	}
	return v, true
}

// parseDuration accepts whole milliseconds or a Go duration string.
func parseDuration(parent *yaml.Node, key string) (time.Duration, bool) {
	raw, ok := scalar(parent, key)
	if !ok {
		return 0, false
	}
	d, err := toDuration(raw)
	if err != nil {
		logger.Debug("Failed to convert config value", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	return d, true
}

func toDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("negative duration %d", ms)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", raw)
	}
	return d, nil
}
