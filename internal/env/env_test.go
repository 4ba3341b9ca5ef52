package env

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFiles_Defaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "CFG_FILE", "SEND_DMS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	if err := LoadEnvFiles(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadEnvFiles failed: %v", err)
	}

	if Value.CfgFile != "cfg.yaml" {
		t.Fatalf("unexpected CfgFile: got=%q want=%q", Value.CfgFile, "cfg.yaml")
	}
	if Value.ServerPort != 8080 {
		t.Fatalf("unexpected ServerPort: got=%d want=8080", Value.ServerPort)
	}
	if Value.SendDMs != nil {
		t.Fatalf("SendDMs should be unset")
	}
}

func TestLoadEnvFiles_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "BOT_TOKEN=abc123\nSEND_DMS=false\nDEBUG=true\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	// t.Setenv restores the variables godotenv sets.
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("SEND_DMS", "")
	t.Setenv("DEBUG", "")
	os.Unsetenv("BOT_TOKEN")
	os.Unsetenv("SEND_DMS")
	os.Unsetenv("DEBUG")

	if err := LoadEnvFiles(path); err != nil {
		t.Fatalf("LoadEnvFiles failed: %v", err)
	}

	if Value.BotToken != "abc123" {
		t.Fatalf("unexpected BotToken: got=%q", Value.BotToken)
	}
	if !Value.DebugMode {
		t.Fatalf("DebugMode should be true")
	}
	if Value.SendDMs == nil || *Value.SendDMs {
		t.Fatalf("SendDMs should be false, got=%v", Value.SendDMs)
	}
}
