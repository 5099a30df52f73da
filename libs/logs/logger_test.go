package logs

import (
	"encoding/json"
	"path/filepath"
	"testing"
)

func TestLogger(t *testing.T) {
	configMap := map[string]interface{}{
		"filename":   filepath.Join(t.TempDir(), "levee.log"),
		"maxsize":    1,
		"maxbackups": 1,
		"maxage":     1,
		"level":      0,
	}
	conf, err := json.Marshal(configMap)
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}
	Init(conf)

	Log.Info("This is an info message")
	Log.Warn("This is a warning message")
	Log.Error("This is an error message")
}

func TestGetLoggerWithoutInit(t *testing.T) {
	logger := GetLogger("test")
	if logger == nil {
		t.Fatal("expected a usable logger")
	}
	logger.Info("module scoped message")
}
