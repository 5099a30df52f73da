package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/almatuck/levee-go/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
[global]
app_name = "levee-bridge"
app_version = "1.0.0"

[logger]
filename = "logs/levee.log"
maxsize = 60
level = 0

[websocket]
read_limit = 1048576
allowed_origins = ["https://app.levee.dev"]
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	return path
}

func TestInitAndGet(t *testing.T) {
	Init(writeConfig(t))

	assert.Equal(t, "levee-bridge", os.Getenv("APP_NAME"))
	assert.Equal(t, "1.0.0", os.Getenv("APP_VERSION"))

	type loggerSection struct {
		Filename string `json:"filename"`
		MaxSize  int    `json:"maxsize"`
		Level    int    `json:"level"`
	}
	section, err := utils.Bytes2Struct[loggerSection](Get("logger"))
	require.NoError(t, err)
	assert.Equal(t, "logs/levee.log", section.Filename)
	assert.Equal(t, 60, section.MaxSize)

	assert.Nil(t, Get("missing"))
}
