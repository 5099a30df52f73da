package conf

import (
	"encoding/json"
	"os"

	"github.com/BurntSushi/toml"
)

var config map[string]interface{}

// Init loads the TOML file named by the runConfig environment variable,
// or the explicit path when given.
func Init(paths ...string) {
	configPath := os.Getenv("runConfig")
	if len(paths) > 0 && paths[0] != "" {
		configPath = paths[0]
	}
	config = make(map[string]interface{})
	_, err := toml.DecodeFile(configPath, &config)
	if err != nil {
		panic(err)
	}
	globalInfo, ok := config["global"].(map[string]interface{})
	if !ok {
		panic("global configuration is missing in the config file")
	}
	appName, ok := globalInfo["app_name"].(string)
	if !ok {
		panic("app name is missing in the global configuration")
	}
	appVersion, ok := globalInfo["app_version"].(string)
	if !ok {
		panic("app version is missing in the global configuration")
	}

	os.Setenv("APP_NAME", appName)
	os.Setenv("APP_VERSION", appVersion)
}

// Get returns a top-level section as JSON bytes, for decoding with
// utils.Bytes2Struct.
func Get(key string) []byte {
	if config == nil {
		Init()
	}
	if value, exists := config[key]; exists {
		bytes, err := json.Marshal(value)
		if err != nil {
			return nil
		}
		return bytes
	}
	return nil
}
