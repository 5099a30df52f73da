package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnakeToCamel(t *testing.T) {
	assert.Equal(t, "firstName", SnakeToCamel("first_name"))
	assert.Equal(t, "pageSize", SnakeToCamel("page_size"))
	assert.Equal(t, "id", SnakeToCamel("id"))
	assert.Equal(t, "revenueUsd", SnakeToCamel("revenue_usd"))
}

func TestCamelToSnake(t *testing.T) {
	assert.Equal(t, "first_name", CamelToSnake("firstName"))
	assert.Equal(t, "page_size", CamelToSnake("pageSize"))
	assert.Equal(t, "id", CamelToSnake("id"))
}

func TestCamelizeKeysNested(t *testing.T) {
	in := map[string]interface{}{
		"first_name": "Ada",
		"custom_fields": map[string]interface{}{
			"signup_source": "web",
		},
		"tags": []interface{}{
			map[string]interface{}{"tag_name": "vip"},
		},
	}
	out := CamelizeKeys(in).(map[string]interface{})
	assert.Equal(t, "Ada", out["firstName"])
	nested := out["customFields"].(map[string]interface{})
	assert.Equal(t, "web", nested["signupSource"])
	inList := out["tags"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "vip", inList["tagName"])
}

func TestSnakifyKeysRoundTrip(t *testing.T) {
	in := map[string]interface{}{
		"firstName": "Ada",
		"pageSize":  float64(25),
	}
	out := SnakifyKeys(in).(map[string]interface{})
	assert.Equal(t, "Ada", out["first_name"])
	assert.Equal(t, float64(25), out["page_size"])
}

func TestHMACSignVerify(t *testing.T) {
	sign := GenerateHMAC("key123:1700000000", "secret")
	assert.True(t, VerifyHMAC("key123:1700000000", "secret", sign))
	assert.False(t, VerifyHMAC("key123:1700000001", "secret", sign))
	assert.False(t, VerifyHMAC("key123:1700000000", "wrong", sign))
}
