package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"path", "/about",
		"authorization", "Bearer abc",
		"user_id", "42",
		"form_values", map[string]interface{}{"name": "Ada"},
		"dangling",
	})
	assert.Equal(t, "/about", out[1])
	assert.Equal(t, "[REDACTED]", out[3])
	assert.Contains(t, out[5], "hash:")
	assert.Equal(t, "[REDACTED]", out[7])
	assert.Equal(t, "dangling", out[8])
}

func TestSanitizeValueNestedJWT(t *testing.T) {
	jwtish := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NSJ9.sig"
	got := sanitizeValue("meta", map[string]interface{}{"note": jwtish, "slug": "about"})
	m := got.(map[string]interface{})
	assert.Equal(t, "[REDACTED]", m["note"])
	assert.Equal(t, "about", m["slug"])
}
