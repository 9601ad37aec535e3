package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeepMergeJSON(t *testing.T) {
	old := map[string]interface{}{
		"seo": map[string]interface{}{"title": "Folio", "description": "portfolio"},
		"mail": map[string]interface{}{
			"enable": false,
			"smtp":   map[string]interface{}{"host": "smtp.example.com", "port": float64(465)},
		},
		"deny_words": []interface{}{"a", "b"},
	}
	patch := map[string]interface{}{
		"mail": map[string]interface{}{
			"enable": true,
			"smtp":   map[string]interface{}{"port": float64(587)},
		},
		"deny_words": []interface{}{"c"},
	}

	merged := deepMergeJSON(old, patch).(map[string]interface{})

	seo := merged["seo"].(map[string]interface{})
	assert.Equal(t, "Folio", seo["title"], "untouched sections survive")

	mail := merged["mail"].(map[string]interface{})
	assert.Equal(t, true, mail["enable"])
	smtp := mail["smtp"].(map[string]interface{})
	assert.Equal(t, float64(587), smtp["port"])
	assert.Equal(t, "smtp.example.com", smtp["host"], "nested siblings survive")

	assert.Equal(t, []interface{}{"c"}, merged["deny_words"], "arrays are replaced, not merged")
}

func TestDeepMergeJSONScalarReplaces(t *testing.T) {
	assert.Equal(t, "new", deepMergeJSON("old", "new"))
	assert.Equal(t, map[string]interface{}{"a": float64(1)},
		deepMergeJSON("scalar", map[string]interface{}{"a": float64(1)}))
}

func TestCamelToSnakeKey(t *testing.T) {
	tests := map[string]string{
		"seo":            "seo",
		"webUrl":         "web_url",
		"WebURL":         "web_url",
		"newsletter":     "newsletter",
		"extraDenyWords": "extra_deny_words",
		"already_snake":  "already_snake",
		" padded ":       "padded",
		"":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, camelToSnakeKey(in), in)
	}
}
