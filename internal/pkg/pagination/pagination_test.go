package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func queryFrom(rawQuery string) Query {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return FromContext(c)
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name     string
		rawQuery string
		want     Query
	}{
		{"defaults", "", Query{Page: 1, Size: 10}},
		{"explicit", "page=3&size=25", Query{Page: 3, Size: 25}},
		{"zero page clamps", "page=0", Query{Page: 1, Size: 10}},
		{"negative size clamps", "size=-5", Query{Page: 1, Size: 10}},
		{"size capped", "size=5000", Query{Page: 1, Size: 100}},
		{"garbage falls back", "page=abc&size=xyz", Query{Page: 1, Size: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, queryFrom(tt.rawQuery))
		})
	}
}
