package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func testContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParseDefaults(t *testing.T) {
	p := Parse(testContext(""))
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestParseComputesOffset(t *testing.T) {
	p := Parse(testContext("page=3&limit=4"))
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 4, p.Limit)
	assert.Equal(t, 8, p.Offset)
}

func TestParseClampsOutOfRangeValues(t *testing.T) {
	p := Parse(testContext("page=0&limit=0"))
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)

	p = Parse(testContext("page=-5&limit=9999"))
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)

	p = Parse(testContext("page=abc&limit=xyz"))
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
}

func TestIncludeDeletedFlag(t *testing.T) {
	assert.False(t, IncludeDeleted(testContext("")))
	assert.False(t, IncludeDeleted(testContext("include_deleted=false")))
	assert.False(t, IncludeDeleted(testContext("include_deleted=nonsense")))
	assert.True(t, IncludeDeleted(testContext("include_deleted=true")))
	assert.True(t, IncludeDeleted(testContext("include_deleted=1")))
}
