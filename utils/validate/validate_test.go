package validate

import (
	"net/http/httptest"
	"strings"
	"testing"

	"meridian/internal/dto"
	cErr "meridian/internal/pkg/error"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestContext(t *testing.T) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	return c
}

func TestParseObjectID(t *testing.T) {
	c := newTestContext(t)
	want := primitive.NewObjectID()
	c.Params = gin.Params{{Key: "id", Value: want.Hex()}}

	id, cause, responseErr := ParseObjectID(c, "id")
	require.NoError(t, cause)
	require.NoError(t, responseErr)
	assert.Equal(t, want, id)
}

func TestParseObjectID_invalid(t *testing.T) {
	c := newTestContext(t)
	c.Params = gin.Params{{Key: "id", Value: "not-an-object-id"}}

	_, cause, responseErr := ParseObjectID(c, "id")
	assert.Error(t, cause)
	assert.Error(t, responseErr)
}

func TestBindAndValidate_customMessages(t *testing.T) {
	c := newTestContext(t)
	c.Request = httptest.NewRequest("POST", "/api/v1/branches", strings.NewReader(`{"name":"台北一店"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req dto.CreateBranchDto
	cause, responseErr := BindAndValidate(c, &req)
	require.Error(t, cause)
	require.Error(t, responseErr)

	// DTO 自訂訊息優先
	appErr, ok := responseErr.(*cErr.Error)
	require.True(t, ok)
	assert.Equal(t, "code 為必填欄位", appErr.ErrorDesc())
}

func TestBindAndValidate_ok(t *testing.T) {
	c := newTestContext(t)
	c.Request = httptest.NewRequest("POST", "/api/v1/branches", strings.NewReader(`{"code":"tp-01","name":"台北一店"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req dto.CreateBranchDto
	cause, responseErr := BindAndValidate(c, &req)
	assert.NoError(t, cause)
	assert.NoError(t, responseErr)
	assert.Equal(t, "tp-01", req.Code)
}

func TestGetInt64Query(t *testing.T) {
	c := newTestContext(t)
	c.Request = httptest.NewRequest("GET", "/api/v1/branches?page=3", nil)

	page, err := GetInt64Query(c, "page", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page)

	size, err := GetInt64Query(c, "size", 20)
	require.NoError(t, err)
	assert.Equal(t, int64(20), size)

	// gin caches parsed query params per context, so use a fresh context
	// for the second request instead of reassigning c.Request.
	c = newTestContext(t)
	c.Request = httptest.NewRequest("GET", "/api/v1/branches?page=abc", nil)
	_, err = GetInt64Query(c, "page", 1)
	assert.Error(t, err)
}

func TestStatusValidators(t *testing.T) {
	assert.True(t, IsValidBranchStatus("active"))
	assert.True(t, IsValidBranchStatus("closed"))
	assert.False(t, IsValidBranchStatus("restructuring"))

	assert.True(t, IsValidDivisionStatus("restructuring"))
	assert.False(t, IsValidDivisionStatus("vacant"))

	assert.True(t, IsValidPositionStatus("vacant"))
	assert.False(t, IsValidPositionStatus("closed"))

	assert.True(t, IsValidServiceAreaStatus("suspended"))
	assert.False(t, IsValidServiceAreaStatus("deprecated"))
}

func TestIsValidAreaType(t *testing.T) {
	for _, areaType := range []string{"delivery", "pickup", "both"} {
		assert.True(t, IsValidAreaType(areaType), areaType)
	}
	assert.False(t, IsValidAreaType("warehouse"))
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("admin"))
	assert.True(t, IsValidRole("readonly"))
	assert.False(t, IsValidRole("superuser"))
}

func TestPayloadToMap(t *testing.T) {
	m, err := PayloadToMap(struct {
		Code string `json:"code"`
		Size int    `json:"size"`
	}{Code: "tp-01", Size: 2})
	require.NoError(t, err)
	assert.Equal(t, "tp-01", m["code"])
	assert.Equal(t, float64(2), m["size"])
}
