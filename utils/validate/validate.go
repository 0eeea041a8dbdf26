package validate

import (
	"encoding/json"
	"fmt"
	"meridian/internal/core"
	cErr "meridian/internal/pkg/error"
	"meridian/internal/pkg/request"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// 輸出格式化的 validator error（欄位 json 名/型別/規則列表）
func ValidationErrorResponse(c *gin.Context, obj interface{}, err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok {
		var b strings.Builder
		b.WriteString("Validation error:\n")
		for _, fe := range errs {
			field := jsonFieldName(obj, fe.StructField())
			ftype := fieldType(obj, fe.StructField())
			format := getFieldFormat(obj, fe.StructField())
			b.WriteString(fmt.Sprintf(" - Field \"%s\" (type: %s) failed the '%s' validation (rules: %v)\n",
				field, ftype, fe.Tag(), format))
		}
		return b.String()
	}
	return fmt.Sprintf("Validation error: %s", err.Error())
}

func jsonFieldName(obj interface{}, structField string) string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(structField); ok {
		tag := f.Tag.Get("json")
		if tag != "" && tag != "-" {
			return strings.Split(tag, ",")[0]
		}
	}
	return structField
}

func fieldType(obj interface{}, structField string) string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(structField); ok {
		return f.Type.Name()
	}
	return ""
}

func getFieldFormat(obj interface{}, structField string) []string {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if f, ok := t.FieldByName(structField); ok {
		tag := f.Tag.Get("binding")
		if tag != "" {
			return strings.Split(tag, ",")
		}
	}
	return nil
}
func ParseObjectID(c *gin.Context, key string) (id primitive.ObjectID, cause error, responseErr error) {
	id, err := primitive.ObjectIDFromHex(c.Param(key))
	if err != nil {
		return primitive.NilObjectID, err, cErr.ValidatePathParamsErr("invalid " + key)
	}
	return id, nil, nil
}

func BindAndValidate(c *gin.Context, req any) (cause error, responseErr error) {
	if err := c.ShouldBindJSON(req); err != nil {
		// DTO 有自訂訊息時優先使用
		if _, ok := req.(request.Validator); ok {
			return err, request.GetError(req, err)
		}
		return err, cErr.ValidateErr(ValidationErrorResponse(c, req, err))
	}
	return nil, nil
}
func GetInt64Query(c *gin.Context, key string, defaultVal int64) (int64, error) {
	if v := c.Query(key); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, err
		}
		return n, nil
	}
	return defaultVal, nil
}
func PayloadToMap(payload any) (map[string]any, error) {
	// 先轉 JSON
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	// 再轉回 map[string]any
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// ===== Role =====
var validRoles = []core.Role{
	core.RoleAdmin,
	core.RoleManager,
	core.RoleOperator,
	core.RoleReadOnly,
}

func IsValidRole(role string) bool {
	for _, v := range validRoles {
		if core.Role(role) == v {
			return true
		}
	}
	return false
}

// ===== Status =====
// 每種資源允許的狀態集合不同
var validBranchStatuses = []core.Status{
	core.StatusActive,
	core.StatusInactive,
	core.StatusSuspended,
	core.StatusClosed,
}

var validDivisionStatuses = []core.Status{
	core.StatusActive,
	core.StatusInactive,
	core.StatusRestructuring,
}

var validPositionStatuses = []core.Status{
	core.StatusActive,
	core.StatusInactive,
	core.StatusVacant,
	core.StatusDeprecated,
}

var validServiceAreaStatuses = []core.Status{
	core.StatusActive,
	core.StatusInactive,
	core.StatusSuspended,
}

func containsStatus(statuses []core.Status, status string) bool {
	for _, v := range statuses {
		if core.Status(status) == v {
			return true
		}
	}
	return false
}

func IsValidBranchStatus(status string) bool {
	return containsStatus(validBranchStatuses, status)
}

func IsValidDivisionStatus(status string) bool {
	return containsStatus(validDivisionStatuses, status)
}

func IsValidPositionStatus(status string) bool {
	return containsStatus(validPositionStatuses, status)
}

func IsValidServiceAreaStatus(status string) bool {
	return containsStatus(validServiceAreaStatuses, status)
}

// ===== AreaType =====
var validAreaTypes = []core.AreaType{
	core.AreaTypeDelivery,
	core.AreaTypePickup,
	core.AreaTypeBoth,
}

func IsValidAreaType(areaType string) bool {
	for _, v := range validAreaTypes {
		if core.AreaType(areaType) == v {
			return true
		}
	}
	return false
}

// ===== AuditAction =====
var validAuditActions = []core.AuditAction{
	core.AuditActionCreate,
	core.AuditActionUpdate,
	core.AuditActionDelete,
	core.AuditActionStatusChange,
	core.AuditActionResourceUpdate,
	core.AuditActionBranchAssignment,
	core.AuditActionPricingUpdate,
	core.AuditActionImport,
}

func IsValidAuditAction(action string) bool {
	for _, v := range validAuditActions {
		if core.AuditAction(action) == v {
			return true
		}
	}
	return false
}
