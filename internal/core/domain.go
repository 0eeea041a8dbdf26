package core

type Role string

const (
	RoleAdmin    Role = "admin"    // 管理員：略過權限檢查
	RoleManager  Role = "manager"  // 營運主管
	RoleOperator Role = "operator" // 一般操作人員
	RoleReadOnly Role = "readonly" // 只能查詢，不能改資料
)

// Resource 權限檢查用的資源名稱，與 REST 路徑一致
type Resource string

const (
	ResourceBranch      Resource = "branches"
	ResourceDivision    Resource = "divisions"
	ResourcePosition    Resource = "positions"
	ResourceServiceArea Resource = "service-areas"
	ResourceWildcard    Resource = "*"
)

// Action 權限檢查用的動作名稱
type Action string

const (
	ActionCreate   Action = "create"
	ActionRead     Action = "read"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionManage   Action = "manage" // 涵蓋該資源所有動作
	ActionWildcard Action = "*"
)

type Status string

const (
	StatusActive        Status = "active"        // 正常可用
	StatusInactive      Status = "inactive"      // 停用
	StatusSuspended     Status = "suspended"     // 暫停（調查或整修中）
	StatusClosed        Status = "closed"        // 永久關閉（分支）
	StatusRestructuring Status = "restructuring" // 重組中（部門）
	StatusVacant        Status = "vacant"        // 懸缺（職位）
	StatusDeprecated    Status = "deprecated"    // 已廢止（職位）
)

// AuditAction 異動歷史的動作種類
type AuditAction string

const (
	AuditActionCreate           AuditAction = "create"
	AuditActionUpdate           AuditAction = "update"
	AuditActionDelete           AuditAction = "delete"
	AuditActionStatusChange     AuditAction = "status_change"
	AuditActionResourceUpdate   AuditAction = "resource_update"
	AuditActionBranchAssignment AuditAction = "branch_assignment"
	AuditActionPricingUpdate    AuditAction = "pricing_update"
	AuditActionImport           AuditAction = "import"
)

// AreaType 服務區域類型
type AreaType string

const (
	AreaTypeDelivery AreaType = "delivery"
	AreaTypePickup   AreaType = "pickup"
	AreaTypeBoth     AreaType = "both"
)
