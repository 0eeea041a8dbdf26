package dto

import (
	"time"
)

// 建立部門
type CreateDivisionDto struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	BranchID    string `json:"branchId,omitempty"` // 隸屬據點，可空
	ParentID    string `json:"parentId,omitempty"` // 上層部門，空值代表根節點
	Status      string `json:"status,omitempty"`
}

// 更新部門
type UpdateDivisionDto struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	BranchID    *string `json:"branchId,omitempty"` // 帶空字串代表解除隸屬
	ParentID    *string `json:"parentId,omitempty"` // 帶空字串代表移為根節點
}

type DivisionResponseDto struct {
	ID            string            `json:"id"`
	Code          string            `json:"code"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	BranchID      string            `json:"branchId,omitempty"`
	ParentID      string            `json:"parentId,omitempty"`
	Path          string            `json:"path"`
	Level         int               `json:"level"`
	Status        string            `json:"status"`
	StatusHistory []StatusChangeDto `json:"statusHistory,omitempty"`
	CreatedBy     string            `json:"createdBy"`
	UpdatedBy     string            `json:"updatedBy,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

type DivisionTreeDto struct {
	DivisionResponseDto
	Children []*DivisionTreeDto `json:"children,omitempty"`
}
