package dto

import (
	"time"

	"meridian/internal/pkg/request"
)

// 建立分支據點
type CreateBranchDto struct {
	Code     string `json:"code" binding:"required"` // 唯一代碼
	Name     string `json:"name" binding:"required"`
	ParentID string `json:"parentId,omitempty"` // 上層據點，空值代表根節點
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Status   string `json:"status,omitempty"` // 省略則為 active
}

func (d *CreateBranchDto) GetMessages() request.ValidatorMessages {
	return request.ValidatorMessages{
		"Code.required": "code 為必填欄位",
		"Name.required": "name 為必填欄位",
	}
}

// 更新分支據點；欄位用指標區分「沒帶」與「清空」
type UpdateBranchDto struct {
	Name     *string `json:"name,omitempty"`
	ParentID *string `json:"parentId,omitempty"` // 帶空字串代表移為根節點
	Address  *string `json:"address,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type BranchResponseDto struct {
	ID            string            `json:"id"`
	Code          string            `json:"code"`
	Name          string            `json:"name"`
	ParentID      string            `json:"parentId,omitempty"`
	Path          string            `json:"path"`
	Level         int               `json:"level"`
	Address       string            `json:"address,omitempty"`
	Phone         string            `json:"phone,omitempty"`
	Status        string            `json:"status"`
	StatusHistory []StatusChangeDto `json:"statusHistory,omitempty"`
	CreatedBy     string            `json:"createdBy"`
	UpdatedBy     string            `json:"updatedBy,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// BranchTreeDto 子樹展開回應
type BranchTreeDto struct {
	BranchResponseDto
	Children []*BranchTreeDto `json:"children,omitempty"`
}
