package dto

import (
	"time"
)

// 建立職位
type CreatePositionDto struct {
	Code        string `json:"code" binding:"required"`
	Title       string `json:"title" binding:"required"`
	DivisionID  string `json:"divisionId,omitempty"`
	ReportingTo string `json:"reportingTo,omitempty"` // 匯報對象，空值代表頂層職位
	Grade       int    `json:"grade,omitempty" binding:"omitempty,min=1"`
	Status      string `json:"status,omitempty"`
}

// 更新職位
type UpdatePositionDto struct {
	Title       *string `json:"title,omitempty"`
	DivisionID  *string `json:"divisionId,omitempty"`
	ReportingTo *string `json:"reportingTo,omitempty"` // 帶空字串代表移為頂層
	Grade       *int    `json:"grade,omitempty"`
}

type PositionResponseDto struct {
	ID            string            `json:"id"`
	Code          string            `json:"code"`
	Title         string            `json:"title"`
	DivisionID    string            `json:"divisionId,omitempty"`
	ReportingTo   string            `json:"reportingTo,omitempty"`
	Path          string            `json:"path"`
	Level         int               `json:"level"`
	Grade         int               `json:"grade,omitempty"`
	Status        string            `json:"status"`
	StatusHistory []StatusChangeDto `json:"statusHistory,omitempty"`
	CreatedBy     string            `json:"createdBy"`
	UpdatedBy     string            `json:"updatedBy,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

type PositionTreeDto struct {
	PositionResponseDto
	Children []*PositionTreeDto `json:"children,omitempty"`
}
