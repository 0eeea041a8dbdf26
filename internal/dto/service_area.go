package dto

import (
	"time"
)

// 座標一律 [lon, lat]，與 GeoJSON 一致

// 建立服務區域；boundaries 與 center/coverageRadius 擇一必填：
// 只給中心點與半徑時，後端會生成近似圓多邊形
type CreateServiceAreaDto struct {
	Code           string      `json:"code" binding:"required"`
	Name           string      `json:"name" binding:"required"`
	Description    string      `json:"description,omitempty"`
	Boundaries     [][]float64 `json:"boundaries,omitempty"`     // 封閉外環
	Center         []float64   `json:"center,omitempty"`         // [lon, lat]
	CoverageRadius float64     `json:"coverageRadius,omitempty"` // 公里
	AreaType       string      `json:"areaType" binding:"required"`
	Pricing        *PricingDto `json:"pricing,omitempty"`
	Status         string      `json:"status,omitempty"`
}

// 更新服務區域
type UpdateServiceAreaDto struct {
	Name           *string     `json:"name,omitempty"`
	Description    *string     `json:"description,omitempty"`
	Boundaries     [][]float64 `json:"boundaries,omitempty"`
	Center         []float64   `json:"center,omitempty"`
	CoverageRadius *float64    `json:"coverageRadius,omitempty"`
	AreaType       *string     `json:"areaType,omitempty"`
}

type SpecialRateDto struct {
	Label     string  `json:"label" binding:"required"`
	Rate      float64 `json:"rate" binding:"required,gt=0"`
	StartHour int     `json:"startHour" binding:"min=0,max=23"`
	EndHour   int     `json:"endHour" binding:"min=0,max=23"`
}

type PricingDto struct {
	BasePrice    float64          `json:"basePrice" binding:"min=0"`
	PerKmRate    float64          `json:"perKmRate" binding:"min=0"`
	MinDistance  float64          `json:"minDistance" binding:"min=0"`
	MaxDistance  float64          `json:"maxDistance" binding:"min=0"`
	SpecialRates []SpecialRateDto `json:"specialRates,omitempty" binding:"omitempty,dive"`
}

// 指派分支據點
type AssignBranchDto struct {
	BranchID  string `json:"branchId" binding:"required"`
	IsPrimary bool   `json:"isPrimary,omitempty"`
}

type BranchAssignmentDto struct {
	BranchID   string    `json:"branchId"`
	IsPrimary  bool      `json:"isPrimary"`
	AssignedBy string    `json:"assignedBy"`
	AssignedAt time.Time `json:"assignedAt"`
}

type ServiceAreaResponseDto struct {
	ID             string                `json:"id"`
	Code           string                `json:"code"`
	Name           string                `json:"name"`
	Description    string                `json:"description,omitempty"`
	Boundaries     [][]float64           `json:"boundaries"`
	Center         []float64             `json:"center"`
	CoverageRadius float64               `json:"coverageRadius"`
	AreaType       string                `json:"areaType"`
	Branches       []BranchAssignmentDto `json:"branches,omitempty"`
	Pricing        PricingDto            `json:"pricing"`
	Status         string                `json:"status"`
	StatusHistory  []StatusChangeDto     `json:"statusHistory,omitempty"`
	Overlaps       []OverlapDto          `json:"overlaps,omitempty"` // 僅提示，不擋寫入
	CreatedBy      string                `json:"createdBy"`
	UpdatedBy      string                `json:"updatedBy,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// OverlapDto 重疊提示
type OverlapDto struct {
	AreaID   string `json:"areaId"`
	AreaCode string `json:"areaCode"`
	AreaName string `json:"areaName"`
}

// 座標查詢結果（含距離）
type NearbyAreaDto struct {
	ServiceAreaResponseDto
	DistanceKm float64 `json:"distanceKm"`
}

// ContainingAreaDto 點查詢的回應：附上離中心距離與是否在涵蓋半徑內
type ContainingAreaDto struct {
	ServiceAreaResponseDto
	DistanceKm     float64 `json:"distanceKm"`
	WithinCoverage bool    `json:"withinCoverage"`
}
