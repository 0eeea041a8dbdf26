package service

import (
	"meridian/internal/service/areafile"

	"github.com/google/wire"
)

// Wire 依賴提供
var ProviderSet = wire.NewSet(
	NewBranchService,
	NewDivisionService,
	NewPositionService,
	NewServiceAreaService,
	NewPermissionService,
	NewImportExportService,
	NewHealthService,
	areafile.NewCodecRegistry,
)
