package command

import (
	"context"
	"time"

	"meridian/internal/database/mongodb/repository"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type EnsureIndexesHandler struct {
	logger     *zap.Logger
	repository *repository.MongoDBRepository
}

func NewEnsureIndexesHandler(logger *zap.Logger, repository *repository.MongoDBRepository) *EnsureIndexesHandler {
	return &EnsureIndexesHandler{
		logger:     logger,
		repository: repository,
	}
}

// Run 對所有 collection 建索引，部署前或升級後手動跑一次
func (handler *EnsureIndexesHandler) Run(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := handler.repository.EnsureAllIndexes(ctx); err != nil {
		handler.logger.Error("ensure indexes failed", zap.Error(err))
		cmd.PrintErrln("ensure indexes failed:", err)
		return
	}
	handler.logger.Info("all indexes ensured")
	cmd.Println("all indexes ensured")
}
