//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/food-waste-predictor/internal/bootstrap"
	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
	"github.com/yanqian/food-waste-predictor/internal/domain/records"
	"github.com/yanqian/food-waste-predictor/internal/infra/config"
	httpiface "github.com/yanqian/food-waste-predictor/internal/interface/http"
	"github.com/yanqian/food-waste-predictor/pkg/logger"
	"github.com/yanqian/food-waste-predictor/pkg/metrics"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewRegistry,
		bootstrap.NewRecordStore,
		bootstrap.NewChatClient,
		bootstrap.NewAdviceCache,
		bootstrap.NewTokenCounter,
		bootstrap.NewAdvisorConfig,
		bootstrap.NewAugmenter,
		bootstrap.NewReferenceTable,
		prediction.NewService,
		records.NewService,
		provideGuard,
		provideMCPHandler,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
