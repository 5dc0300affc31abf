package router

import (
	"github.com/oksasatya/inventory-sales-api/internal/application"
	"github.com/oksasatya/inventory-sales-api/internal/container"
	mongoinfra "github.com/oksasatya/inventory-sales-api/internal/infrastructure/mongodb"
	handlers "github.com/oksasatya/inventory-sales-api/internal/interface/http"
	"github.com/oksasatya/inventory-sales-api/internal/router/modules"
)

func outbound() application.Outbound {
	cfg := container.GetConfig()
	return application.Outbound{Timeout: cfg.OutboundTimeout, Retries: cfg.OutboundRetries}
}

func buildAuthHandler() *handlers.AuthHandler {
	cfg := container.GetConfig()
	repo := mongoinfra.NewUserRepository(container.GetMongo())

	service := application.NewAuthService(
		repo,
		container.GetJWT(),
		container.GetMedia(),
		container.GetMailer(),
		container.GetLogger(),
		cfg.AppName,
		cfg.ResetCodeTTL,
		outbound(),
	)
	return handlers.NewAuthHandler(service, container.GetLogger())
}

func buildProductHandler() *handlers.ProductHandler {
	cfg := container.GetConfig()
	repo := mongoinfra.NewProductRepository(container.GetMongo())

	service := application.NewProductService(
		repo,
		container.GetMedia(),
		container.GetLogger(),
		container.GetES(),
		cfg.ESProductsIndex,
		cfg.StaleAfterDays,
		outbound(),
	)
	service.Users = mongoinfra.NewUserRepository(container.GetMongo())
	return handlers.NewProductHandler(service, container.GetLogger())
}

func buildCategoryHandler() *handlers.CategoryHandler {
	db := container.GetMongo()
	service := application.NewCategoryService(
		mongoinfra.NewCategoryRepository(db),
		mongoinfra.NewOutcomeRepository(db),
		container.GetLogger(),
	)
	return handlers.NewCategoryHandler(service, container.GetLogger())
}

func buildDashboardHandler() *handlers.DashboardHandler {
	service := application.NewDashboardService(mongoinfra.NewProductRepository(container.GetMongo()), container.GetLogger())
	return handlers.NewDashboardHandler(service, container.GetLogger())
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	jwt := container.GetJWT()
	rdb := container.GetRedis()

	r.Add(modules.NewHealthModule(container.GetMongo()))
	r.Add(modules.NewAuthModule(buildAuthHandler(), jwt, rdb))
	r.Add(modules.NewProductModule(buildProductHandler(), jwt, rdb))
	r.Add(modules.NewCategoryModule(buildCategoryHandler(), jwt))
	r.Add(modules.NewDashboardModule(buildDashboardHandler(), jwt))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb, container.GetConfig().DebugCIDRs()))
	}
}
