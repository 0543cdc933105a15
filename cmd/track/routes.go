package main

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"log/slog"
	advance_stage "flexopack/http-server/advance-stage"
	getbom "flexopack/http-server/bom/get"
	savebom "flexopack/http-server/bom/save"
	getorders "flexopack/http-server/orders/get"
	saveorders "flexopack/http-server/orders/save"
	upprogress "flexopack/http-server/progress/update"
	getquality "flexopack/http-server/quality/get"
	savequality "flexopack/http-server/quality/save"
	getstages "flexopack/http-server/stages/get"
	savestages "flexopack/http-server/stages/save"
	upstages "flexopack/http-server/stages/update"
	"flexopack/internal/config"
	"flexopack/internal/middleware/auth"
	"flexopack/internal/service"
	"flexopack/internal/storage/mysql"
)

func routes(cfg config.Config, log *slog.Logger, storage *mysql.Storage,
	catalog *service.CatalogService, boms *service.BOMService, quality *service.QualityService,
	workflow *service.WorkflowService, progression *service.ProgressionService, orders *service.OrderService) *chi.Mux {

	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8081", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// Маршрут организации: активные этапы по порядку
	router.Get("/api/stages", getstages.GetActiveStages(log, catalog))

	// Заказы: создание с генерацией UIORN и снимком маршрута
	router.Post("/api/orders", saveorders.SaveOrder(log, orders))
	router.Get("/api/orders", getorders.GetOrders(log, storage))
	router.Get("/api/orders/order/{uiorn}", getorders.GetOrderDetails(log, storage, progression))

	// Операторские действия над этапом заказа
	router.Put("/api/progress/{orderId}/{stageId}", upprogress.UpdateStageProgress(log, workflow))

	// Автопродвижение на следующий доступный этап
	router.Post("/api/orders/{orderId}/advance", advance_stage.AdvanceOrder(log, progression))

	// Рецептуры
	router.Post("/api/bom", savebom.SubmitBOM(log, boms))
	router.Get("/api/bom/{itemCode}", getbom.GetActiveBOM(log, storage))

	// Контроль качества: точки заводит и закрывает инспекция
	router.Post("/api/quality/checkpoint", savequality.SaveCheckpoint(log, quality))
	router.Put("/api/quality/checkpoint/{refCode}", savequality.UpdateCheckpointResult(log, quality))
	router.Get("/api/quality/{orderId}", getquality.GetOrderCheckpoints(log, quality))

	// Админка справочника этапов
	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))

	adminRouter.Post("/stages/new", savestages.SaveStageAdmin(log, catalog))
	adminRouter.Put("/stages/reorder/{id}", upstages.ReorderStageAdmin(log, catalog))
	adminRouter.Put("/stages/active/{id}", upstages.SetStageActiveAdmin(log, catalog))

	router.Mount("/api/admin", adminRouter)

	return router
}
