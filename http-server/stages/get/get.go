package get

import (
	"context"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"time"
	"flexopack/internal/storage"
)

type StageCatalog interface {
	ListActiveStages(ctx context.Context, orgID string) ([]storage.Stage, error)
}

func GetActiveStages(log *slog.Logger, catalog StageCatalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.stages.get.GetActiveStages"

		orgID := r.URL.Query().Get("org")
		if orgID == "" {
			http.Error(w, "Параметр org обязателен", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		stages, err := catalog.ListActiveStages(ctx, orgID)
		if err != nil {
			log.Error("Ошибка получения этапов маршрута", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, stages)
	}
}
