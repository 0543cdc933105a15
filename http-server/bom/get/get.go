package get

import (
	"context"
	"database/sql"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"time"
	"flexopack/internal/storage"
)

type BOMReader interface {
	GetActiveBOM(ctx context.Context, orgID, itemCode string) (*storage.BOM, error)
}

func GetActiveBOM(log *slog.Logger, boms BOMReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bom.get.GetActiveBOM"

		orgID := r.URL.Query().Get("org")
		itemCode := chi.URLParam(r, "itemCode")
		if orgID == "" {
			http.Error(w, "Параметр org обязателен", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		bom, err := boms.GetActiveBOM(ctx, orgID, itemCode)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "Рецептура не найдена", http.StatusNotFound)
				return
			}
			log.Error("Ошибка получения рецептуры", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, bom)
	}
}
