package get

import (
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"flexopack/internal/storage"
)

type CheckpointReader interface {
	ListOrderCheckpoints(ctx context.Context, orderID int64) ([]storage.QualityCheckpoint, error)
}

func GetOrderCheckpoints(log *slog.Logger, quality CheckpointReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quality.get.GetOrderCheckpoints"

		orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid order ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checkpoints, err := quality.ListOrderCheckpoints(ctx, orderID)
		if err != nil {
			log.Error("Ошибка получения контрольных точек", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, checkpoints)
	}
}
