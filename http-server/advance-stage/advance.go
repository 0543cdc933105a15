package advance_stage

import (
	"context"
	"database/sql"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"flexopack/internal/service"
)

type Progression interface {
	AdvanceToNextStage(ctx context.Context, orderID int64) (string, error)
}

type Response struct {
	Status    string `json:"status"`
	Stage     string `json:"stage,omitempty"`
	Error     string `json:"error,omitempty"`
	CheckType string `json:"check_type,omitempty"`
}

// AdvanceOrder — автопродвижение заказа на следующий доступный этап.
func AdvanceOrder(log *slog.Logger, progression Progression) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.advance-stage.AdvanceOrder"

		orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid order ID", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		stageName, err := progression.AdvanceToNextStage(ctx, orderID)
		if err != nil {
			var nErr *service.NoEligibleStage
			if errors.As(err, &nErr) {
				// Маршрут пройден целиком, продвигать нечего
				render.JSON(w, r, Response{Status: "completed"})
				return
			}

			var qErr *service.QualityCheckpointRequired
			if errors.As(err, &qErr) {
				w.WriteHeader(http.StatusConflict)
				render.JSON(w, r, Response{Status: "blocked", Error: qErr.Error(), CheckType: qErr.CheckType})
				return
			}

			var tErr *service.InvalidTransition
			if errors.As(err, &tErr) {
				w.WriteHeader(http.StatusConflict)
				render.JSON(w, r, Response{Status: "conflict", Error: tErr.Error()})
				return
			}

			var sErr *service.InsufficientStock
			if errors.As(err, &sErr) {
				w.WriteHeader(http.StatusConflict)
				render.JSON(w, r, Response{Status: "blocked", Error: sErr.Error()})
				return
			}

			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "Заказ не найден", http.StatusNotFound)
				return
			}

			log.Error("Ошибка автопродвижения заказа", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, Response{Status: "advanced", Stage: stageName})
	}
}
