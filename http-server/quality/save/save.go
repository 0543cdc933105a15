package save

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"flexopack/internal/service"
	"flexopack/internal/storage"
)

type CheckpointWriter interface {
	CreateCheckpoint(ctx context.Context, orderID, stageID int64, checkType string) (*storage.QualityCheckpoint, error)
	SetCheckpointResult(ctx context.Context, refCode, result string, notes *string) error
}

type Response struct {
	Checkpoint *storage.QualityCheckpoint `json:"checkpoint,omitempty"`
	Status     string                     `json:"status,omitempty"`
	Error      string                     `json:"error,omitempty"`
	Violations []string                   `json:"violations,omitempty"`
}

// SaveCheckpoint — ручное создание контрольной точки. Этим путём клиент
// закрывает блокировку QualityCheckpointRequired: заводит входной контроль,
// дожидается результата passed и повторяет запуск этапа.
func SaveCheckpoint(log *slog.Logger, quality CheckpointWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quality.save.SaveCheckpoint"

		var req struct {
			OrderID   int64  `json:"order_id"`
			StageID   int64  `json:"stage_id"`
			CheckType string `json:"check_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Некорректный JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		cp, err := quality.CreateCheckpoint(ctx, req.OrderID, req.StageID, req.CheckType)
		if err != nil {
			var vErr *service.ValidationError
			if errors.As(err, &vErr) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				render.JSON(w, r, Response{Error: "контрольная точка не прошла проверку", Violations: vErr.Violations})
				return
			}

			log.Error("Ошибка создания контрольной точки", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, Response{Checkpoint: cp})
	}
}

func UpdateCheckpointResult(log *slog.Logger, quality CheckpointWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quality.save.UpdateCheckpointResult"

		refCode := chi.URLParam(r, "refCode")

		var req struct {
			Result string  `json:"result"`
			Notes  *string `json:"notes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Некорректный JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := quality.SetCheckpointResult(ctx, refCode, req.Result, req.Notes); err != nil {
			var vErr *service.ValidationError
			if errors.As(err, &vErr) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				render.JSON(w, r, Response{Error: "результат не прошёл проверку", Violations: vErr.Violations})
				return
			}

			if strings.Contains(err.Error(), "не найдена") {
				http.Error(w, "Контрольная точка не найдена", http.StatusNotFound)
				return
			}

			log.Error("Ошибка записи результата контроля", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, Response{Status: "ok"})
	}
}
