package update

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"flexopack/internal/service"
	"flexopack/internal/storage"
)

type WorkflowControl interface {
	StartStage(ctx context.Context, orderID, stageID int64) (*storage.StageProgress, error)
	CompleteStage(ctx context.Context, orderID, stageID int64) (*storage.StageProgress, error)
	HoldStage(ctx context.Context, orderID, stageID int64, reason string) error
	ResumeStage(ctx context.Context, orderID, stageID int64) error
	CancelStage(ctx context.Context, orderID, stageID int64, reason string) error
	SetStagePercent(ctx context.Context, orderID, stageID int64, percent float64) error
}

type Response struct {
	Status     string   `json:"status,omitempty"`
	Error      string   `json:"error,omitempty"`
	CheckType  string   `json:"check_type,omitempty"`
	Violations []string `json:"violations,omitempty"`
}

// UpdateStageProgress — единая точка входа операторских действий над этапом:
// start | complete | hold | resume | cancel | set_percent.
func UpdateStageProgress(log *slog.Logger, workflow WorkflowControl) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.progress.update.UpdateStageProgress"

		orderID, err := strconv.ParseInt(chi.URLParam(r, "orderId"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid order ID", http.StatusBadRequest)
			return
		}
		stageID, err := strconv.ParseInt(chi.URLParam(r, "stageId"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid stage ID", http.StatusBadRequest)
			return
		}

		var req struct {
			Action  string  `json:"action"`
			Notes   string  `json:"notes"`
			Percent float64 `json:"percent"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Некорректный JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var actionErr error
		switch req.Action {
		case "start":
			_, actionErr = workflow.StartStage(ctx, orderID, stageID)
		case "complete":
			_, actionErr = workflow.CompleteStage(ctx, orderID, stageID)
		case "hold":
			actionErr = workflow.HoldStage(ctx, orderID, stageID, req.Notes)
		case "resume":
			actionErr = workflow.ResumeStage(ctx, orderID, stageID)
		case "cancel":
			actionErr = workflow.CancelStage(ctx, orderID, stageID, req.Notes)
		case "set_percent":
			actionErr = workflow.SetStagePercent(ctx, orderID, stageID, req.Percent)
		default:
			http.Error(w, "Неизвестное действие", http.StatusBadRequest)
			return
		}

		if actionErr != nil {
			writeActionError(w, r, log, op, actionErr)
			return
		}

		render.JSON(w, r, Response{Status: "ok"})
	}
}

func writeActionError(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, Response{Error: "действие не прошло проверку", Violations: vErr.Violations})
		return
	}

	var qErr *service.QualityCheckpointRequired
	if errors.As(err, &qErr) {
		// Клиент заводит контрольную точку нужного типа и повторяет запуск
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, Response{Error: qErr.Error(), CheckType: qErr.CheckType})
		return
	}

	var tErr *service.InvalidTransition
	if errors.As(err, &tErr) {
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, Response{Error: tErr.Error()})
		return
	}

	var sErr *service.InsufficientStock
	if errors.As(err, &sErr) {
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, Response{Error: sErr.Error()})
		return
	}

	if errors.Is(err, sql.ErrNoRows) {
		http.Error(w, "Прогресс не найден", http.StatusNotFound)
		return
	}

	log.Error("Ошибка перехода этапа", slog.String("op", op), slog.String("error", err.Error()))
	http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
}
