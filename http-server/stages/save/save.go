package save

import (
	"context"
	"encoding/json"
	"errors"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"time"
	"flexopack/internal/service"
	"flexopack/internal/storage"
)

type StageCreator interface {
	CreateStage(ctx context.Context, orgID, name, stageType string, sequenceOrder int) (*storage.Stage, error)
}

type Response struct {
	Stage      *storage.Stage `json:"stage,omitempty"`
	Error      string         `json:"error,omitempty"`
	Violations []string       `json:"violations,omitempty"`
}

func SaveStageAdmin(log *slog.Logger, catalog StageCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.stages.save.SaveStageAdmin"

		var req struct {
			OrgID         string `json:"org_id"`
			Name          string `json:"name"`
			StageType     string `json:"stage_type"`
			SequenceOrder int    `json:"sequence_order"`
		}

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Некорректный JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		stage, err := catalog.CreateStage(ctx, req.OrgID, req.Name, req.StageType, req.SequenceOrder)
		if err != nil {
			var vErr *service.ValidationError
			if errors.As(err, &vErr) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				render.JSON(w, r, Response{Error: "этап не прошёл проверку", Violations: vErr.Violations})
				return
			}

			var dErr *service.DuplicateSequenceError
			if errors.As(err, &dErr) {
				w.WriteHeader(http.StatusConflict)
				render.JSON(w, r, Response{Error: dErr.Error()})
				return
			}

			log.Error("Ошибка создания этапа", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, Response{Stage: stage})
	}
}
