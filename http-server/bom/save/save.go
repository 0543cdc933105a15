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

type BOMSubmitter interface {
	SubmitBOM(ctx context.Context, candidate storage.CandidateBOM) (*storage.BOM, error)
}

type Response struct {
	BOMID      int64    `json:"bom_id,omitempty"`
	Version    string   `json:"version,omitempty"`
	Error      string   `json:"error,omitempty"`
	Violations []string `json:"violations,omitempty"`
}

// SubmitBOM — приём рецептуры: либо активная версия, либо полный список нарушений.
func SubmitBOM(log *slog.Logger, boms BOMSubmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bom.save.SubmitBOM"

		var req storage.CandidateBOM
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Некорректный JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		bom, err := boms.SubmitBOM(ctx, req)
		if err != nil {
			var vErr *service.ValidationError
			if errors.As(err, &vErr) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				render.JSON(w, r, Response{Error: "рецептура не прошла проверку", Violations: vErr.Violations})
				return
			}

			log.Error("Ошибка сохранения рецептуры", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, Response{
			BOMID:   bom.ID,
			Version: bom.Version,
		})
	}
}
