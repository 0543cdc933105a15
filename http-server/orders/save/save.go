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

type OrderCreator interface {
	CreateOrder(ctx context.Context, req storage.NewOrderDetails) (*storage.Order, error)
}

type Response struct {
	OrderID    int64    `json:"order_id,omitempty"`
	UIORN      string   `json:"uiorn,omitempty"`
	Status     string   `json:"status,omitempty"`
	Error      string   `json:"error,omitempty"`
	Violations []string `json:"violations,omitempty"`
}

func SaveOrder(log *slog.Logger, orders OrderCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.save.SaveOrder"

		var req storage.NewOrderDetails
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Некорректный JSON", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.CreateOrder(ctx, req)
		if err != nil {
			var vErr *service.ValidationError
			if errors.As(err, &vErr) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				render.JSON(w, r, Response{Error: "заказ не прошёл проверку", Violations: vErr.Violations})
				return
			}

			log.Error("Ошибка создания заказа", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, Response{
			OrderID: order.ID,
			UIORN:   order.UIORN,
			Status:  order.Status,
		})
	}
}
