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

type OrderReader interface {
	ListOrders(ctx context.Context, orgID, status string) ([]storage.Order, error)
	GetOrderByUIORN(ctx context.Context, orgID, uiorn string) (*storage.Order, error)
}

type SummaryReader interface {
	OrderSummary(ctx context.Context, orderID int64) (*storage.OrderSummary, error)
}

func GetOrders(log *slog.Logger, orders OrderReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.get.GetOrders"

		orgID := r.URL.Query().Get("org")
		status := r.URL.Query().Get("status")
		if orgID == "" {
			http.Error(w, "Параметр org обязателен", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		items, err := orders.ListOrders(ctx, orgID, status)
		if err != nil {
			log.Error("Ошибка получения заказов", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, items)
	}
}

// GetOrderDetails — заказ по UIORN вместе с прогрессом и совокупным процентом.
func GetOrderDetails(log *slog.Logger, orders OrderReader, summary SummaryReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.get.GetOrderDetails"

		orgID := r.URL.Query().Get("org")
		uiorn := chi.URLParam(r, "uiorn")
		if orgID == "" {
			http.Error(w, "Параметр org обязателен", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		order, err := orders.GetOrderByUIORN(ctx, orgID, uiorn)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "Заказ не найден", http.StatusNotFound)
				return
			}
			log.Error("Ошибка получения заказа", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		details, err := summary.OrderSummary(ctx, order.ID)
		if err != nil {
			log.Error("Ошибка получения прогресса заказа", slog.String("op", op), slog.String("error", err.Error()))
			http.Error(w, "Внутренняя ошибка сервера", http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, details)
	}
}
