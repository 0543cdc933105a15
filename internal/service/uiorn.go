package service

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateUIORN — человекочитаемый номер заказа: UIORN{YY}{MM}{NNNN}.
// Формат зафиксирован, по нему живут старые записи.
func GenerateUIORN(now time.Time) string {
	return fmt.Sprintf("UIORN%02d%02d%04d", now.Year()%100, int(now.Month()), rand.Intn(10000))
}
