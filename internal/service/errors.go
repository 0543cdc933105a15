package service

import (
	"fmt"
	"strings"
)

// ValidationError собирает все нарушения сразу, а не первое попавшееся:
// клиент видит полный список проблем за один запрос.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "валидация не пройдена: " + strings.Join(e.Violations, "; ")
}

// DuplicateSequenceError — попытка создать этап с занятым порядковым номером.
type DuplicateSequenceError struct {
	SequenceOrder int
}

func (e *DuplicateSequenceError) Error() string {
	return fmt.Sprintf("порядковый номер %d уже занят активным этапом", e.SequenceOrder)
}

// QualityCheckpointRequired — запуск этапа заблокирован незакрытым входным
// контролем. Несёт тип контрольной точки, которую нужно закрыть перед повтором.
type QualityCheckpointRequired struct {
	OrderID   int64
	StageID   int64
	CheckType string
}

func (e *QualityCheckpointRequired) Error() string {
	return fmt.Sprintf("этап %d заказа %d заблокирован: требуется контроль '%s'", e.StageID, e.OrderID, e.CheckType)
}

// InvalidTransition — переход, которого нет в таблице состояний.
type InvalidTransition struct {
	From string
	To   string
}

func (e *InvalidTransition) Error() string {
	return fmt.Sprintf("переход '%s' -> '%s' недопустим", e.From, e.To)
}

// NoEligibleStage — автопродвижению нечего продвигать: заказ прошёл весь маршрут.
type NoEligibleStage struct {
	OrderID int64
}

func (e *NoEligibleStage) Error() string {
	return fmt.Sprintf("у заказа %d не осталось этапов для продвижения", e.OrderID)
}

// InsufficientStock приходит от смежного модуля выдачи материалов.
// Движок его не порождает и не трогает — отдаёт наверх как есть.
type InsufficientStock struct {
	MaterialCode string
	Required     float64
	Available    float64
}

func (e *InsufficientStock) Error() string {
	return fmt.Sprintf("недостаточно материала '%s': требуется %.2f, доступно %.2f", e.MaterialCode, e.Required, e.Available)
}
