// Package projection поддерживает локальную проекцию списка заказов,
// согласованную с push-событиями смены статусов.
//
// Проекция — производная копия серверных данных; источник истины — бэкенд.
// Событие мутирует проекцию только copy-on-write: копируется путь от корня
// до измененной позиции, все незатронутые заказы и позиции сохраняют
// референтную идентичность — это важно для дешевого диффа при перерисовке.
package projection

import (
	"github.com/RoGogDBD/canteen/internal/models"
)

// Projection — страница заказов пользователя, упорядоченная как на сервере.
type Projection []*models.Order

// ApplyStatusEvent применяет событие смены статуса к проекции.
//
// Возвращает новую проекцию и признак изменения. Во всех остальных случаях
// возвращается входная проекция без изменений (второй результат false):
// чужой пользователь, неизвестный заказ или позиция (гонка с обновлением
// страницы — ожидаемая ситуация, не дефект), статус уже совпадает.
// Нераспознанный статус применяется как models.StatusUnknown.
func ApplyStatusEvent(owner string, ev models.StatusEvent, p Projection) (Projection, bool) {
	if ev.User != owner {
		return p, false
	}

	orderIdx := -1
	for i, o := range p {
		if o.OrderUID == ev.MainOrderID {
			orderIdx = i
			break
		}
	}
	if orderIdx < 0 {
		return p, false
	}

	order := p[orderIdx]
	itemIdx := -1
	for i, it := range order.Items {
		if it.ItemUID == ev.OrderID {
			itemIdx = i
			break
		}
	}
	if itemIdx < 0 {
		return p, false
	}

	newStatus := models.ParseStatus(ev.OrderStatus)
	if order.Items[itemIdx].Status == newStatus {
		// Повторное событие — идемпотентный no-op.
		return p, false
	}

	newItem := *order.Items[itemIdx]
	newItem.Status = newStatus

	newItems := make([]*models.Item, len(order.Items))
	copy(newItems, order.Items)
	newItems[itemIdx] = &newItem

	newOrder := *order
	newOrder.Items = newItems

	next := make(Projection, len(p))
	copy(next, p)
	next[orderIdx] = &newOrder

	return next, true
}
