package models

// Status — статус позиции заказа. Словарь значений закрытый:
// pending -> confirmed -> preparing -> ready -> completed,
// cancelled достижим из любого неконечного состояния.
// Легальность перехода проверяет бэкенд, клиентская часть применяет статус как есть.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"

	// StatusUnknown присваивается, когда канал событий прислал значение вне словаря.
	StatusUnknown Status = "unknown"
)

var knownStatuses = map[Status]struct{}{
	StatusPending:   {},
	StatusConfirmed: {},
	StatusPreparing: {},
	StatusReady:     {},
	StatusCompleted: {},
	StatusCancelled: {},
}

// ParseStatus приводит строку к известному статусу.
// Нераспознанное значение превращается в StatusUnknown, а не пробрасывается как есть.
func ParseStatus(s string) Status {
	if _, ok := knownStatuses[Status(s)]; ok {
		return Status(s)
	}
	return StatusUnknown
}

// Known сообщает, входит ли статус в словарь.
func (s Status) Known() bool {
	_, ok := knownStatuses[s]
	return ok
}

// Terminal сообщает, является ли статус конечным.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// DisplayName возвращает подпись статуса для экранов приложения.
func (s Status) DisplayName() string {
	switch s {
	case StatusPending:
		return "Ожидает подтверждения"
	case StatusConfirmed:
		return "Подтверждён"
	case StatusPreparing:
		return "Готовится"
	case StatusReady:
		return "Готов к выдаче"
	case StatusCompleted:
		return "Выдан"
	case StatusCancelled:
		return "Отменён"
	default:
		return "Статус неизвестен"
	}
}
