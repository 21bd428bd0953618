package validation

import (
	"github.com/go-playground/validator/v10"

	"github.com/RoGogDBD/canteen/internal/models"
)

// New возвращает валидатор с доменными правилами.
// order_status принимает только значения закрытого словаря статусов
// (включая unknown, в который нормализуются чужие значения).
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		s := models.Status(fl.Field().String())
		return s.Known() || s == models.StatusUnknown
	})
	return v
}
