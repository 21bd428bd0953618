package models

// Item описывает позицию заказа (одно блюдо).
// Статус позиции меняется push-событиями независимо от остальных позиций.
type Item struct {
	ItemUID  string `json:"item_uid" validate:"required"`
	Name     string `json:"name" validate:"required"`
	ImageURL string `json:"image_url"`
	Price    int    `json:"price" validate:"gte=0"`
	Quantity int    `json:"quantity" validate:"gt=0"`
	Status   Status `json:"status" validate:"order_status"`
}
