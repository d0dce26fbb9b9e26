package model

// Plan тариф из каталога, только для чтения
type Plan struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	SessionsTotal int    `json:"sessions_total"`
	Price         int    `json:"price"` // в песо, без дробной части
}
