package domain

type Installation struct {
	ID       uint   `json:"id"`
	Name     string `json:"nombre"`
	Location string `json:"ubicacion"`
	Capacity int    `json:"capacidad"`
}
