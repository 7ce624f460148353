package models

import "time"

// Shop, bir işletmeyi (tenant) temsil eder.
// Kullanıcılar, kanallar ve presence hep shop sınırı içinde yaşar —
// farklı shop'ların personeli birbirini hiçbir listede görmez.
type Shop struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
