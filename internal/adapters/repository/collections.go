// Package repository implements the domain repositories on top of the
// document store.
package repository

const (
	CollectionHabits     = "habitos"
	CollectionCategories = "categorias_habitos"
	CollectionTracking   = "seguimiento_habitos"
	CollectionUsers      = "usuarios"

	fieldBalance = "monedas"
)
