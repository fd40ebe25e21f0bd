package models

// All lists every persisted model in dependency order. Used by dev
// auto-migration and sqlite-backed tests.
func All() []any {
	return []any{
		&Product{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&OutboxEvent{},
	}
}
