// Package model holds the gorm rows of the workshop database.
package model

// All returns every model managed by migrations, in dependency order.
func All() []any {
	return []any{
		&Customer{},
		&Bottle{},
		&CompressorSession{},
		&WaitlistEntry{},
		&PushSubscription{},
	}
}
