package repository

import "suryawash/internal/domain"

// Models lists every table the service owns, for database.Migrate.
func Models() []any {
	return []any{
		&domain.Account{},
		&domain.Session{},
		&domain.Profile{},
		&domain.Admin{},
		&domain.Transaction{},
		&serviceModel{},
		&planModel{},
	}
}
