package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is the shared foundation embedded by domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase wraps a GORM connection for use by a domain repository.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the connection bound to ctx, or the raw connection when ctx
// is nil.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}
