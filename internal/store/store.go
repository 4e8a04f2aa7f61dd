// Package store holds the repositories behind the area, tip and profile
// services: an in-memory one for development and tests, and Postgres.
package store

import (
	"context"
	"fmt"
	"strings"

	"areasense/internal/area"
	"areasense/internal/auth"
	"areasense/internal/tip"

	"gorm.io/gorm"
)

// MemoryDSN selects the in-memory store in place of a database URL.
const MemoryDSN = "memory"

// Store is everything the server and the operator CLI need from a backend.
type Store interface {
	area.Repository
	tip.Repository
	auth.ProfileRepository

	ImportCatalog(ctx context.Context, c area.Catalog) error
	DeleteArea(ctx context.Context, id string) error
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Postgres)(nil)
)

// Open returns the in-memory store for MemoryDSN and otherwise connects to
// Postgres through connect, which also runs migrations.
func Open(dsn string, connect func(dsn string) (*gorm.DB, error)) (Store, *gorm.DB, error) {
	if strings.EqualFold(strings.TrimSpace(dsn), MemoryDSN) {
		return NewMemory(), nil, nil
	}
	gdb, err := connect(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	return NewPostgres(gdb), gdb, nil
}
