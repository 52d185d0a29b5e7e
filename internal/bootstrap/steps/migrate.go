package steps

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/sweetshop/internal/db"
)

type Migrate struct {
	databaseURL string
}

func NewMigrate(databaseURL string) (Migrate, error) {
	var s Migrate

	if databaseURL == "" {
		return s, errors.New("databaseURL is empty")
	}

	return Migrate{databaseURL: databaseURL}, nil
}

func (s Migrate) Name() string {
	return "migrate"
}

func (s Migrate) Run(_ context.Context) error {
	if err := db.Migrate(s.databaseURL); err != nil {
		return fmt.Errorf("db.Migrate: %w", err)
	}

	return nil
}
