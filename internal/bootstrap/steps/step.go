package steps

import (
	"context"
)

type Step interface {
	Name() string
	Run(ctx context.Context) error
}
