package collector

import (
	"context"

	"BlanketWatch/internal/model"
)

// Source supplies the raw contract register.
type Source interface {
	Load(ctx context.Context) ([]model.Contract, error)
	Name() string
}
