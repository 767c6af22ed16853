package oracle

import (
	"context"

	"github.com/doeshing/pteroai-go/internal/domain"
)

// offlineOracle always fails, so every oracle-backed stage runs on its default.
type offlineOracle struct{}

func (offlineOracle) Name() string {
	return domain.OracleProviderNone
}

func (offlineOracle) Generate(context.Context, string) (string, error) {
	return "", domain.ErrOracleUnavailable
}
