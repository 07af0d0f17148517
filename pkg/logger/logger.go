// pkg/logger/logger.go
package logger

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Sugared = *zap.SugaredLogger

// New builds the run logger. Every line carries the run id so output
// from repeated invocations can be told apart in aggregated logs.
func New(env string) (Sugared, string) {
	var z *zap.Logger
	if env == "prod" {
		z, _ = zap.NewProduction()
	} else {
		z, _ = zap.NewDevelopment()
	}
	runID := uuid.NewString()
	return z.Sugar().With("run", runID), runID
}
