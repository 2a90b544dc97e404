package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// TraceQueries installs the otelgorm plugin so each query becomes a child
// span of the chat request or tool call that issued it. Bound arguments are
// recorded only when withArgs is set.
func TraceQueries(db *gorm.DB, driver string, withArgs bool) error {
	opts := []otelgorm.Option{otelgorm.WithDBName(dbSystem(driver))}
	if !withArgs {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return fmt.Errorf("failed to install query tracing: %w", err)
	}
	return nil
}

func dbSystem(driver string) string {
	if driver == "sqlite" {
		return "sqlite"
	}
	return "postgresql"
}
