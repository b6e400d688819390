// Package dp3t provides metric registration for the DP3T key server.
package dp3t

import (
	"fmt"

	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/metrics/download"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/metrics/scheduler"
	"github.com/TMRGZ/TFG-Radar-COVID-DPPPT/internal/metrics/upload"

	"go.opencensus.io/plugin/ochttp"
	"go.opencensus.io/stats/view"
)

// RegisterViews registers the necessary tracing views.
func RegisterViews() error {
	// Record the various HTTP view to collect metrics.
	httpViews := append(ochttp.DefaultServerViews, ochttp.DefaultClientViews...)
	if err := view.Register(httpViews...); err != nil {
		return fmt.Errorf("failed to register http views: %w", err)
	}

	if err := view.Register(upload.Views...); err != nil {
		return fmt.Errorf("failed to register upload metrics: %w", err)
	}

	if err := view.Register(download.Views...); err != nil {
		return fmt.Errorf("failed to register download metrics: %w", err)
	}

	if err := view.Register(scheduler.Views...); err != nil {
		return fmt.Errorf("failed to register scheduler metrics: %w", err)
	}

	return nil
}
