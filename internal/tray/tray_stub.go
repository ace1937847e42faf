//go:build !tray

package tray

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/canvaspal/pkg/refresh"
)

// Run reports that this binary was built without tray support.
func Run(_ refresh.Aggregator, _ refresh.Config, _ zerolog.Logger) int {
	fmt.Println("canvaspal: tray mode not available in this build")
	fmt.Println("rebuild with: go build -tags tray ./cmd/canvaspal")
	return 1
}
