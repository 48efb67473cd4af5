// Package cli provides the command-line interface for the tenderscrape
// application.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/tender-radar/tenderscrape/internal/app"
)

// SetApp stores the Application for commands to access.
func SetApp(cmd *cobra.Command, a *app.Application) {
	if cmd == nil {
		return
	}
	globalApp = a
}

// GetApp retrieves the Application.
func GetApp() *app.Application {
	return globalApp
}

var globalApp *app.Application
