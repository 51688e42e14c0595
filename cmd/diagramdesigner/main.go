// Command diagramdesigner runs the DiagramDesigner API server and its
// maintenance commands.
//
//	@title						DiagramDesigner API
//	@version					1.0
//	@description				REST backend for hierarchical data models and the diagrams drawn from them.
//	@BasePath					/api/v1
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the access token.
package main

import (
	"fmt"
	"os"

	"github.com/schalkje/DiagramDesigner/internal/commands"
	"github.com/schalkje/DiagramDesigner/internal/version"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	version.Version = Version
	version.BuildTime = BuildTime
	version.GitCommit = GitCommit

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
