package main

import (
	"os"

	"github.com/spf13/cobra"
)

// @title Hospital Queue API
// @version 1.0
// @description Colas de pacientes por departamento: lanes normal y priority, espera estimada y dashboard.
// @BasePath /
// @schemes http
func main() {
	root := &cobra.Command{
		Use:           "hospital-queue",
		Short:         "Servicio de colas de pacientes",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd())

	// sin subcomando => serve
	root.RunE = newServeCmd().RunE

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
