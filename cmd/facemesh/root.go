package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facemesh",
		Short: "Deterministic 3D face meshes derived from string hashes",
		Long: `facemesh hashes an input string and uses the hex digest to scale the
vertices of a fixed base mesh.

Run "facemesh serve" to expose GET /generate_3d_face over HTTP, or
"facemesh generate" to write a mesh offline.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCmd(), newGenerateCmd(), newDigestCmd())

	return cmd
}
