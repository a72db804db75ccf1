package main

import (
	"fmt"
	"io"
	"os"

	"github.com/LerianStudio/lib-facemesh/facemesh"
	"github.com/LerianStudio/lib-facemesh/facemesh/digest"
	"github.com/LerianStudio/lib-facemesh/facemesh/mesh"
	nethttp "github.com/LerianStudio/lib-facemesh/facemesh/net/http"
	"github.com/spf13/cobra"
)

type generateOptions struct {
	algorithm string
	format    string
	output    string
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [input]",
		Short: "Generate a face mesh from input and write it as JSON, OBJ or STL",
		Long: `generate runs the same pipeline as GET /generate_3d_face. Without an
argument DEFAULT_INPUT_STRING (or "example_string") is used; an explicit
empty argument hashes the empty string.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.OutOrStdout(), cmd.ErrOrStderr(), inputFromArgs(args), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a",
		facemesh.GetenvOrDefault("DIGEST_ALGORITHM", string(digest.SHA256)), "digest algorithm (sha256, blake3)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(mesh.FormatJSON), "output format (json, obj, stl)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to file instead of stdout")

	return cmd
}

func runGenerate(stdout, stderr io.Writer, input string, opts *generateOptions) error {
	alg, err := digest.ParseAlgorithm(opts.algorithm)
	if err != nil {
		return facemesh.ValidateBusinessError(err, "Face")
	}

	format, err := mesh.ParseFormat(opts.format)
	if err != nil {
		return facemesh.ValidateBusinessError(err, "Face", opts.format)
	}

	m, hexDigest, err := mesh.Generate(input, alg)
	if err != nil {
		return facemesh.ValidateBusinessError(err, "Face")
	}

	if opts.output == "" {
		return mesh.Write(stdout, m, format)
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.output, err)
	}

	if err := mesh.Write(f, m, format); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	b := m.Bounds()

	_, err = fmt.Fprintf(stderr, "wrote %s (%s, %s %s, bounds [%.4g %.4g %.4g]..[%.4g %.4g %.4g])\n",
		opts.output, format.ContentType(), alg, hexDigest,
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)

	return err
}

// inputFromArgs returns args[0], or the configured default input when no argument was given.
func inputFromArgs(args []string) string {
	if len(args) > 0 {
		return args[0]
	}

	return facemesh.GetenvOrDefault("DEFAULT_INPUT_STRING", nethttp.DefaultInputString)
}
