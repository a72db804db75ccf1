package main

import (
	"fmt"

	"github.com/LerianStudio/lib-facemesh/facemesh"
	"github.com/LerianStudio/lib-facemesh/facemesh/digest"
	"github.com/spf13/cobra"
)

func newDigestCmd() *cobra.Command {
	var algorithm string

	cmd := &cobra.Command{
		Use:   "digest [input]",
		Short: "Print the hex digest of input",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := digest.ParseAlgorithm(algorithm)
			if err != nil {
				return facemesh.ValidateBusinessError(err, "Digest")
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), alg.Sum(inputFromArgs(args)))

			return err
		},
	}

	cmd.Flags().StringVarP(&algorithm, "algorithm", "a",
		facemesh.GetenvOrDefault("DIGEST_ALGORITHM", string(digest.SHA256)), "digest algorithm (sha256, blake3)")

	return cmd
}
