package main

import (
	"github.com/spf13/cobra"

	"vocamail/internal/fileutil"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	data, err := fileutil.MarshalJSON(v)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
