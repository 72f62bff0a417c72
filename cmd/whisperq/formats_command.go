package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"whisperq/internal/format"
	"whisperq/internal/media"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "formats",
		Short:       "List supported input and output formats",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			kinds := format.Kinds()
			names := make([]string, 0, len(kinds))
			for _, kind := range kinds {
				names = append(names, string(kind))
			}
			fmt.Fprintf(out, "Output formats: %s\n", strings.Join(names, ", "))
			fmt.Fprintf(out, "Input extensions: %s\n", strings.Join(media.Extensions(), ", "))
			return nil
		},
	}
}
