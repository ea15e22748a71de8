package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Skufu/heartcheck/internal/heart"
)

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the form fields in model order with their accepted values",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for i, f := range heart.Fields {
				if !f.Categorical() {
					fmt.Fprintf(out, "%2d. %-9s %s (number)\n", i+1, f.Key, f.FormLabel)
					continue
				}
				choices := make([]string, 0, len(f.Mapping.Choices()))
				for _, c := range f.Mapping.Choices() {
					choices = append(choices, fmt.Sprintf("%s=%d", c.Label, c.Code))
				}
				fmt.Fprintf(out, "%2d. %-9s %s [%s]\n", i+1, f.Key, f.FormLabel, strings.Join(choices, ", "))
			}
			return nil
		},
	}
}
