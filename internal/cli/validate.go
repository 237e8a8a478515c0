package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dplace2cldf/internal/cldf"
)

func validateCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate DIR",
		Short: "Validate a written CLDF dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := cldf.Open(args[0])
			if err != nil {
				return err
			}
			err = ds.Validate()
			var verr *cldf.ValidationError
			if errors.As(err, &verr) {
				for _, is := range verr.Issues {
					fmt.Fprintln(cmd.OutOrStdout(), is.Error())
				}
				return fmt.Errorf("%s: %d validation issue(s)", args[0], len(verr.Issues))
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
}
