package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"alcyxob/gym-membership/internal/roster"
)

func newBMICmd() *cobra.Command {
	var weight, height float64
	cmd := &cobra.Command{
		Use:     "bmi",
		Short:   "Compute BMI and the recommended plan",
		Example: `  gymctl bmi --weight 70 --height 175`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bmi := roster.ComputeBMI(weight, height)
			if bmi == nil {
				return errors.New("weight (kg) and height (cm) must both be positive")
			}
			fmt.Fprintf(out(cmd), "BMI %.1f: %s\n", bmi.Value, bmi.Category)
			return nil
		},
	}
	cmd.Flags().Float64Var(&weight, "weight", 0, "weight in kg")
	cmd.Flags().Float64Var(&height, "height", 0, "height in cm")
	return cmd
}
