package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geogpt/internal/geo"
)

var distanceCmd = &cobra.Command{
	Use:   "distance",
	Short: "Great-circle distance between two postal codes",
	Long: `Resolves both postal codes through the offline dataset and reports the
haversine distance between them in kilometers. No LLM calls are made.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		origin, _ := cmd.Flags().GetString("origin")
		destination, _ := cmd.Flags().GetString("destination")
		country, _ := cmd.Flags().GetString("country")

		if origin == "" || destination == "" {
			return eris.Wrap(geo.ErrInvalidInput, "distance: --origin and --destination are required")
		}

		ds, err := openDataset()
		if err != nil {
			return eris.Wrap(err, "distance: open dataset")
		}
		defer ds.Close()

		gc, err := buildGeocoder(ds, "")
		if err != nil {
			return err
		}

		km, err := gc.Distance(ctx, geo.PostalEndpoint(origin), geo.PostalEndpoint(destination), country)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Distance: %.2f km\n", km)
		return nil
	},
}

func init() {
	distanceCmd.Flags().String("origin", "", "origin postal code")
	distanceCmd.Flags().String("destination", "", "destination postal code")
	distanceCmd.Flags().String("country", "US", "country name or ISO code for both postal codes")
	rootCmd.AddCommand(distanceCmd)
}
