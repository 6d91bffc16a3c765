package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geogpt/internal/geo"
)

var nearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "Find postal codes within a radius of a reference point",
	Long: `Resolves the reference postal code through the offline dataset, then
returns every postal code within the radius, closest first. Pass
--codes to filter an explicit candidate list instead of scanning the
whole country.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reference, _ := cmd.Flags().GetString("reference")
		radius, _ := cmd.Flags().GetFloat64("radius")
		country, _ := cmd.Flags().GetString("country")
		codes, _ := cmd.Flags().GetStringSlice("codes")
		limit, _ := cmd.Flags().GetInt("limit")
		pretty, _ := cmd.Flags().GetBool("pretty")

		if reference == "" {
			return eris.Wrap(geo.ErrInvalidInput, "nearby: --reference is required")
		}

		ds, err := openDataset()
		if err != nil {
			return eris.Wrap(err, "nearby: open dataset")
		}
		defer ds.Close()

		gc, err := buildGeocoder(ds, "")
		if err != nil {
			return err
		}

		results, err := gc.Nearby(ctx, geo.PostalEndpoint(reference), radius, geo.NearbyOptions{
			CountryCode: country,
			PostalCodes: codes,
		})
		if err != nil {
			return err
		}

		return printNearby(cmd.OutOrStdout(), results, limit, pretty)
	},
}

func init() {
	nearbyCmd.Flags().String("reference", "", "reference postal code")
	nearbyCmd.Flags().Float64("radius", 50, "search radius in kilometers")
	nearbyCmd.Flags().String("country", "US", "country name or ISO code")
	nearbyCmd.Flags().StringSlice("codes", nil, "explicit candidate postal codes to filter")
	nearbyCmd.Flags().Int("limit", 10, "maximum number of results, 0 for all")
	nearbyCmd.Flags().Bool("pretty", false, "human-readable output instead of JSON")
	rootCmd.AddCommand(nearbyCmd)
}
