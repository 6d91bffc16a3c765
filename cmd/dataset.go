package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geogpt/internal/geo"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manage the offline postal dataset cache",
}

var datasetDownloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download and cache postal data for one or more countries",
	Long: `Fetches GeoNames postal dumps for the given countries and loads them
into the local cache. Queries trigger this lazily on first use; running
it ahead of time just makes the first query fast.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		countries, _ := cmd.Flags().GetStringSlice("countries")
		if len(countries) == 0 {
			countries = cfg.Postal.PreloadCountries
		}
		if len(countries) == 0 {
			return eris.Wrap(geo.ErrInvalidInput, "dataset download: no countries given")
		}

		codes := make([]string, 0, len(countries))
		for _, c := range countries {
			cc, err := geo.NormalizeCountry(c)
			if err != nil {
				return err
			}
			codes = append(codes, cc.Alpha2)
		}

		ds, err := openDataset()
		if err != nil {
			return eris.Wrap(err, "dataset download: open dataset")
		}
		defer ds.Close()

		if err := ds.EnsureCountries(ctx, codes); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Cached postal data for %d countries\n", len(codes))
		return nil
	},
}

func init() {
	datasetDownloadCmd.Flags().StringSlice("countries", nil, "country names or ISO codes to cache")
	datasetCmd.AddCommand(datasetDownloadCmd)
	rootCmd.AddCommand(datasetCmd)
}
