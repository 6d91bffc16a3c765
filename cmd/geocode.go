package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/geogpt/internal/geo"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Resolve a place description to coordinates and postal metadata",
	Long: `Resolves whatever combination of city, state, postal code and business
name is provided. The offline postal dataset answers first; if the result
is incomplete and an LLM provider is configured, the provider fills in
the gaps. LLM-derived formatted addresses are tagged "[LLM]".`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		city, _ := cmd.Flags().GetString("city")
		state, _ := cmd.Flags().GetString("state")
		zip, _ := cmd.Flags().GetString("zip")
		business, _ := cmd.Flags().GetString("business")
		country, _ := cmd.Flags().GetString("country")
		provider, _ := cmd.Flags().GetString("provider")
		noLLM, _ := cmd.Flags().GetBool("no-llm")
		pretty, _ := cmd.Flags().GetBool("pretty")

		ds, err := openDataset()
		if err != nil {
			return eris.Wrap(err, "geocode: open dataset")
		}
		defer ds.Close()

		gc, err := buildGeocoder(ds, provider)
		if err != nil {
			return err
		}

		loc, err := gc.Geocode(ctx, geo.Query{
			City:         city,
			State:        state,
			ZipCode:      zip,
			BusinessName: business,
			Country:      country,
			UseLLM:       !noLLM,
		})
		if err != nil {
			return err
		}

		return printLocation(cmd.OutOrStdout(), loc, pretty)
	},
}

func init() {
	geocodeCmd.Flags().String("city", "", "city name")
	geocodeCmd.Flags().String("state", "", "state or province name")
	geocodeCmd.Flags().String("zip", "", "postal code")
	geocodeCmd.Flags().String("business", "", "business name, used only by the LLM fallback")
	geocodeCmd.Flags().String("country", "US", "country name or ISO code")
	geocodeCmd.Flags().String("provider", "", "override the configured LLM provider (openai, google, anthropic, deepseek)")
	geocodeCmd.Flags().Bool("no-llm", false, "disable the LLM fallback for this query")
	geocodeCmd.Flags().Bool("pretty", false, "human-readable output instead of JSON")
	rootCmd.AddCommand(geocodeCmd)
}
