package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/geogpt/pkg/llm"
)

var checkenvCmd = &cobra.Command{
	Use:   "checkenv",
	Short: "Show the resolved LLM provider configuration",
	Long: `Prints which provider is active, whether each provider has an API key,
and any model overrides. Keys are masked.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w := cmd.OutOrStdout()

		active := cfg.LLM.Provider
		if active == "" {
			fmt.Fprintln(w, "Active provider: (none — LLM fallback disabled)")
		} else {
			fmt.Fprintf(w, "Active provider: %s\n", active)
		}

		for _, p := range []string{llm.ProviderOpenAI, llm.ProviderGoogle, llm.ProviderAnthropic, llm.ProviderDeepSeek} {
			pc, _ := cfg.LLM.ForProvider(p)
			model := pc.Model
			if model == "" {
				model = "(default)"
			}
			fmt.Fprintf(w, "  %-10s key: %-12s model: %s\n", p, maskKey(pc.Key), model)
		}
		return nil
	},
}

// maskKey keeps just enough of a key to recognize it.
func maskKey(key string) string {
	switch {
	case key == "":
		return "not set"
	case len(key) <= 8:
		return "****"
	default:
		return key[:4] + "..." + key[len(key)-4:]
	}
}

func init() { rootCmd.AddCommand(checkenvCmd) }
