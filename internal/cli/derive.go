package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goswapd/internal/core/tx"
)

var deriveJSON bool

var deriveCmd = &cobra.Command{
	Use:   "derive <maker> <offer-asset> <receive-asset>",
	Short: "Derive the offer address for a maker and asset pair",
	Long: `Derive the ledger address an offer by the given maker for the given
asset pair will occupy, together with its derivation salt. Assets are
"native" or a 64-character hex asset ID. The result is deterministic;
a node computes the same address when the offer is created.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		offerID, salt, err := tx.DeriveOfferAddress(args[0], args[1], args[2])
		if err != nil {
			return err
		}
		if deriveJSON {
			out, err := json.MarshalIndent(map[string]any{
				"maker":         args[0],
				"offer_asset":   args[1],
				"receive_asset": args[2],
				"offer_id":      offerID,
				"salt":          salt,
			}, "", "  ")
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		}
		cmd.Printf("offer_id: %s\n", offerID)
		cmd.Printf("salt:     %d\n", salt)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deriveCmd)
	deriveCmd.Flags().BoolVar(&deriveJSON, "json", false, "print as JSON")
}
