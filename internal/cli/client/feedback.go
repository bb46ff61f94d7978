package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// FeedbackRequest represents the feedback API request.
type FeedbackRequest struct {
	InteractionID string `json:"interaction_id"`
	ShopID        string `json:"shop_id,omitempty"`
	Converted     bool   `json:"converted"`
}

// FeedbackCmd creates the feedback command.
func FeedbackCmd() *cobra.Command {
	var (
		shopID    string
		converted bool
	)

	cmd := &cobra.Command{
		Use:   "feedback <interaction-id>",
		Short: "Record the outcome of a recommendation",
		Long:  "Marks whether a past recommendation led to a visit or purchase.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runFeedback(cmd, FeedbackRequest{
				InteractionID: args[0],
				ShopID:        shopID,
				Converted:     converted,
			}, outputJSON)
		},
	}

	cmd.Flags().StringVar(&shopID, "shop", "", "Shop the user chose")
	cmd.Flags().BoolVar(&converted, "converted", false, "Whether the recommendation converted")

	return cmd
}

func runFeedback(cmd *cobra.Command, req FeedbackRequest, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	body, err := api.Post("/assist/feedback", req)
	if err != nil {
		return fmt.Errorf("feedback failed: %w", err)
	}

	if outputJSON {
		var pretty map[string]any
		if err := json.Unmarshal(body, &pretty); err == nil {
			output, _ := json.MarshalIndent(pretty, "", "  ")
			fmt.Println(string(output))
			return nil
		}
		fmt.Println(string(body))
		return nil
	}

	fmt.Println("Feedback recorded.")
	return nil
}
