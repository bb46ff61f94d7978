package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AskRequest represents the assist API request.
type AskRequest struct {
	Query     string   `json:"query"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
	UserID    string   `json:"user_id,omitempty"`
}

// AskRecommendation is one shortlisted shop in the reply.
type AskRecommendation struct {
	ShopID     string   `json:"shop_id"`
	Name       string   `json:"name"`
	Category   string   `json:"category"`
	Address    string   `json:"address,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Rating     float64  `json:"rating,omitempty"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
	Score      float64  `json:"score"`
	Reason     string   `json:"reason,omitempty"`
}

// AskResponse represents the assist API response.
type AskResponse struct {
	Success         bool                `json:"success"`
	Response        string              `json:"response"`
	Recommendations []AskRecommendation `json:"recommendations"`
	Language        string              `json:"language"`
	Category        string              `json:"category,omitempty"`
	SessionID       string              `json:"session_id"`
	InteractionID   string              `json:"interaction_id,omitempty"`
	IsPersonal      bool                `json:"is_personal,omitempty"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var (
		lat       float64
		lng       float64
		sessionID string
		userID    string
	)

	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Ask for a shop recommendation",
		Long:  "Sends a query in Hindi, Hinglish or English and prints the recommended shops.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")

			req := AskRequest{
				Query:     args[0],
				SessionID: sessionID,
				UserID:    userID,
			}
			if cmd.Flags().Changed("lat") && cmd.Flags().Changed("lng") {
				req.Lat = &lat
				req.Lng = &lng
			}

			return runAsk(cmd, req, outputJSON)
		},
	}

	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of the caller")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude of the caller")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID to continue a conversation")
	cmd.Flags().StringVar(&userID, "user", "", "User ID for interaction history")

	return cmd
}

func runAsk(cmd *cobra.Command, req AskRequest, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	body, err := api.Post("/assist", req)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	var resp AskResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(resp.Response)

	if len(resp.Recommendations) > 0 {
		fmt.Println()
		for i, rec := range resp.Recommendations {
			fmt.Printf("%d. %s (%s)\n", i+1, rec.Name, rec.Category)
			if rec.Address != "" {
				fmt.Printf("   %s\n", rec.Address)
			}
			if rec.Phone != "" {
				fmt.Printf("   %s\n", rec.Phone)
			}
			if rec.DistanceKm != nil {
				fmt.Printf("   %.1f km away\n", *rec.DistanceKm)
			}
			if i < len(resp.Recommendations)-1 {
				fmt.Println(strings.Repeat("-", 40))
			}
		}
	}

	if resp.InteractionID != "" {
		fmt.Printf("\nInteraction: %s (use 'dukaan feedback %s' to mark the outcome)\n",
			resp.InteractionID, resp.InteractionID)
	}
	if resp.SessionID != "" {
		fmt.Printf("Session: %s\n", resp.SessionID)
	}

	return nil
}
