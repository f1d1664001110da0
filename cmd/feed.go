package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/adalundhe/mindmesh/core/feed"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Manage a feed database",
}

var feedInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Create an empty feed database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := feed.Open(args[0])
		if err != nil {
			return err
		}
		return store.Close()
	},
}

var feedAddItemCmd = &cobra.Command{
	Use:   "add-item <path> <id> <importance> <confidence>",
	Short: "Add a content item to a feed",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		importance, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("importance: %w", err)
		}
		confidence, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("confidence: %w", err)
		}

		store, err := feed.Open(args[0])
		if err != nil {
			return err
		}
		defer store.Close()

		return store.AddItem(cmd.Context(), feed.Item{
			ID:         args[1],
			Importance: importance,
			Confidence: confidence,
		})
	},
}

var feedAddRelationCmd = &cobra.Command{
	Use:   "add-relation <path> <source> <target> <type> <strength> <confidence>",
	Short: "Add a scored relation to a feed",
	Args:  cobra.ExactArgs(6),
	RunE: func(cmd *cobra.Command, args []string) error {
		strength, err := strconv.ParseFloat(args[4], 64)
		if err != nil {
			return fmt.Errorf("strength: %w", err)
		}
		confidence, err := strconv.ParseFloat(args[5], 64)
		if err != nil {
			return fmt.Errorf("confidence: %w", err)
		}

		store, err := feed.Open(args[0])
		if err != nil {
			return err
		}
		defer store.Close()

		return store.AddRelation(cmd.Context(), feed.Relation{
			Source:     args[1],
			Target:     args[2],
			Type:       args[3],
			Strength:   strength,
			Confidence: confidence,
		})
	},
}

func init() {
	feedCmd.AddCommand(feedInitCmd)
	feedCmd.AddCommand(feedAddItemCmd)
	feedCmd.AddCommand(feedAddRelationCmd)
	rootCmd.AddCommand(feedCmd)
}
