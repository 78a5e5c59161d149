package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func itemsCmd() *cobra.Command {
	itemsRoot := &cobra.Command{
		Use:   "items",
		Short: "Inspect and manage tracked items",
		Long:  "Query tracked items through the admin API of a running pricedrop server.",
	}

	itemsRoot.AddCommand(
		itemsListCmd(),
		itemsGetCmd(),
		itemsSubscribersCmd(),
		itemsDeleteCmd(),
	)

	return itemsRoot
}

func itemsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tracked items",
		Example: `  # List every tracked item
  pricedrop items list

  # Against a remote server, as JSON
  pricedrop items list --server http://prod:8080 --output json`,
		RunE: func(_ *cobra.Command, _ []string) error {
			resp, err := newClient().ListItems(context.Background())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(resp)
			}

			if len(resp.Items) == 0 {
				fmt.Println("No tracked items.")
				return nil
			}

			fmt.Printf("%d tracked items\n\n", resp.Total)
			return printItemsTable(resp.Items)
		},
	}
}

func itemsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <id>",
		Short:   "Show item details",
		Example: `  pricedrop items get 12345`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}

			item, err := newClient().GetItem(context.Background(), id)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(item)
			}
			return printItemDetail(item)
		},
	}
}

func itemsSubscribersCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "subscribers <id>",
		Short:   "List an item's subscribers",
		Example: `  pricedrop items subscribers 12345`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}

			resp, err := newClient().ListSubscribers(context.Background(), id)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(resp)
			}

			if len(resp.Subscribers) == 0 {
				fmt.Println("No subscribers.")
				return nil
			}
			return printSubscribersTable(resp.Subscribers)
		},
	}
}

func itemsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a tracked item and its subscriptions",
		Example: `  pricedrop items delete 12345`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}

			if err := newClient().DeleteItem(context.Background(), id); err != nil {
				return err
			}

			fmt.Printf("Item %d deleted.\n", id)
			return nil
		},
	}
}

func parseItemID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid item ID %q", arg)
	}
	return id, nil
}
