package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	domain "github.com/avoronov/pricedrop/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printItemsTable(items []domain.Item) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID\tNAME\tPRICE\tUPDATED\n")
	for i := range items {
		tw.writef("%d\t%s\t%s\t%s\n",
			items[i].ID,
			items[i].Name,
			items[i].Price.StringFixed(2),
			items[i].UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	return tw.finish()
}

func printItemDetail(item *domain.Item) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("ID:\t%d\n", item.ID)
	tw.writef("Name:\t%s\n", item.Name)
	tw.writef("Price:\t%s\n", item.Price.StringFixed(2))
	tw.writef("Image:\t%s\n", item.ImageURL)
	tw.writef("Created:\t%s\n", item.CreatedAt.Format("2006-01-02 15:04"))
	tw.writef("Updated:\t%s\n", item.UpdatedAt.Format("2006-01-02 15:04"))
	return tw.finish()
}

func printSubscribersTable(users []domain.User) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("USER ID\tSINCE\n")
	for i := range users {
		tw.writef("%d\t%s\n", users[i].ID, users[i].CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.finish()
}

func printState(state *domain.SystemState) error {
	tw := newTabWriter(os.Stdout)
	tw.writef("Items:\t%d\n", state.ItemsTotal)
	tw.writef("Orphaned items:\t%d\n", state.ItemsOrphaned)
	tw.writef("Users:\t%d\n", state.UsersTotal)
	tw.writef("Subscriptions:\t%d\n", state.SubscriptionsTotal)
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
