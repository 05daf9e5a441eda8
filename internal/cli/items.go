package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/example/nextshop-catalog/client"
	"github.com/example/nextshop-catalog/domain/item"
	"github.com/spf13/cobra"
)

// NewItemsCommand creates the items command group.
func NewItemsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List, show and add catalog items",
	}

	cmd.AddCommand(newItemsListCommand(rootOpts))
	cmd.AddCommand(newItemsGetCommand(rootOpts))
	cmd.AddCommand(newItemsAddCommand(rootOpts))
	return cmd
}

func newItemsListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List every item",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			items, err := rootOpts.client().ListItems(cmd.Context())
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(items, func(w io.Writer) {
				writeItemTable(w, items)
			})
		},
	}
}

func newItemsGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Show one item",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			it, err := rootOpts.client().GetItem(cmd.Context(), args[0])
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(it, func(w io.Writer) {
				writeItem(w, it)
			})
		},
	}
}

type addOptions struct {
	name        string
	description string
	price       string
	image       string
}

func newItemsAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item (requires --token)",
		Long: `Add an item to the catalog.

The price is sent as given and validated by the server, so both
"19.99" and "19" are accepted while "free" is rejected.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := rootOpts.formatter(cmd)
			it, err := rootOpts.client().CreateItem(cmd.Context(), client.NewItem{
				Name:        opts.name,
				Description: opts.description,
				Price:       opts.price,
				Image:       opts.image,
			})
			if err != nil {
				return out.Fail(err)
			}
			return out.Success(it, func(w io.Writer) {
				fmt.Fprintf(w, "Created item %s\n", it.ID)
				writeItem(w, it)
			})
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "item name")
	cmd.Flags().StringVar(&opts.description, "description", "", "item description")
	cmd.Flags().StringVar(&opts.price, "price", "", "item price")
	cmd.Flags().StringVar(&opts.image, "image", "", "image URL (optional)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("price")

	return cmd
}

func writeItemTable(w io.Writer, items []item.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tCREATED")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", it.ID, it.Name, it.Price, it.CreatedAt.Format(time.RFC3339))
	}
	_ = tw.Flush()
}

func writeItem(w io.Writer, it *item.Item) {
	fmt.Fprintf(w, "ID:          %s\n", it.ID)
	fmt.Fprintf(w, "Name:        %s\n", it.Name)
	fmt.Fprintf(w, "Description: %s\n", it.Description)
	fmt.Fprintf(w, "Price:       %.2f\n", it.Price)
	fmt.Fprintf(w, "Image:       %s\n", it.Image)
	fmt.Fprintf(w, "Created:     %s\n", it.CreatedAt.Format(time.RFC3339))
}
