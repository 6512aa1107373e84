package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Makepad-fr/itemdesk/internal/form"
	"github.com/Makepad-fr/itemdesk/internal/model"
	"github.com/Makepad-fr/itemdesk/internal/session"
	"github.com/Makepad-fr/itemdesk/internal/ui"
)

func (rt *runtime) itemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List and manage items",
		// item commands need a session; without one nothing is sent
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.setup(); err != nil {
				return err
			}
			_, err := session.NewGuard(rt.store).Check()
			return err
		},
	}
	cmd.AddCommand(rt.itemsListCmd())
	cmd.AddCommand(rt.itemsAddCmd())
	cmd.AddCommand(rt.itemsEditCmd())
	cmd.AddCommand(rt.itemsRemoveCmd())
	return cmd
}

func (rt *runtime) itemsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List items",
		Args:    args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := rt.client.ListItems(cmd.Context())
			if err != nil {
				return rt.apiFailure(err, "Failed to load data")
			}
			ui.Panel(rt.out, ui.ItemLines(items))
			return nil
		},
	}
}

func (rt *runtime) itemsAddCmd() *cobra.Command {
	var in model.ItemInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an item",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if errs := form.ValidateItem(in); !errs.OK() {
				return rt.fieldErrors(errs)
			}
			it, err := rt.client.CreateItem(cmd.Context(), form.NormalizeItem(in))
			if err != nil {
				return rt.apiFailure(err, "Failed to save data")
			}
			ui.OK(rt.out, "Data added successfully!")
			if it.ID != "" {
				ui.Hint(rt.out, "id: "+it.ID.String())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "item title, at least 3 characters")
	cmd.Flags().StringVar(&in.Description, "description", "", "item description, at least 5 characters")
	return cmd
}

func (rt *runtime) itemsEditCmd() *cobra.Command {
	var in model.ItemInput
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update an item; omitted fields keep their current value",
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			id := model.ItemID(strings.TrimSpace(a[0]))
			titleSet, descSet := cmd.Flags().Changed("title"), cmd.Flags().Changed("description")
			if !titleSet && !descSet {
				return usagef("edit: nothing to change, pass --title and/or --description")
			}
			if !titleSet || !descSet {
				cur, err := rt.find(cmd.Context(), id)
				if err != nil {
					return err
				}
				if !titleSet {
					in.Title = cur.Title
				}
				if !descSet {
					in.Description = cur.Description
				}
			}
			if errs := form.ValidateItem(in); !errs.OK() {
				return rt.fieldErrors(errs)
			}
			if _, err := rt.client.UpdateItem(cmd.Context(), id, form.NormalizeItem(in)); err != nil {
				return rt.apiFailure(err, "Failed to save data")
			}
			ui.OK(rt.out, "Data updated successfully!")
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "new title")
	cmd.Flags().StringVar(&in.Description, "description", "", "new description")
	return cmd
}

func (rt *runtime) itemsRemoveCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an item after confirmation",
		Long: `Delete an item. Without --yes the item list is fetched first (the API has
no single-item read) to show the title in the confirmation prompt; only
an answer of "y" or "yes" sends the DELETE.`,
		Args:  args(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, a []string) error {
			id := model.ItemID(strings.TrimSpace(a[0]))
			if !yes {
				it, err := rt.find(cmd.Context(), id)
				if err != nil {
					return err
				}
				answer, err := rt.prompt(fmt.Sprintf("Are you sure you want to delete %q? [y/N] ", it.Title))
				if err != nil {
					return err
				}
				if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
					ui.Hint(rt.out, "cancelled")
					return nil
				}
			}
			if err := rt.client.DeleteItem(cmd.Context(), id); err != nil {
				return rt.apiFailure(err, "Failed to delete data")
			}
			ui.OK(rt.out, "Data deleted successfully!")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// find looks id up in the item list; the API has no single-item read.
func (rt *runtime) find(ctx context.Context, id model.ItemID) (model.Item, error) {
	items, err := rt.client.ListItems(ctx)
	if err != nil {
		return model.Item{}, rt.apiFailure(err, "Failed to load data")
	}
	for _, it := range items {
		if it.ID == id {
			return it, nil
		}
	}
	ui.Fail(rt.err, "no item with id "+id.String())
	ui.Hint(rt.err, "Run: itemdesk items ls")
	return model.Item{}, exitCode(exitError)
}
