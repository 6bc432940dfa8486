package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rananjaysingh20/work-tracker-cli/internal/model"
	"github.com/rananjaysingh20/work-tracker-cli/internal/query"
	"github.com/rananjaysingh20/work-tracker-cli/internal/ui"
)

var (
	categoryName string
	categoryDesc string
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage work categories",
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Args:  cobra.NoArgs,
	RunE:  runCategoriesList,
}

var categoriesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a category",
	Args:  cobra.NoArgs,
	RunE:  runCategoriesCreate,
}

var categoriesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesUpdate,
}

var categoriesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesDelete,
}

func init() {
	categoriesCreateCmd.Flags().StringVar(&categoryName, "name", "", "Category name")
	categoriesCreateCmd.Flags().StringVar(&categoryDesc, "description", "", "Category description")
	categoriesUpdateCmd.Flags().StringVar(&categoryName, "name", "", "New name")
	categoriesUpdateCmd.Flags().StringVar(&categoryDesc, "description", "", "New description")

	categoriesCmd.AddCommand(categoriesListCmd)
	categoriesCmd.AddCommand(categoriesCreateCmd)
	categoriesCmd.AddCommand(categoriesUpdateCmd)
	categoriesCmd.AddCommand(categoriesDeleteCmd)
}

func runCategoriesList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	cats, err := query.Fetch(ctx, a.cache, query.Key{Resource: "categories"}, a.client.Categories.List)
	if err != nil {
		fail(err)
	}
	if len(cats) == 0 {
		fmt.Println(ui.Muted("No categories yet."))
		return nil
	}

	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{c.ID, c.Name, c.Description})
	}
	fmt.Print(ui.Table([]string{"ID", "NAME", "DESCRIPTION"}, rows))
	return nil
}

func runCategoriesCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	req := model.CategoryRequest{Name: categoryName, Description: categoryDesc}
	m := query.NewMutation[*model.Category](a.cache, query.Invalidates("categories"))
	c, err := m.Run(ctx, func(ctx context.Context) (*model.Category, error) {
		return a.client.Categories.Create(ctx, req)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Created category %s (%s)\n", c.Name, c.ID)
	return nil
}

func runCategoriesUpdate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	req := model.CategoryRequest{Name: categoryName, Description: categoryDesc}
	m := query.NewMutation[*model.Category](a.cache, query.Invalidates("categories"))
	c, err := m.Run(ctx, func(ctx context.Context) (*model.Category, error) {
		return a.client.Categories.Update(ctx, args[0], req)
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Updated category %s\n", c.ID)
	return nil
}

func runCategoriesDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	ctx := context.Background()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	m := query.NewMutation[struct{}](a.cache, query.Invalidates("categories"))
	_, err = m.Run(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.client.Categories.Delete(ctx, args[0])
	})
	if err != nil {
		fail(err)
	}
	fmt.Println("Category deleted.")
	return nil
}
