package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bookstore/app/models"
	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/attachment"
)

// bookstore admin
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Admin console (ADMIN role)",
}

var adminOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List every order",
	RunE: func(cmd *cobra.Command, args []string) error {
		orders, err := client.Admin.Orders(cmd.Context())
		if err != nil {
			return userError(err)
		}
		return printOrders(cmd.OutOrStdout(), orders, true)
	},
}

var adminLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the security log",
	RunE: func(cmd *cobra.Command, args []string) error {
		logs, err := client.Admin.Logs(cmd.Context())
		if err != nil {
			return userError(err)
		}
		return printLogs(cmd.OutOrStdout(), logs)
	},
}

var adminStatusCmd = &cobra.Command{
	Use:       "status [order-id] [status]",
	Short:     "Change an order's status",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"PENDING", "PAID", "SHIPPED", "DELIVERED", "CANCELLED"},
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		notice, err := client.Admin.SetStatus(cmd.Context(), id, models.OrderStatus(args[1]))
		if err != nil {
			return userError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), notice)
		return nil
	},
}

var (
	bookForm  api.BookForm
	bookImage string
)

var adminBookCreateCmd = &cobra.Command{
	Use:   "book-create",
	Short: "Add a book to the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		form := bookForm
		if err := attachImage(cmd, &form); err != nil {
			return err
		}
		return saveBook(cmd, 0, form)
	},
}

var adminBookUpdateCmd = &cobra.Command{
	Use:   "book-update [book-id]",
	Short: "Edit a book; flags not given keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		book, err := client.Catalog.Find(cmd.Context(), id)
		if err != nil {
			return userError(err)
		}

		form := api.BookFormFrom(book)
		flags := cmd.Flags()
		for name, dst := range map[string]*string{
			"title":       &form.Title,
			"author":      &form.Author,
			"description": &form.Description,
			"price":       &form.Price,
			"stock":       &form.Stock,
			"category":    &form.Category,
		} {
			if flags.Changed(name) {
				*dst, _ = flags.GetString(name)
			}
		}
		if err := attachImage(cmd, &form); err != nil {
			return err
		}
		return saveBook(cmd, id, form)
	},
}

var adminBookDeleteCmd = &cobra.Command{
	Use:   "book-delete [book-id]",
	Short: "Remove a book from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		notice, err := client.Admin.DeleteBook(cmd.Context(), id)
		if err != nil {
			return userError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), notice)
		return nil
	},
}

func attachImage(cmd *cobra.Command, form *api.BookForm) error {
	if bookImage == "" {
		return nil
	}
	f, err := attachment.Open(cmd.Context(), bookImage)
	if err != nil {
		return err
	}
	if !f.IsImage() {
		return fmt.Errorf("%s is %s, not an image", bookImage, f.ContentType)
	}
	form.Image = &f
	return nil
}

func saveBook(cmd *cobra.Command, id uint, form api.BookForm) error {
	notice, err := client.Admin.SaveBook(cmd.Context(), id, form)
	if err != nil {
		return userError(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), notice)
	return nil
}

func bookFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&bookForm.Title, "title", "", "title")
	f.StringVar(&bookForm.Author, "author", "", "author")
	f.StringVar(&bookForm.Description, "description", "", "description")
	f.StringVar(&bookForm.Price, "price", "", "price, e.g. 249.00")
	f.StringVar(&bookForm.Stock, "stock", "", "copies in stock")
	f.StringVar(&bookForm.Category, "category", "", "category")
	f.StringVar(&bookImage, "image", "", "cover image: local file or s3://bucket/key")
}

func init() {
	bookFlags(adminBookCreateCmd)
	bookFlags(adminBookUpdateCmd)

	adminCmd.AddCommand(
		adminOrdersCmd,
		adminLogsCmd,
		adminStatusCmd,
		adminBookCreateCmd,
		adminBookUpdateCmd,
		adminBookDeleteCmd,
	)
}
