package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bookstore/pkg/guard"
)

// bookstore books
var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		books, err := client.Catalog.Books(cmd.Context())
		if err != nil {
			return userError(err)
		}
		return printBooks(cmd.OutOrStdout(), books)
	},
}

// bookstore cart
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show or change the cart",
	RunE:  cartShowCmd.RunE,
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printCart(cmd.OutOrStdout(), client.Cart.Lines())
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add [book-id]",
	Short: "Add one copy of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		notice, err := client.Catalog.AddToCartByID(cmd.Context(), id)
		if err != nil {
			return userError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), notice)
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove [book-id]",
	Short: "Remove a book from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		client.Cart.Remove(id)
		return printCart(cmd.OutOrStdout(), client.Cart.Lines())
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		client.Cart.Clear()
		fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared.")
		return nil
	},
}

// bookstore orders
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		orders, err := client.Orders.History(cmd.Context())
		if err != nil {
			return userError(err)
		}
		return printOrders(cmd.OutOrStdout(), orders, false)
	},
}

func init() {
	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartRemoveCmd, cartClearCmd)
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(n), nil
}

// requireLogin gates commands the way the pages are gated.
func requireLogin() error {
	if err := guard.Require(client.Session); err != nil {
		return userError(err)
	}
	return nil
}
