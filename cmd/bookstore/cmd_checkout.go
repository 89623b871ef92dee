package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bookstore/app/services"
	"github.com/shashiranjanraj/bookstore/pkg/api"
	"github.com/shashiranjanraj/bookstore/pkg/attachment"
)

var (
	checkoutAddress  uint
	checkoutNew      = api.AddressForm{State: api.DefaultState}
	checkoutProvider string
	checkoutNote     string
	checkoutProof    string
)

// bookstore checkout
//
// Runs both checkout steps: the address (saved, --address, or a new one from
// the address flags; the default address otherwise), then the payment.
var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()
		co := client.Checkout()

		if err := co.Load(ctx); err != nil {
			return userError(err)
		}

		switch {
		case checkoutNew.Village != "" || checkoutNew.Pincode != "":
			if _, err := co.AddAddress(ctx, checkoutNew); err != nil {
				return userError(err)
			}
		case checkoutAddress != 0:
			if err := co.Select(checkoutAddress); err != nil {
				_ = printAddresses(out, co.Addresses())
				return userError(err)
			}
		}
		if err := co.Next(); err != nil {
			_ = printAddresses(out, co.Addresses())
			return userError(err)
		}

		var proof *attachment.File
		if checkoutProof != "" {
			f, err := attachment.Open(ctx, checkoutProof)
			if err != nil {
				return err
			}
			proof = &f
		}
		if err := co.SetPayment(api.Provider(checkoutProvider), checkoutNote, proof); err != nil {
			return userError(err)
		}

		addr, _ := co.Selected()
		if err := printCart(out, client.Cart.Lines()); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deliver to: %s\n", addr.String())

		receipt, err := co.PlaceOrder(ctx)
		if err != nil {
			if orderID, partial := services.IsPartial(err); partial {
				fmt.Fprintf(cmd.ErrOrStderr(), "Order %d was created but its payment was not recorded.\n", orderID)
			}
			return userError(err)
		}
		fmt.Fprintf(out, "Order #%d: %s\n", receipt.Order.ID, receipt.Message)
		return nil
	},
}

func init() {
	f := checkoutCmd.Flags()
	f.UintVar(&checkoutAddress, "address", 0, "saved address id (default: your default address)")
	addressFlags(checkoutCmd, &checkoutNew)
	f.StringVar(&checkoutProvider, "provider", string(api.ProviderManual), "payment provider: MANUAL or TEST")
	f.StringVar(&checkoutNote, "note", "", "payment note, e.g. a transaction reference")
	f.StringVar(&checkoutProof, "proof", "", "payment proof: local file or s3://bucket/key")
}
