package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/bookstore/pkg/api"
)

var addressForm = api.AddressForm{State: api.DefaultState}

// bookstore addresses
var addressesCmd = &cobra.Command{
	Use:   "addresses",
	Short: "Manage delivery addresses",
	RunE:  addressesListCmd.RunE,
}

var addressesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		list, err := client.Addresses.List(cmd.Context())
		if err != nil {
			return userError(err)
		}
		return printAddresses(cmd.OutOrStdout(), list)
	},
}

var addressesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Save a new address",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		addr, err := client.Addresses.Create(cmd.Context(), addressForm)
		if err != nil {
			return userError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved address %d: %s\n", addr.ID, addr.String())
		return nil
	},
}

var locateLat, locateLon float64
var locateSave bool

var addressesLocateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Fill an address from coordinates",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireLogin(); err != nil {
			return err
		}
		form, err := client.Addresses.Locate(cmd.Context(), locateLat, locateLon)
		if err != nil {
			return userError(err)
		}

		out := cmd.OutOrStdout()
		w := table(out)
		fmt.Fprintf(w, "Village\t%s\n", form.Village)
		fmt.Fprintf(w, "Mandal\t%s\n", form.Mandal)
		fmt.Fprintf(w, "District\t%s\n", form.District)
		fmt.Fprintf(w, "State\t%s\n", form.State)
		fmt.Fprintf(w, "Pincode\t%s\n", form.Pincode)
		if err := w.Flush(); err != nil {
			return err
		}

		if !locateSave {
			return nil
		}
		addr, err := client.Addresses.Create(cmd.Context(), form)
		if err != nil {
			return userError(err)
		}
		fmt.Fprintf(out, "Saved address %d\n", addr.ID)
		return nil
	},
}

func addressFlags(cmd *cobra.Command, form *api.AddressForm) {
	cmd.Flags().StringVar(&form.Village, "village", "", "village or suburb")
	cmd.Flags().StringVar(&form.Mandal, "mandal", "", "mandal or town")
	cmd.Flags().StringVar(&form.District, "district", "", "district or city")
	cmd.Flags().StringVar(&form.State, "state", api.DefaultState, "state")
	cmd.Flags().StringVar(&form.Pincode, "pincode", "", "postal code")
}

func init() {
	addressFlags(addressesAddCmd, &addressForm)

	addressesLocateCmd.Flags().Float64Var(&locateLat, "lat", 0, "latitude")
	addressesLocateCmd.Flags().Float64Var(&locateLon, "lon", 0, "longitude")
	addressesLocateCmd.Flags().BoolVar(&locateSave, "save", false, "save the located address")
	_ = addressesLocateCmd.MarkFlagRequired("lat")
	_ = addressesLocateCmd.MarkFlagRequired("lon")

	addressesCmd.AddCommand(addressesListCmd, addressesAddCmd, addressesLocateCmd)
}
