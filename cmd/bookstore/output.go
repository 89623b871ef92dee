package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shashiranjanraj/bookstore/app/models"
	"github.com/shashiranjanraj/bookstore/pkg/cart"
)

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
}

func printBooks(out io.Writer, books []models.Book) error {
	if len(books) == 0 {
		fmt.Fprintln(out, "No books available.")
		return nil
	}
	w := table(out)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tPRICE\tSTOCK")
	for _, b := range books {
		stock := fmt.Sprint(b.Stock)
		if !b.InStock() {
			stock = "out of stock"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, b.Price.StringFixed(2), stock)
	}
	return w.Flush()
}

func printCart(out io.Writer, lines []models.CartLine) error {
	if len(lines) == 0 {
		fmt.Fprintln(out, "Your cart is empty.")
		return nil
	}
	w := table(out)
	fmt.Fprintln(w, "ID\tTITLE\tPRICE\tQTY\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", l.ID, l.Title, l.Price.StringFixed(2), l.Quantity, l.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(w, "\t\t\tTOTAL\t%s\n", cart.Total(lines).StringFixed(2))
	return w.Flush()
}

func printAddresses(out io.Writer, list []models.Address) error {
	if len(list) == 0 {
		fmt.Fprintln(out, "No saved addresses.")
		return nil
	}
	w := table(out)
	fmt.Fprintln(w, "ID\tADDRESS\tDEFAULT")
	for _, a := range list {
		def := ""
		if a.IsDefault {
			def = "yes"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", a.ID, a.String(), def)
	}
	return w.Flush()
}

func printOrders(out io.Writer, orders []models.Order, withCustomer bool) error {
	if len(orders) == 0 {
		fmt.Fprintln(out, "No orders yet.")
		return nil
	}
	w := table(out)
	if withCustomer {
		fmt.Fprintln(w, "ID\tDATE\tCUSTOMER\tTOTAL\tSTATUS\tITEMS")
	} else {
		fmt.Fprintln(w, "ID\tDATE\tTOTAL\tSTATUS\tITEMS")
	}
	for _, o := range orders {
		date := ""
		if !o.CreatedAt.IsZero() {
			date = o.CreatedAt.Local().Format(time.DateOnly)
		}
		if withCustomer {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n", o.ID, date, customer(o), o.TotalAmount.StringFixed(2), o.Status, len(o.Items))
		} else {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", o.ID, date, o.TotalAmount.StringFixed(2), o.Status, len(o.Items))
		}
	}
	return w.Flush()
}

func printLogs(out io.Writer, logs []models.AuditLog) error {
	if len(logs) == 0 {
		fmt.Fprintln(out, "No log entries.")
		return nil
	}
	w := table(out)
	fmt.Fprintln(w, "TIME\tUSER\tACTION\tIP\tDETAILS")
	for _, l := range logs {
		user := "-"
		if l.User != nil {
			user = l.User.Email
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", l.CreatedAt.Local().Format(time.DateTime), user, l.Action, l.IPAddress, l.DetailsText())
	}
	return w.Flush()
}

func customer(o models.Order) string {
	if o.User == nil {
		return "-"
	}
	return o.User.DisplayName()
}
