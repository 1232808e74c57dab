package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/venta-admin/contacts"
	"github.com/jrsteele09/venta-admin/customorders"
	"github.com/jrsteele09/venta-admin/dashboard"
	apperrors "github.com/jrsteele09/venta-admin/internal/errors"
	"github.com/jrsteele09/venta-admin/internal/utils"
	"github.com/jrsteele09/venta-admin/products"
	"github.com/jrsteele09/venta-admin/token"
	"github.com/pkg/errors"
)

var errUsage = errors.New("usage")

const dateLayout = "2006-01-02"

type command struct {
	usage   string
	summary string
	run     func(ctx context.Context, a *App, args []string) error
}

var commands = map[string]command{
	"login":           {"[email|username]", "log in and cache the session", cmdLogin},
	"logout":          {"", "forget the cached session", cmdLogout},
	"whoami":          {"", "show the logged in admin", cmdWhoami},
	"products":        {"[-search text]", "list catalog products", cmdProducts},
	"product":         {"<id|slug>", "show one product", cmdProduct},
	"custom-products": {"", "list custom-order products and categories", cmdCustomProducts},
	"inquiries":       {"[-product id]", "list custom-order inquiries", cmdInquiries},
	"inquiry-stats":   {"", "count inquiries by status", cmdInquiryStats},
	"inquiry-status":  {"[-notes text] <id> <status>", "change an inquiry's status", cmdInquiryStatus},
	"contacts":        {"[-status s] [-search text] [-sort field] [-order asc|desc] [-page n] [-limit n]", "list contact submissions", cmdContacts},
	"contact-stats":   {"", "count contacts by status", cmdContactStats},
	"contact-status":  {"[-notes text] <id> <status>", "change a contact's status", cmdContactStatus},
	"dashboard":       {"", "overview of products and orders", cmdDashboard},
}

func (a *App) usage() {
	fmt.Fprintln(a.errOut, "usage: ventactl [--metrics] <command> [arguments]")
	fmt.Fprintln(a.errOut)
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	w := tabwriter.NewWriter(a.errOut, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%s\n", name, commands[name].summary)
	}
	_ = w.Flush()
}

func (a *App) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *App) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
}

func cmdLogin(ctx context.Context, a *App, args []string) error {
	fs := a.flagSet("login")
	if err := fs.Parse(args); err != nil || fs.NArg() > 1 {
		return errUsage
	}

	var err error
	identifier := fs.Arg(0)
	if identifier == "" {
		identifier = a.cfg.GetLoginIdentifier()
	}
	if identifier == "" {
		if identifier, err = a.readLine("Email or username: "); err != nil {
			return err
		}
	}
	if identifier == "" {
		return errUsage
	}

	password := a.cfg.GetLoginPassword()
	if password == "" {
		if password, err = a.password("Password: "); err != nil {
			return err
		}
	}

	session, err := a.auth.Login(ctx, identifier, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", session.User.Username, session.User.Email)
	return nil
}

func cmdLogout(ctx context.Context, a *App, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func cmdWhoami(_ context.Context, a *App, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	profile, ok := a.auth.GetProfile()
	if !ok || !a.auth.IsAuthenticated() {
		return errors.Wrapf(apperrors.ErrNoSession, "not logged in, run %s", a.cfg.GetLoginEntryPoint())
	}
	fmt.Fprintf(a.out, "%s <%s> (id %s)\n", profile.Username, profile.Email, profile.ID)

	access, _ := a.store.GetAccessToken()
	claims, err := token.Inspect(access)
	if err != nil {
		return nil
	}
	if remaining, ok := claims.ExpiresIn(time.Now()); ok {
		if remaining > 0 {
			fmt.Fprintf(a.out, "Access token expires in %s\n", remaining.Round(time.Second))
		} else {
			fmt.Fprintln(a.out, "Access token expired, it will be refreshed on the next call")
		}
	}
	return nil
}

func cmdProducts(ctx context.Context, a *App, args []string) error {
	fs := a.flagSet("products")
	search := fs.String("search", "", "")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *search == "" {
		*search = strings.Join(fs.Args(), " ")
	}

	list, err := a.products.List(ctx, products.Filter{Search: *search})
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No products found")
		return nil
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tTITLE\tSKU\tPRICE\tSTOCK\tSTATUS")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%d\t%s\n", p.ID, p.Title, orNA(p.SKU), p.Price, p.Stock, a.status(p.StockStatus))
	}
	return w.Flush()
}

func cmdProduct(ctx context.Context, a *App, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	p, err := a.products.Get(ctx, args[0])
	if err != nil {
		return err
	}

	w := a.table()
	fmt.Fprintf(w, "ID\t%s\n", p.ID)
	fmt.Fprintf(w, "Title\t%s\n", p.Title)
	fmt.Fprintf(w, "Slug\t%s\n", orNA(p.Slug))
	fmt.Fprintf(w, "SKU\t%s\n", orNA(p.SKU))
	fmt.Fprintf(w, "Price\t%.2f\n", p.Price)
	fmt.Fprintf(w, "Stock\t%d %s\n", p.Stock, a.status(p.StockStatus))
	fmt.Fprintf(w, "Featured\t%s\n", utils.FormatBool(p.Featured))
	for _, spec := range p.Specifications {
		fmt.Fprintf(w, "Spec\t%s: %s\n", spec.Key, spec.Value)
	}
	linkNames := make([]string, 0, len(p.Links))
	for name := range p.Links {
		linkNames = append(linkNames, name)
	}
	sort.Strings(linkNames)
	for _, name := range linkNames {
		fmt.Fprintf(w, "Link\t%s: %s\n", name, p.Links[name])
	}
	for _, img := range p.ImageURLs(a.cfg.GetAssetBaseURL()) {
		fmt.Fprintf(w, "Image\t%s\n", img)
	}
	if p.Description != "" {
		fmt.Fprintf(w, "Description\t%s\n", p.Description)
	}
	return w.Flush()
}

func cmdCustomProducts(ctx context.Context, a *App, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	list, err := a.orders.ListProducts(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tINQUIRIES")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", p.ID, p.Title, p.Category, p.InquiryCount)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Categories: %s\n", strings.Join(a.orders.Categories(ctx), ", "))
	return nil
}

func cmdInquiries(ctx context.Context, a *App, args []string) error {
	fs := a.flagSet("inquiries")
	productID := fs.String("product", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}

	var (
		list []customorders.Inquiry
		err  error
	)
	if *productID != "" {
		list, err = a.orders.ProductInquiries(ctx, *productID)
	} else {
		list, err = a.orders.ListInquiries(ctx)
	}
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No inquiries found")
		return nil
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tQTY\tCREATED\tSTATUS")
	for _, inq := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", inq.ID, inq.Name, inq.Email, inq.Quantity, inq.CreatedAt.Format(dateLayout), a.status(inq.Status))
	}
	return w.Flush()
}

func cmdInquiryStats(ctx context.Context, a *App, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	stats := a.orders.Stats(ctx)
	w := a.table()
	fmt.Fprintf(w, "Total\t%d\n", stats.Total)
	fmt.Fprintf(w, "Pending\t%d\n", stats.Pending)
	fmt.Fprintf(w, "Reviewing\t%d\n", stats.Reviewing)
	fmt.Fprintf(w, "Quoted\t%d\n", stats.Quoted)
	fmt.Fprintf(w, "Completed\t%d\n", stats.Completed)
	return w.Flush()
}

func cmdInquiryStatus(ctx context.Context, a *App, args []string) error {
	fs := a.flagSet("inquiry-status")
	notes := fs.String("notes", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
		return errUsage
	}
	update := customorders.InquiryUpdate{Status: utils.Ptr(fs.Arg(1))}
	if *notes != "" {
		update.Notes = notes
	}
	inq, err := a.orders.UpdateInquiry(ctx, fs.Arg(0), update)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Inquiry %s is now %s\n", inq.ID, a.status(inq.Status))
	return nil
}

func cmdContacts(ctx context.Context, a *App, args []string) error {
	fs := a.flagSet("contacts")
	var filter contacts.Filter
	fs.StringVar(&filter.Status, "status", "", "")
	fs.StringVar(&filter.Search, "search", "", "")
	fs.StringVar(&filter.SortBy, "sort", "", "")
	fs.StringVar(&filter.Order, "order", "", "")
	fs.IntVar(&filter.Page, "page", 0, "")
	fs.IntVar(&filter.Limit, "limit", 0, "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}

	res, err := a.contacts.List(ctx, filter)
	if err != nil {
		return err
	}
	if len(res.Data) == 0 {
		fmt.Fprintln(a.out, "No contacts found")
		return nil
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tTYPE\tCREATED\tSTATUS")
	for _, c := range res.Data {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.FullName(), c.Email, c.InquiryType, c.CreatedAt.Format(dateLayout), a.status(c.Status))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Page %d of %d (%d contacts)\n", res.Pagination.Page, res.Pagination.Pages, res.Pagination.Total)
	return nil
}

func cmdContactStats(ctx context.Context, a *App, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	stats, err := a.contacts.Stats(ctx)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintf(w, "Total\t%d\n", stats.Total)
	fmt.Fprintf(w, "New\t%d\n", stats.New)
	fmt.Fprintf(w, "In progress\t%d\n", stats.InProgress)
	fmt.Fprintf(w, "Resolved\t%d\n", stats.Resolved)
	return w.Flush()
}

func cmdContactStatus(ctx context.Context, a *App, args []string) error {
	fs := a.flagSet("contact-status")
	notes := fs.String("notes", "", "")
	if err := fs.Parse(args); err != nil || fs.NArg() != 2 {
		return errUsage
	}
	update := contacts.Update{Status: utils.Ptr(fs.Arg(1))}
	if *notes != "" {
		update.Notes = notes
	}
	_, msg, err := a.contacts.Update(ctx, fs.Arg(0), update)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func cmdDashboard(ctx context.Context, a *App, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	summary, err := dashboard.Load(ctx, a.products, a.orders)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Total products: %d\nTotal orders: %d\nPending orders: %d\n\n",
		summary.TotalProducts, summary.TotalOrders, summary.PendingOrders)

	fmt.Fprintln(a.out, "Recent products")
	if len(summary.RecentProducts) == 0 {
		fmt.Fprintln(a.out, "  No products yet")
	}
	w := a.table()
	for _, p := range summary.RecentProducts {
		fmt.Fprintf(w, "  %s\t%s\t%.2f\n", p.Title, orNA(p.SKU), p.Price)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "\nLatest orders")
	if len(summary.LatestOrders) == 0 {
		fmt.Fprintln(a.out, "  No orders yet")
	}
	w = a.table()
	for _, o := range summary.LatestOrders {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", o.Name, o.CreatedAt.Format(dateLayout), a.status(o.Status))
	}
	return w.Flush()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
