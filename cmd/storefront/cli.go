package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/nikolayk812/storefront/internal/app"
	"github.com/nikolayk812/storefront/internal/cart"
	"github.com/nikolayk812/storefront/internal/checkout"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/logger"
	"github.com/urfave/cli/v2"
)

const serviceName = "storefront"

func newCLI() *cli.App {
	return &cli.App{
		Name:  serviceName,
		Usage: "browse the catalog and manage the shopping cart",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "load variables from `FILE` (default .env when present)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "products",
				Usage:  "list catalog products",
				Action: withApp(listProducts),
			},
			{
				Name:  "cart",
				Usage: "show or change the cart",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "print cart lines and totals",
						Action: withApp(showCart),
					},
					{
						Name:      "add",
						Usage:     "add a product",
						ArgsUsage: "PRODUCT_ID",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "shade", Usage: "shade id, \"default\" for none"},
							&cli.IntFlag{Name: "quantity", Aliases: []string{"q"}, Value: 1},
						},
						Action: withApp(addItem),
					},
					{
						Name:      "remove",
						Usage:     "remove a line",
						ArgsUsage: "PRODUCT_ID [VARIANT]",
						Action:    withApp(removeItem),
					},
					{
						Name:      "update",
						Usage:     "set a line's quantity, zero removes it",
						ArgsUsage: "PRODUCT_ID VARIANT QUANTITY",
						Action:    withApp(updateQuantity),
					},
					{
						Name:   "clear",
						Usage:  "empty the cart",
						Action: withApp(clearCart),
					},
				},
			},
			{
				Name:   "checkout",
				Usage:  "print the hosted checkout link or the order summary",
				Action: withApp(checkoutCart),
			},
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: withApp(serve),
			},
			{
				Name:  "config",
				Usage: "inspect configuration",
				Subcommands: []*cli.Command{
					{
						Name:   "check",
						Usage:  "validate the Shopify settings",
						Action: checkConfig,
					},
				},
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.StringSlice("env-file")...)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

func withApp(fn func(*cli.Context, *app.App) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}

		a, err := app.New(c.Context, cfg, logger.New(serviceName, cfg.LogLevel))
		if err != nil {
			return fmt.Errorf("app.New: %w", err)
		}
		defer a.Close()

		return fn(c, a)
	}
}

func listProducts(c *cli.Context, a *app.App) error {
	products, err := a.Catalog.ListProducts(c.Context, a.Config().CatalogPageSize)
	if err != nil {
		return fmt.Errorf("products could not be loaded, try again: %w", err)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSHADES")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Price, len(p.Shades))
	}
	return tw.Flush()
}

func showCart(c *cli.Context, a *app.App) error {
	return printCart(c.App.Writer, a.Store.Cart(), a)
}

func addItem(c *cli.Context, a *app.App) error {
	productID := c.Args().First()
	if productID == "" {
		return cli.Exit("PRODUCT_ID is required", 2)
	}

	products, err := a.Catalog.ListProducts(c.Context, a.Config().CatalogPageSize)
	if err != nil {
		return fmt.Errorf("products could not be loaded, try again: %w", err)
	}

	var product *domain.Product
	for i := range products {
		if products[i].ID == productID {
			product = &products[i]
			break
		}
	}
	if product == nil {
		return cli.Exit(fmt.Sprintf("product %s not found", productID), 1)
	}

	opts := []cart.AddOption{cart.WithQuantity(c.Int("quantity"))}
	if c.IsSet("shade") {
		variant := domain.ParseVariantKey(c.String("shade"))
		if !variant.HasShade {
			opts = append(opts, cart.WithoutShade())
		} else {
			shade, ok := product.Shade(variant.ShadeID)
			if !ok {
				return cli.Exit(fmt.Sprintf("product %s has no shade %s", productID, variant.ShadeID), 1)
			}
			opts = append(opts, cart.WithShade(shade))
		}
	}

	a.Store.AddItem(c.Context, *product, opts...)

	return printCart(c.App.Writer, a.Store.Cart(), a)
}

func removeItem(c *cli.Context, a *app.App) error {
	productID := c.Args().Get(0)
	if productID == "" {
		return cli.Exit("PRODUCT_ID is required", 2)
	}

	a.Store.RemoveItem(c.Context, productID, domain.ParseVariantKey(c.Args().Get(1)))

	return printCart(c.App.Writer, a.Store.Cart(), a)
}

func updateQuantity(c *cli.Context, a *app.App) error {
	if c.Args().Len() != 3 {
		return cli.Exit("usage: cart update PRODUCT_ID VARIANT QUANTITY", 2)
	}

	quantity, err := strconv.Atoi(c.Args().Get(2))
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid quantity %q", c.Args().Get(2)), 2)
	}

	a.Store.UpdateQuantity(c.Context, c.Args().Get(0), domain.ParseVariantKey(c.Args().Get(1)), quantity)

	return printCart(c.App.Writer, a.Store.Cart(), a)
}

func clearCart(c *cli.Context, a *app.App) error {
	a.Store.Clear(c.Context)

	return printCart(c.App.Writer, a.Store.Cart(), a)
}

func checkoutCart(c *cli.Context, a *app.App) error {
	cfg := a.Config()
	snapshot := a.Store.Cart()

	if !cfg.UseShopifyCheckout {
		return printCart(c.App.Writer, snapshot, a)
	}

	m, err := checkout.BuildManifest(snapshot)
	if errors.Is(err, checkout.ErrEmptyCart) {
		return cli.Exit("cart is empty", 1)
	}
	if err != nil {
		return fmt.Errorf("checkout.BuildManifest: %w", err)
	}

	u, err := checkout.HostedURL(cfg.StoreDomain, m)
	if err != nil {
		return fmt.Errorf("checkout.HostedURL: %w", err)
	}

	_, err = fmt.Fprintln(c.App.Writer, u)
	return err
}

func serve(c *cli.Context, a *app.App) error {
	return a.Serve(c.Context)
}

func checkConfig(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	v := cfg.Check()
	for _, e := range v.Errors {
		fmt.Fprintln(c.App.Writer, "error:", e)
	}
	for _, w := range v.Warnings {
		fmt.Fprintln(c.App.Writer, "warning:", w)
	}

	if !v.OK() {
		return cli.Exit("configuration is invalid", 1)
	}
	fmt.Fprintln(c.App.Writer, "configuration ok")
	return nil
}

func printCart(w io.Writer, c domain.Cart, a *app.App) error {
	cur := a.Config().CurrencyUnit()

	if c.IsEmpty() {
		_, err := fmt.Fprintln(w, "cart is empty")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tVARIANT\tNAME\tQTY\tSUBTOTAL")
	for _, li := range c.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			li.Product.ID, li.Variant.Key(), li.Product.Name, li.Quantity,
			domain.FormatAmount(li.Subtotal(), cur))
	}

	s := a.Policy.Summarize(c.Total())
	fmt.Fprintf(tw, "\t\titems\t%d\t\n", c.Count())
	fmt.Fprintf(tw, "\t\tsubtotal\t\t%s\n", domain.FormatAmount(s.Subtotal, cur))
	fmt.Fprintf(tw, "\t\tshipping\t\t%s\n", domain.FormatAmount(s.Shipping, cur))
	fmt.Fprintf(tw, "\t\ttax\t\t%s\n", domain.FormatAmount(s.Tax, cur))
	fmt.Fprintf(tw, "\t\ttotal\t\t%s\n", domain.FormatAmount(s.Total, cur))

	return tw.Flush()
}
