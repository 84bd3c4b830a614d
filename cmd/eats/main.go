// Command eats is a CLI client for the CampusEats ordering API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/common-nighthawk/go-figure"
	"go.uber.org/zap"

	"github.com/campuseats/campuseats/internal/api"
	"github.com/campuseats/campuseats/internal/basket"
	"github.com/campuseats/campuseats/internal/errs"
	"github.com/campuseats/campuseats/internal/gate"
	"github.com/campuseats/campuseats/internal/gateway"
	"github.com/campuseats/campuseats/internal/model"
	"github.com/campuseats/campuseats/internal/session"
	"github.com/campuseats/campuseats/internal/store"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// requirements maps each command to the access level the gate enforces
// before dispatch.
var requirements = map[string]gate.Requirement{
	"version":           gate.Public,
	"register":          gate.Public,
	"login":             gate.Public,
	"logout":            gate.Public,
	"whoami":            gate.Public,
	"restaurants":       gate.Public,
	"restaurant":        gate.Public,
	"menu":              gate.Public,
	"basket":            gate.Authenticated,
	"add":               gate.Authenticated,
	"rm":                gate.Authenticated,
	"clear":             gate.Authenticated,
	"order":             gate.Authenticated,
	"orders":            gate.Authenticated,
	"rate":              gate.Authenticated,
	"complete":          gate.SellerOnly,
	"my-restaurant":     gate.SellerOnly,
	"create-restaurant": gate.SellerOnly,
	"my-items":          gate.SellerOnly,
	"add-item":          gate.SellerOnly,
	"rm-item":           gate.SellerOnly,
}

func usage() {
	figure.NewFigure("campus eats", "cybermedium", true).Print()
	fmt.Fprintf(os.Stderr, `
Usage:
  eats [-api URL] [-timeout D] [-v] <cmd> [args]

Account:
  register   -u <username> -email <email> -p <password> [-first F] [-last L] [-seller]
  login      -u <username> -p <password>
  logout
  whoami

Browsing:
  restaurants [-search text]
  restaurant  -id <id>
  menu        -restaurant <id> [-all]

Basket & orders:
  basket
  add        -item <id>
  rm         -item <basket item id>
  clear
  order
  orders
  rate       -item <id> -value <1..5>

Seller:
  my-restaurant
  create-restaurant -name <name>
  my-items
  add-item   -name N -price P [-desc D] [-image file] [-restaurant id]
  rm-item    -id <id>
  complete   -id <order id>
`)
	os.Exit(2)
}

func main() {
	apiURL := flag.String("api", "http://localhost:8000/api", "API base URL")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer func() { _ = logger.Sync() }()

	st := store.NewFileStore()
	gw := gateway.New(*apiURL, st,
		gateway.WithLogger(logger),
		gateway.WithSessionExpiredHook(func() {
			fmt.Fprintln(os.Stderr, "session expired; run 'eats login'")
		}),
	)
	client := api.New(gw)
	mgr := session.NewManager(client, st, logger)
	mgr.Restore()
	baskets := basket.NewService(client, logger)

	req, known := requirements[cmd]
	if !known {
		usage()
	}
	switch gate.Decide(req, mgr.Current()) {
	case gate.RedirectLogin:
		fail(errors.New("login required; run 'eats login'"))
	case gate.RedirectHome:
		fail(errors.New("seller account required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	app := &cli{ctx: ctx, api: client, session: mgr, baskets: baskets, store: st}
	app.run(cmd, args)
}

type cli struct {
	ctx     context.Context
	api     *api.Client
	session *session.Manager
	baskets *basket.Service
	store   store.Store
}

func (c *cli) run(cmd string, args []string) {
	switch cmd {
	case "version":
		figure.NewFigure("campus eats", "cybermedium", true).Print()
		fmt.Printf("eats %s (%s)\n", version, buildDate)

	case "register":
		c.register(args)
	case "login":
		c.login(args)
	case "logout":
		c.session.Logout(c.ctx)
		fmt.Println("logged out")
	case "whoami":
		c.whoami()

	case "restaurants":
		c.restaurants(args)
	case "restaurant":
		c.restaurant(args)
	case "menu":
		c.menu(args)

	case "basket":
		b, err := c.baskets.Current(c.ctx)
		if err != nil {
			fail(err)
		}
		printBasket(os.Stdout, b)
	case "add":
		c.addToBasket(args)
	case "rm":
		c.removeFromBasket(args)
	case "clear":
		if err := c.baskets.Clear(c.ctx); err != nil {
			fail(err)
		}
		fmt.Println("basket cleared")
	case "order":
		c.placeOrder()
	case "orders":
		orders, err := c.api.Orders(c.ctx)
		if err != nil {
			fail(err)
		}
		printOrders(os.Stdout, orders, c.session.Current().Seller())
	case "rate":
		c.rate(args)

	case "my-restaurant":
		r, err := c.api.MyRestaurant(c.ctx)
		if err != nil {
			fail(err)
		}
		printJSON(r)
	case "create-restaurant":
		c.createRestaurant(args)
	case "my-items":
		items, err := c.api.MyItems(c.ctx)
		if err != nil {
			fail(err)
		}
		printItems(os.Stdout, items)
	case "add-item":
		c.addItem(args)
	case "rm-item":
		c.removeItem(args)
	case "complete":
		c.complete(args)

	default:
		usage()
	}
}

func (c *cli) register(args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	u := fs.String("u", "", "username")
	email := fs.String("email", "", "email")
	p := fs.String("p", "", "password")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	seller := fs.Bool("seller", false, "register as a seller")
	_ = fs.Parse(args)

	role := model.RoleCustomer
	if *seller {
		role = model.RoleSeller
	}
	res := c.session.Register(c.ctx, api.RegisterRequest{
		Username:        *u,
		Email:           *email,
		Password:        *p,
		PasswordConfirm: *p,
		FirstName:       *first,
		LastName:        *last,
		Role:            role,
	})
	if !res.Success {
		fail(errors.New(res.Error))
	}
	fmt.Printf("registered as %s (%s)\n", *u, role)
}

func (c *cli) login(args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	u := fs.String("u", "", "username")
	p := fs.String("p", "", "password")
	_ = fs.Parse(args)

	res := c.session.Login(c.ctx, *u, *p)
	if !res.Success {
		fail(errors.New(res.Error))
	}
	fmt.Println("ok")
}

func (c *cli) whoami() {
	state := c.session.Current()
	if !state.Authenticated() {
		fmt.Println("not logged in")
		return
	}
	fmt.Printf("%s (%s)\n", state.User.Username, state.Role)
	if state.Profile != nil && state.Profile.Name != "" {
		fmt.Printf("profile: %s\n", state.Profile.Name)
	}
	if snap, err := c.store.Load(); err == nil && !snap.ExpiresAt.IsZero() {
		fmt.Printf("access token expires %s\n", snap.ExpiresAt.UTC().Format(time.RFC3339))
	}
}

func (c *cli) restaurants(args []string) {
	fs := flag.NewFlagSet("restaurants", flag.ExitOnError)
	search := fs.String("search", "", "filter by name")
	_ = fs.Parse(args)

	list, err := c.api.Restaurants(c.ctx, *search)
	if err != nil {
		fail(err)
	}
	for _, r := range list {
		fmt.Printf("%d\t%s\t(rating %s, by %s)\n", r.ID, r.Name, r.Rating, r.SellerName)
	}
}

func (c *cli) restaurant(args []string) {
	fs := flag.NewFlagSet("restaurant", flag.ExitOnError)
	id := fs.Int64("id", 0, "restaurant id")
	_ = fs.Parse(args)
	if *id == 0 {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}
	r, err := c.api.Restaurant(c.ctx, *id)
	if err != nil {
		fail(err)
	}
	printJSON(r)
}

func (c *cli) menu(args []string) {
	fs := flag.NewFlagSet("menu", flag.ExitOnError)
	restaurant := fs.Int64("restaurant", 0, "restaurant id")
	all := fs.Bool("all", false, "include unavailable items")
	_ = fs.Parse(args)
	if *restaurant == 0 {
		fmt.Fprintln(os.Stderr, "need -restaurant")
		os.Exit(1)
	}
	items, err := c.api.MenuItems(c.ctx, *restaurant, !*all)
	if err != nil {
		fail(err)
	}
	printItems(os.Stdout, items)
}

func (c *cli) addToBasket(args []string) {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	item := fs.Int64("item", 0, "menu item id")
	_ = fs.Parse(args)
	if *item == 0 {
		fmt.Fprintln(os.Stderr, "need -item")
		os.Exit(1)
	}
	b, err := c.baskets.AddItem(c.ctx, *item)
	if err != nil {
		fail(err)
	}
	printBasket(os.Stdout, b)
}

func (c *cli) removeFromBasket(args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	item := fs.Int64("item", 0, "basket item id")
	_ = fs.Parse(args)
	if *item == 0 {
		fmt.Fprintln(os.Stderr, "need -item")
		os.Exit(1)
	}
	b, err := c.baskets.RemoveItem(c.ctx, *item)
	if err != nil {
		fail(err)
	}
	printBasket(os.Stdout, b)
}

func (c *cli) placeOrder() {
	// Refuse to offer placement on a visibly empty basket; the server still
	// has the final word.
	b, err := c.baskets.Current(c.ctx)
	if err != nil {
		fail(err)
	}
	if b.Empty() {
		fail(errs.ErrEmptyBasket)
	}
	ord, err := c.baskets.PlaceOrder(c.ctx)
	if err != nil {
		fail(err)
	}
	fmt.Printf("order #%d placed: %d item(s), total %d\n", ord.ID, ord.ItemCount, ord.TotalPrice)
}

func (c *cli) rate(args []string) {
	fs := flag.NewFlagSet("rate", flag.ExitOnError)
	item := fs.Int64("item", 0, "menu item id")
	value := fs.Int("value", 0, "rating 1..5")
	_ = fs.Parse(args)
	if *item == 0 || *value < 1 || *value > 5 {
		fmt.Fprintln(os.Stderr, "need -item and -value in 1..5")
		os.Exit(1)
	}
	if err := c.api.RateItem(c.ctx, *item, *value); err != nil {
		fail(err)
	}
	fmt.Println("rated")
}

func (c *cli) createRestaurant(args []string) {
	fs := flag.NewFlagSet("create-restaurant", flag.ExitOnError)
	name := fs.String("name", "", "restaurant name")
	_ = fs.Parse(args)
	if *name == "" {
		fmt.Fprintln(os.Stderr, "need -name")
		os.Exit(1)
	}
	r, err := c.api.CreateRestaurant(c.ctx, *name)
	if err != nil {
		fail(err)
	}
	fmt.Printf("created restaurant #%d %s\n", r.ID, r.Name)
}

func (c *cli) addItem(args []string) {
	fs := flag.NewFlagSet("add-item", flag.ExitOnError)
	name := fs.String("name", "", "item name")
	price := fs.Int64("price", 0, "item price")
	desc := fs.String("desc", "", "item description")
	image := fs.String("image", "", "image file")
	restaurant := fs.Int64("restaurant", 0, "restaurant id (defaults to my restaurant)")
	_ = fs.Parse(args)
	if *name == "" || *price <= 0 {
		fmt.Fprintln(os.Stderr, "need -name and -price")
		os.Exit(1)
	}

	up := api.ItemUpload{
		Name:         *name,
		Price:        *price,
		Description:  *desc,
		RestaurantID: *restaurant,
	}
	if *image != "" {
		data, err := os.ReadFile(*image)
		if err != nil {
			fail(err)
		}
		up.ImageName = *image
		up.Image = data
	}
	item, err := c.api.CreateItem(c.ctx, up)
	if err != nil {
		fail(err)
	}
	fmt.Printf("created item #%d %s (%d)\n", item.ID, item.Name, item.Price)
}

func (c *cli) removeItem(args []string) {
	fs := flag.NewFlagSet("rm-item", flag.ExitOnError)
	id := fs.Int64("id", 0, "item id")
	_ = fs.Parse(args)
	if *id == 0 {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}
	if err := c.api.DeleteItem(c.ctx, *id); err != nil {
		fail(err)
	}
	fmt.Println("deleted")
}

func (c *cli) complete(args []string) {
	fs := flag.NewFlagSet("complete", flag.ExitOnError)
	id := fs.Int64("id", 0, "order id")
	_ = fs.Parse(args)
	if *id == 0 {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}
	if err := c.api.CompleteOrder(c.ctx, *id); err != nil {
		fail(err)
	}
	fmt.Println("order completed and dispatched")
}

func fail(err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		fmt.Fprintf(os.Stderr, "api error: status=%d msg=%s\n", apiErr.Status, apiErr.Message)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
