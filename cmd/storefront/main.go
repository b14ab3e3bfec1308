// Command storefront is a small interactive host for the headless
// presentation layer. It drives one wishlist session against a running
// catalog API, persisting session state in Redis between runs.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/instruktori/tutorialstore/internal/storefront"
	"github.com/instruktori/tutorialstore/internal/wishlist"
	pkgconfig "github.com/instruktori/tutorialstore/pkg/config"
	"github.com/instruktori/tutorialstore/pkg/database"
	"github.com/instruktori/tutorialstore/pkg/httpclient"
	"github.com/instruktori/tutorialstore/pkg/logger"
)

type storefrontConfig struct {
	LogLevel       string `env:"LOG_LEVEL" envDefault:"warn"`
	CatalogBaseURL string `env:"CATALOG_BASE_URL" envDefault:"http://localhost:8080"`
	SessionID      string `env:"SESSION_ID"`

	RedisHost string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	WishlistTTLDays int `env:"WISHLIST_TTL_DAYS" envDefault:"30"`
}

func main() {
	cfg := &storefrontConfig{}
	if err := pkgconfig.Load(cfg); err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.SessionID == "" {
		cfg.SessionID = uuid.New().String()
	}

	log := logger.New("storefront", cfg.LogLevel)

	ctx := context.Background()
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Error("failed to connect to redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer rdb.Close()

	ttl := time.Duration(cfg.WishlistTTLDays) * 24 * time.Hour
	storage := wishlist.NewStorage(rdb, ttl, log)

	session, err := wishlist.NewSession(ctx, cfg.SessionID, storage, log)
	if err != nil {
		log.Error("failed to hydrate session", slog.String("error", err.Error()))
		os.Exit(1)
	}

	client := httpclient.NewBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultBreakerConfig("catalog"),
		log,
	)
	catalog := storefront.NewCatalogClient(client, cfg.CatalogBaseURL)
	front := storefront.New(catalog, session, log)

	fmt.Printf("session %s (set SESSION_ID to resume)\n", cfg.SessionID)
	fmt.Println("commands: home, search <text>, show, add <id> [qty], qty <id> <n>, rm <id>, checkout, signout, quit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "home":
			front.LoadHome(ctx)
			printView(front.View())

		case "search":
			if len(fields) < 2 {
				fmt.Println("usage: search <text>")
				continue
			}
			result, err := catalog.Search(ctx, storefront.SearchParams{Query: strings.Join(fields[1:], " ")})
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("%d matches (page %d of %d)\n", result.CountTutorials, result.Page, result.Pages)
			for _, t := range result.Tutorials {
				fmt.Printf("  %s  %-30s $%.2f  stock %d\n", t.ID, t.Name, t.Price, t.CountInStock)
			}

		case "show":
			printWishlist(session.State().Wishlist)

		case "add":
			if len(fields) < 2 {
				fmt.Println("usage: add <id> [qty]")
				continue
			}
			qty := 1
			if len(fields) > 2 {
				if n, err := strconv.Atoi(fields[2]); err == nil {
					qty = n
				}
			}
			tutorial, err := catalog.GetTutorial(ctx, fields[1])
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if err := front.AddToWishlist(ctx, tutorial, qty); err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("added %s x%d\n", tutorial.Name, qty)

		case "qty":
			if len(fields) < 3 {
				fmt.Println("usage: qty <id> <n>")
				continue
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				fmt.Println("usage: qty <id> <n>")
				continue
			}
			item, ok := findItem(session.State().Wishlist.Items, fields[1])
			if !ok {
				fmt.Println("not in wishlist")
				continue
			}
			if err := front.UpdateQuantity(ctx, item, n); err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("%s quantity set to %d\n", item.Name, n)

		case "rm":
			if len(fields) < 2 {
				fmt.Println("usage: rm <id>")
				continue
			}
			item, ok := findItem(session.State().Wishlist.Items, fields[1])
			if !ok {
				fmt.Println("not in wishlist")
				continue
			}
			if err := front.RemoveFromWishlist(ctx, item); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("removed %s\n", item.Name)

		case "checkout":
			fmt.Println("navigate:", front.CheckoutIntent())

		case "signout":
			if _, err := session.Dispatch(ctx, wishlist.SignOut{}); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println("signed out, wishlist cleared")

		case "quit", "exit":
			return

		default:
			fmt.Println("unknown command:", fields[0])
		}
	}
}

func findItem(items []wishlist.Item, id string) (wishlist.Item, bool) {
	for _, item := range items {
		if item.TutorialID == id {
			return item, true
		}
	}
	return wishlist.Item{}, false
}

func printView(view storefront.ViewState) {
	if view.Error != "" {
		fmt.Println("error:", view.Error)
		return
	}
	for _, t := range view.Tutorials {
		fmt.Printf("  %s  %-30s $%.2f  rating %.1f (%d)\n", t.ID, t.Name, t.Price, t.Rating, t.NumberReviews)
	}
}

func printWishlist(w wishlist.Wishlist) {
	if len(w.Items) == 0 {
		fmt.Println("wishlist is empty")
		return
	}
	for _, item := range w.Items {
		fmt.Printf("  %s  %-30s $%.2f x%d\n", item.TutorialID, item.Name, item.Price, item.Quantity)
	}
	count, total := w.Subtotal()
	fmt.Printf("subtotal (%d items): $%.2f\n", count, total)
}
