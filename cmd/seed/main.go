package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlexFame/bazaar-sub001/internal/auth"
	"github.com/AlexFame/bazaar-sub001/internal/config"
	"github.com/AlexFame/bazaar-sub001/internal/db"
	"github.com/AlexFame/bazaar-sub001/internal/model"
	"github.com/AlexFame/bazaar-sub001/internal/repository"
	"github.com/AlexFame/bazaar-sub001/internal/service"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type seedListing struct {
	Title       string
	Description string
	Price       decimal.Decimal
}

type seedAccount struct {
	ExternalID int64
	FirstName  string
	Username   string
}

var demoAccounts = []seedAccount{
	{ExternalID: 1000001, FirstName: "Alice", Username: "alice_sells"},
	{ExternalID: 1000002, FirstName: "Bob", Username: "bob_buys"},
	{ExternalID: 1000003, FirstName: "Carol", Username: "carol"},
}

func main() {
	printFor := flag.Int64("print-init-data", 0, "print a signed init payload for this demo external id and exit")
	flag.Parse()

	if err := run(*printFor); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run(printFor int64) error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if printFor != 0 {
		return printInitData(cfg, printFor)
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()

	gdb, err := db.Connect(cfg, zlog)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	accountRepo := repository.NewAccountRepository(gdb)
	if err := promoteAdmins(ctx, accountRepo, cfg.AdminExternalIDs); err != nil {
		return err
	}

	canSeed, err := shouldSeed(ctx, gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("listings already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	resolver := service.NewIdentityResolver(accountRepo, zlog)
	listings := service.NewListingService(repository.NewListingRepository(gdb), zlog)

	owners := make([]*model.Account, 0, len(demoAccounts))
	for _, a := range demoAccounts {
		acc, err := resolver.Resolve(ctx, &auth.ExternalIdentity{ID: a.ExternalID, FirstName: a.FirstName, Username: a.Username})
		if err != nil {
			return fmt.Errorf("resolve demo account %d: %w", a.ExternalID, err)
		}
		owners = append(owners, acc)
	}

	items := buildSeedListings()
	for idx, it := range items {
		owner := owners[idx%len(owners)]
		if _, err := listings.Create(ctx, owner, service.ListingInput{
			Title:       it.Title,
			Description: it.Description,
			Price:       it.Price,
		}); err != nil {
			return fmt.Errorf("create listing %q: %w", it.Title, err)
		}
	}

	log.Printf("seeded %d accounts and %d listings", len(owners), len(items))
	return nil
}

func buildSeedListings() []seedListing {
	type cat struct {
		Name   string
		Titles []string
		Price  int64
	}
	categories := []cat{
		{Name: "electronics", Price: 240, Titles: []string{"14-inch laptop", "Wireless mechanical keyboard", "Noise cancelling headphones"}},
		{Name: "home", Price: 60, Titles: []string{"Oak side table", "Cotton rug 140x200", "LED desk lamp"}},
		{Name: "sports", Price: 45, Titles: []string{"Running shoes", "Yoga mat", "Steel water bottle"}},
		{Name: "books", Price: 12, Titles: []string{"Sci-fi anthology", "Travel magazine bundle", "Comics box set"}},
	}

	var items []seedListing
	for _, c := range categories {
		for i, t := range c.Titles {
			price := decimal.NewFromInt(c.Price + int64((i+1)*5)).Add(decimal.RequireFromString("0.99"))
			items = append(items, seedListing{
				Title:       t,
				Description: fmt.Sprintf("%s (%s). Lightly used, pickup or shipping.", t, c.Name),
				Price:       price,
			})
		}
	}
	return items
}

func promoteAdmins(ctx context.Context, repo repository.AccountRepository, externalIDs []int64) error {
	for _, ext := range externalIDs {
		acc, err := repo.FindByExternalID(ctx, ext)
		if err != nil {
			log.Printf("admin %d has not signed in yet; skipping", ext)
			continue
		}
		if err := repo.SetAdmin(ctx, acc.ID, true); err != nil {
			return fmt.Errorf("promote admin %d: %w", ext, err)
		}
		log.Printf("account %d (external %d) is now an admin", acc.ID, ext)
	}
	return nil
}

func shouldSeed(ctx context.Context, gdb *gorm.DB) (bool, error) {
	var cnt int64
	if err := gdb.WithContext(ctx).Model(&model.Listing{}).Count(&cnt).Error; err != nil {
		return false, fmt.Errorf("count listings: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	force := os.Getenv("FORCE_SEED")
	return strings.EqualFold(force, "true"), nil
}

// printInitData emits a payload the API accepts for local testing with curl.
func printInitData(cfg *config.Config, externalID int64) error {
	if cfg.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required to sign init data")
	}
	name := "Dev"
	for _, a := range demoAccounts {
		if a.ExternalID == externalID {
			name = a.FirstName
		}
	}
	values := auth.Sign(url.Values{
		"user":      {fmt.Sprintf(`{"id":%d,"first_name":%q}`, externalID, name)},
		"auth_date": {strconv.FormatInt(time.Now().Unix(), 10)},
	}, cfg.BotToken)
	fmt.Printf("Authorization: tma %s\n", values.Encode())
	return nil
}
