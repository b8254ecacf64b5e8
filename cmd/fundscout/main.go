package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/phuslu/log"

	"fundscout/pkg/core/adv"
	"fundscout/pkg/core/cache"
	"fundscout/pkg/core/config"
	"fundscout/pkg/core/directory"
	"fundscout/pkg/core/edgar"
	"fundscout/pkg/core/feeds"
	"fundscout/pkg/core/metrics"
	"fundscout/pkg/core/s1"
	"fundscout/pkg/core/store"
)

const usage = `fundscout - VC fund intelligence from SEC filings

Usage:
  fundscout search <firm name>    find VC firms (curated list + EDGAR)
  fundscout profile <cik>         full firm profile: filings, metrics, ADV
  fundscout exits <firm name>     S-1 portfolio company mentions
  fundscout news <query>          recent venture press mentions
`

// app bundles the wired components so subcommands share one client, one
// cache, and one rate limiter.
type app struct {
	cfg    *config.Config
	client *edgar.Client
	cache  *cache.Store
	repo   *store.ProfileRepo
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg(".env file not found, assuming environment variables are set")
	}

	if len(os.Args) < 3 {
		fmt.Print(usage)
		os.Exit(1)
	}
	command := os.Args[1]
	arg := strings.Join(os.Args[2:], " ")

	cfg, err := config.Load(os.Getenv("FUNDSCOUT_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	a := &app{
		cfg: cfg,
		client: edgar.NewClient(
			edgar.WithUserAgent(cfg.UserAgent),
			edgar.WithRateLimit(cfg.RateLimit),
			edgar.WithMinYear(cfg.MinYear),
			edgar.WithFundVocabulary(cfg.FundTerms),
		),
		cache: cache.New(cache.TTLs{
			cache.RegionFirms:   cfg.FirmCacheTTL,
			cache.RegionFilings: cfg.FilingCacheTTL,
			cache.RegionADV:     cfg.FirmCacheTTL,
			cache.RegionRSS:     cfg.RSSCacheTTL,
			cache.RegionS1:      cfg.FirmCacheTTL,
		}),
	}
	defer a.cache.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if cfg.DatabaseURL != "" {
		repo, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("database unavailable, profiles will not be persisted")
		} else {
			defer repo.Close()
			if err := repo.Init(ctx); err != nil {
				log.Warn().Err(err).Msg("profile table init failed")
			} else {
				a.repo = repo
			}
		}
	}

	switch command {
	case "search":
		err = a.runSearch(ctx, arg)
	case "profile":
		err = a.runProfile(ctx, arg)
	case "exits":
		err = a.runExits(ctx, arg)
	case "news":
		err = a.runNews(ctx, arg)
	default:
		fmt.Print(usage)
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("command failed")
	}
}

func (a *app) runSearch(ctx context.Context, query string) error {
	fmt.Printf("🔍 Searching for %q...\n\n", query)

	curated := directory.Search(query, 5)
	if len(curated) > 0 {
		fmt.Println("Curated matches:")
		for _, firm := range curated {
			fmt.Printf("  %-35s CIK %-10s %s\n", firm.Name, firm.CIK, firm.Location)
		}
		fmt.Println()
	}

	results, err := cache.Do(a.cache, cache.RegionFirms, cache.Key("search", query),
		func() ([]edgar.FirmResult, error) {
			return a.client.SearchFirms(ctx, query, 10)
		})
	if err != nil {
		return fmt.Errorf("firm search: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No EDGAR filers with recent Form D activity matched.")
		return nil
	}
	fmt.Println("EDGAR filers with recent Form D activity:")
	for _, r := range results {
		fmt.Printf("  %-35s CIK %-10s %2d filings, latest %s\n",
			r.Name, r.CIK, r.FilingCount, r.RecentFiling)
	}
	return nil
}

// firmProfile is the assembled output of the profile command, and the
// payload persisted when a database is configured.
type firmProfile struct {
	CIK     string                `json:"cik"`
	Name    string                `json:"name"`
	Curated *directory.Firm       `json:"curated,omitempty"`
	Metrics metrics.FirmMetrics   `json:"metrics"`
	Filings []*edgar.FilingRecord `json:"filings"`
	FormADV *adv.Info             `json:"form_adv,omitempty"`
	BuiltAt time.Time             `json:"built_at"`
}

func (a *app) runProfile(ctx context.Context, cik string) error {
	fmt.Printf("📊 Building profile for CIK %s...\n\n", cik)

	filings, err := cache.Do(a.cache, cache.RegionFilings, cache.Key("filings", cik),
		func() ([]*edgar.FilingRecord, error) {
			return a.client.FilingsForCIK(ctx, cik), nil
		})
	if err != nil {
		return err
	}

	profile := firmProfile{
		CIK:     strings.TrimLeft(cik, "0"),
		Metrics: metrics.Derive(filings),
		Filings: filings,
		BuiltAt: time.Now().UTC(),
	}
	if len(filings) > 0 {
		profile.Name = filings[0].IssuerName
	}
	if firm, ok := directory.ByCIK(cik); ok {
		profile.Curated = &firm
		if profile.Name == "" {
			profile.Name = firm.Name
		}
	}

	if profile.Name != "" {
		advClient := adv.NewClient(a.cfg.UserAgent)
		info, err := cache.Do(a.cache, cache.RegionADV, cache.Key("adv", profile.Name),
			func() (*adv.Info, error) {
				return advClient.ForFirm(ctx, profile.Name), nil
			})
		if err == nil {
			profile.FormADV = info
		}
	}

	out, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	fmt.Println(string(out))

	if a.repo != nil && profile.Name != "" {
		if err := a.repo.SaveProfile(ctx, profile.CIK, profile.Name, profile); err != nil {
			log.Warn().Err(err).Msg("profile persist failed")
		} else {
			fmt.Println("\n💾 Profile saved.")
		}
	}
	return nil
}

func (a *app) runExits(ctx context.Context, firmName string) error {
	fmt.Printf("🚪 Mining S-1 filings for %q...\n\n", firmName)

	miner := s1.NewMiner(a.client, s1.WithExcludedSectors(a.cfg.ExcludedSectors))
	hits, err := cache.Do(a.cache, cache.RegionS1, cache.Key("exits", firmName),
		func() ([]s1.Hit, error) {
			return miner.SearchMentions(ctx, firmName, 8), nil
		})
	if err != nil {
		return err
	}

	if len(hits) == 0 {
		fmt.Println("No S-1 mentions found.")
		return nil
	}
	for _, hit := range hits {
		fmt.Printf("  %-40s %s  %s\n", hit.CompanyName, hit.FormType, hit.FilingDate)
		mentions := miner.ExtractOwnershipMentions(ctx, hit.URL, firmName)
		for _, m := range mentions {
			fmt.Printf("      • %s\n", m)
		}
	}
	return nil
}

func (a *app) runNews(ctx context.Context, query string) error {
	fmt.Printf("📰 Searching venture press for %q...\n\n", query)

	agg := feeds.NewAggregator(a.cfg.FeedURLs(), a.cfg.UserAgent)
	releases, err := cache.Do(a.cache, cache.RegionRSS, cache.Key("news", query),
		func() ([]feeds.PressRelease, error) {
			return agg.SearchReleases(ctx, query, 15), nil
		})
	if err != nil {
		return err
	}

	if len(releases) == 0 {
		fmt.Println("No recent mentions.")
		return nil
	}
	for _, r := range releases {
		fmt.Printf("  [%s] %s\n      %s\n", r.PublishedAt.Format("2006-01-02"), r.Title, r.URL)
	}
	return nil
}
