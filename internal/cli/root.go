package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rohmanhakim/a11y-crawler/internal/build"
	"github.com/rohmanhakim/a11y-crawler/internal/config"
	"github.com/rohmanhakim/a11y-crawler/internal/metadata"
	"github.com/rohmanhakim/a11y-crawler/internal/scheduler"
	"github.com/rohmanhakim/a11y-crawler/pkg/hashutil"
	"github.com/rohmanhakim/a11y-crawler/pkg/urlutil"
	"github.com/spf13/cobra"
)

var (
	cfgFile            string
	scopePrefix        string
	normalizePolicy    string
	respectRobots      bool
	maxPages           int
	baseDelay          time.Duration
	jitter             time.Duration
	randomSeed         int64
	maxAttempt         int
	timeout            time.Duration
	navigationTimeout  time.Duration
	userAgent          string
	username           string
	password           string
	proxy              string
	insecureSkipVerify bool
	ruleTags           []string
	axeSource          string
	chromePath         string
	headful            bool
	outputDir          string
	reportFile         string
	perPageResults     bool
	hashAlgo           string
	xlsxReport         string
	mongoURI           string
	mongoDatabase      string
	mongoCollection    string
	logLevel           string
	logFormat          string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "a11y-crawler [base-url]",
	Short: "Crawl a website and audit every page for accessibility.",
	Long: `a11y-crawler starts at a base URL, follows every link that stays under
the scope prefix, and runs axe-core against each page in a real browser.

Results are written as one JSON report with per-page violations, passes and
crawl-wide statistics. Spreadsheet and MongoDB exports are optional.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := InitConfigWithError(args)
		if err != nil {
			return err
		}

		logger, err := metadata.NewLogger(os.Stderr, cfg.LogLevel(), cfg.LogFormat())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := scheduler.NewScheduler(ctx, cfg, logger, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		_, err = s.ExecuteCrawling(ctx)
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = build.FullVersion()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file path, JSON or YAML (e.g., ./a11y.yaml)")
	flags.StringVar(&scopePrefix, "scope-prefix", "", "only URLs starting with this prefix are crawled (defaults to the base URL)")
	flags.StringVar(&normalizePolicy, "normalize-policy", "", "URL identity policy: exact or strip-fragment")
	flags.BoolVar(&respectRobots, "respect-robots", false, "skip URLs disallowed by robots.txt")
	flags.IntVar(&maxPages, "max-pages", 0, "maximum number of pages to audit (0 for unlimited)")
	flags.DurationVar(&baseDelay, "base-delay", 0, "delay between page visits on the same host")
	flags.DurationVar(&jitter, "jitter", 0, "random jitter added to base delay")
	flags.Int64Var(&randomSeed, "random-seed", 0, "seed for jitter (0 for current time)")
	flags.IntVar(&maxAttempt, "max-attempt", 0, "attempts per link-discovery fetch")
	flags.DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	flags.DurationVar(&navigationTimeout, "navigation-timeout", 0, "timeout for loading and auditing one page in the browser")
	flags.StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests and the browser")
	flags.StringVar(&username, "username", "", "basic auth username")
	flags.StringVar(&password, "password", "", "basic auth password")
	flags.StringVar(&proxy, "proxy", "", "HTTP(S) proxy URL")
	flags.BoolVar(&insecureSkipVerify, "insecure-skip-verify", false, "do not verify TLS certificates")
	flags.StringArrayVar(&ruleTags, "rule-tag", []string{}, "axe rule tag to run (can be repeated, defaults to wcag2a, wcag2aa, bitv)")
	flags.StringVar(&axeSource, "axe-source", "", "axe-core script as a file path or URL")
	flags.StringVar(&chromePath, "chrome-path", "", "browser executable (searched for when empty)")
	flags.BoolVar(&headful, "headful", false, "show the browser window")
	flags.StringVar(&outputDir, "output-dir", "", "directory for results (default accessibility-results)")
	flags.StringVar(&reportFile, "report-file", "", "file name of the JSON report (default accessibility-results.json)")
	flags.BoolVar(&perPageResults, "per-page-results", false, "also write one JSON file per page")
	flags.StringVar(&hashAlgo, "hash-algo", "", "hash for per-page file names: blake3 or sha256")
	flags.StringVar(&xlsxReport, "xlsx-report", "", "also write a spreadsheet with this file name")
	flags.StringVar(&mongoURI, "mongo-uri", "", "also store the report in MongoDB")
	flags.StringVar(&mongoDatabase, "mongo-database", "", "MongoDB database (default a11y)")
	flags.StringVar(&mongoCollection, "mongo-collection", "", "MongoDB collection (default reports)")
	flags.StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	flags.StringVar(&logFormat, "log-format", "", "log format: text or json")
}

// InitConfigWithError builds the crawl config. A config file, when given,
// is used as is; otherwise the base URL comes from args and flags override
// the defaults.
func InitConfigWithError(args []string) (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	if len(args) == 0 {
		return config.Config{}, fmt.Errorf("%w: a base URL argument or --config is required", config.ErrInvalidConfig)
	}
	baseURL, err := url.Parse(args[0])
	if err != nil {
		return config.Config{}, fmt.Errorf("%w: error parsing base URL %s: %v", config.ErrInvalidConfig, args[0], err)
	}

	configBuilder := config.WithDefault(*baseURL)

	if scopePrefix != "" {
		configBuilder = configBuilder.WithScopePrefix(scopePrefix)
	}

	if normalizePolicy != "" {
		policy, err := urlutil.ParsePolicy(normalizePolicy)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
		}
		configBuilder = configBuilder.WithNormalizePolicy(policy)
	}

	if respectRobots {
		configBuilder = configBuilder.WithRespectRobots(respectRobots)
	}

	if maxPages > 0 {
		configBuilder = configBuilder.WithMaxPages(maxPages)
	}

	if baseDelay > 0 {
		configBuilder = configBuilder.WithBaseDelay(baseDelay)
	}

	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}

	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}

	if maxAttempt > 0 {
		configBuilder = configBuilder.WithMaxAttempt(maxAttempt)
	}

	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}

	if navigationTimeout > 0 {
		configBuilder = configBuilder.WithNavigationTimeout(navigationTimeout)
	}

	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}

	if username != "" || password != "" {
		configBuilder = configBuilder.WithBasicAuth(username, password)
	}

	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return config.Config{}, fmt.Errorf("%w: error parsing proxy URL: %v", config.ErrInvalidConfig, err)
		}
		configBuilder = configBuilder.WithProxyURL(proxyURL)
	}

	if insecureSkipVerify {
		configBuilder = configBuilder.WithInsecureSkipVerify(insecureSkipVerify)
	}

	if len(ruleTags) > 0 {
		configBuilder = configBuilder.WithRuleTags(ruleTags)
	}

	if axeSource != "" {
		configBuilder = configBuilder.WithAxeSource(axeSource)
	}

	if chromePath != "" {
		configBuilder = configBuilder.WithChromePath(chromePath)
	}

	if headful {
		configBuilder = configBuilder.WithHeadless(false)
	}

	if outputDir != "" {
		configBuilder = configBuilder.WithOutputDir(outputDir)
	}

	if reportFile != "" {
		configBuilder = configBuilder.WithReportFileName(reportFile)
	}

	if perPageResults {
		configBuilder = configBuilder.WithPerPageResults(perPageResults)
	}

	if hashAlgo != "" {
		configBuilder = configBuilder.WithHashAlgo(hashutil.HashAlgo(hashAlgo))
	}

	if xlsxReport != "" {
		configBuilder = configBuilder.WithXLSXReport(xlsxReport)
	}

	if mongoURI != "" {
		configBuilder = configBuilder.WithMongo(mongoURI, mongoDatabase, mongoCollection)
	}

	if logLevel != "" {
		configBuilder = configBuilder.WithLogLevel(logLevel)
	}

	if logFormat != "" {
		configBuilder = configBuilder.WithLogFormat(logFormat)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func ResetFlags() {
	cfgFile = ""
	scopePrefix = ""
	normalizePolicy = ""
	respectRobots = false
	maxPages = 0
	baseDelay = 0
	jitter = 0
	randomSeed = 0
	maxAttempt = 0
	timeout = 0
	navigationTimeout = 0
	userAgent = ""
	username = ""
	password = ""
	proxy = ""
	insecureSkipVerify = false
	ruleTags = []string{}
	axeSource = ""
	chromePath = ""
	headful = false
	outputDir = ""
	reportFile = ""
	perPageResults = false
	hashAlgo = ""
	xlsxReport = ""
	mongoURI = ""
	mongoDatabase = ""
	mongoCollection = ""
	logLevel = ""
	logFormat = ""
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetScopePrefixForTest(prefix string) {
	scopePrefix = prefix
}

func SetNormalizePolicyForTest(policy string) {
	normalizePolicy = policy
}

func SetMaxPagesForTest(pages int) {
	maxPages = pages
}

func SetBasicAuthForTest(user, pass string) {
	username = user
	password = pass
}

func SetProxyForTest(p string) {
	proxy = p
}

func SetRuleTagsForTest(tags []string) {
	ruleTags = tags
}

func SetHeadfulForTest(h bool) {
	headful = h
}

func SetOutputDirForTest(dir string) {
	outputDir = dir
}

func SetHashAlgoForTest(algo string) {
	hashAlgo = algo
}

func SetMongoForTest(uri, database, collection string) {
	mongoURI = uri
	mongoDatabase = database
	mongoCollection = collection
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetBaseDelayForTest(delay time.Duration) {
	baseDelay = delay
}
