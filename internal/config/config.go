package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rohmanhakim/a11y-crawler/pkg/hashutil"
	"github.com/rohmanhakim/a11y-crawler/pkg/urlutil"
	"gopkg.in/yaml.v3"
)

// DefaultAxeSource is the axe-core build injected when no local copy is configured.
const DefaultAxeSource = "https://cdnjs.cloudflare.com/ajax/libs/axe-core/4.10.2/axe.min.js"

type Config struct {
	//===============
	//  Crawl scope
	//===============
	// Page the crawl starts from.
	baseURL url.URL
	// Every admitted URL must start with this string. Defaults to the base URL.
	scopePrefix string
	// Which spellings of a URL count as the same page
	normalizePolicy urlutil.NormalizePolicy
	// Whether robots.txt disallow rules are honored
	respectRobots bool

	//===============
	// Limits
	//===============
	// Maximum number of pages admitted to the frontier. 0 means unlimited
	maxPages int

	//===============
	// Politeness
	//===============
	// Minimum, fixed waiting time enforced between two requests to the same host.
	baseDelay time.Duration
	// Randomized variation added on top of the base delay.
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64
	// maximum attempt during retry
	maxAttempt int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Fetch
	//===============
	// Maximum time of a single fetch request
	timeout time.Duration
	// User agent used by both the fetcher and the browser
	userAgent string
	// HTTP Basic credentials. Auth is enabled iff username is non-empty
	username string
	password string
	// Optional HTTP(S) proxy for fetcher and browser
	proxyURL *url.URL
	// Disables TLS certificate verification, for staging hosts only
	insecureSkipVerify bool

	//===============
	// Audit
	//===============
	// axe-core rule tags to run
	ruleTags []string
	// axe-core source, a local file path or an http(s) URL
	axeSource string
	// Upper bound on navigation plus evaluation of one page
	navigationTimeout time.Duration
	// Browser executable. Empty lets chromedp find one
	chromePath string
	headless   bool

	//===============
	// Output
	//===============
	// Directory receiving the report and per-page files
	outputDir string
	// File name of the aggregate JSON report inside outputDir
	reportFileName string
	// Whether one JSON file per page is written under outputDir/pages
	perPageResults bool
	// Algorithm naming per-page files
	hashAlgo hashutil.HashAlgo
	// Spreadsheet file name inside outputDir. Empty disables the export
	xlsxReport string
	// MongoDB export. Empty URI disables the export
	mongoURI        string
	mongoDatabase   string
	mongoCollection string

	//===============
	// Logging
	//===============
	logLevel  string
	logFormat string
}

type configDTO struct {
	BaseURL                string    `json:"baseUrl" yaml:"baseUrl"`
	ScopePrefix            string    `json:"scopePrefix,omitempty" yaml:"scopePrefix,omitempty"`
	NormalizePolicy        string    `json:"normalizePolicy,omitempty" yaml:"normalizePolicy,omitempty"`
	RespectRobots          bool      `json:"respectRobots,omitempty" yaml:"respectRobots,omitempty"`
	MaxPages               int       `json:"maxPages,omitempty" yaml:"maxPages,omitempty"`
	BaseDelay              Duration  `json:"baseDelay,omitempty" yaml:"baseDelay,omitempty"`
	Jitter                 Duration  `json:"jitter,omitempty" yaml:"jitter,omitempty"`
	RandomSeed             int64     `json:"randomSeed,omitempty" yaml:"randomSeed,omitempty"`
	MaxAttempt             int       `json:"maxAttempt,omitempty" yaml:"maxAttempt,omitempty"`
	BackoffInitialDuration Duration  `json:"backoffInitialDuration,omitempty" yaml:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64   `json:"backoffMultiplier,omitempty" yaml:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     Duration  `json:"backoffMaxDuration,omitempty" yaml:"backoffMaxDuration,omitempty"`
	Timeout                Duration  `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	UserAgent              string    `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	Auth                   *authDTO  `json:"auth,omitempty" yaml:"auth,omitempty"`
	ProxyURL               string    `json:"proxyUrl,omitempty" yaml:"proxyUrl,omitempty"`
	InsecureSkipVerify     bool      `json:"insecureSkipVerify,omitempty" yaml:"insecureSkipVerify,omitempty"`
	RuleTags               []string  `json:"ruleTags,omitempty" yaml:"ruleTags,omitempty"`
	AxeSource              string    `json:"axeSource,omitempty" yaml:"axeSource,omitempty"`
	NavigationTimeout      Duration  `json:"navigationTimeout,omitempty" yaml:"navigationTimeout,omitempty"`
	ChromePath             string    `json:"chromePath,omitempty" yaml:"chromePath,omitempty"`
	Headless               *bool     `json:"headless,omitempty" yaml:"headless,omitempty"`
	OutputDir              string    `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`
	ReportFileName         string    `json:"reportFileName,omitempty" yaml:"reportFileName,omitempty"`
	PerPageResults         bool      `json:"perPageResults,omitempty" yaml:"perPageResults,omitempty"`
	HashAlgo               string    `json:"hashAlgo,omitempty" yaml:"hashAlgo,omitempty"`
	XLSXReport             string    `json:"xlsxReport,omitempty" yaml:"xlsxReport,omitempty"`
	Mongo                  *mongoDTO `json:"mongo,omitempty" yaml:"mongo,omitempty"`
	LogLevel               string    `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	LogFormat              string    `json:"logFormat,omitempty" yaml:"logFormat,omitempty"`
}

type authDTO struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

type mongoDTO struct {
	URI        string `json:"uri" yaml:"uri"`
	Database   string `json:"database,omitempty" yaml:"database,omitempty"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	if dto.BaseURL == "" {
		return Config{}, fmt.Errorf("%w: baseUrl cannot be empty", ErrInvalidConfig)
	}
	baseURL, err := url.Parse(dto.BaseURL)
	if err != nil {
		return Config{}, fmt.Errorf("%w: baseUrl: %s", ErrInvalidConfig, err.Error())
	}

	builder := WithDefault(*baseURL)

	// Only override if non-zero value is provided
	if dto.ScopePrefix != "" {
		builder.WithScopePrefix(dto.ScopePrefix)
	}
	if dto.NormalizePolicy != "" {
		policy, err := urlutil.ParsePolicy(dto.NormalizePolicy)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
		}
		builder.WithNormalizePolicy(policy)
	}
	builder.WithRespectRobots(dto.RespectRobots)
	if dto.MaxPages != 0 {
		builder.WithMaxPages(dto.MaxPages)
	}
	if dto.BaseDelay != 0 {
		builder.WithBaseDelay(time.Duration(dto.BaseDelay))
	}
	if dto.Jitter != 0 {
		builder.WithJitter(time.Duration(dto.Jitter))
	}
	if dto.RandomSeed != 0 {
		builder.WithRandomSeed(dto.RandomSeed)
	}
	if dto.MaxAttempt != 0 {
		builder.WithMaxAttempt(dto.MaxAttempt)
	}
	if dto.BackoffInitialDuration != 0 {
		builder.WithBackoffInitialDuration(time.Duration(dto.BackoffInitialDuration))
	}
	if dto.BackoffMultiplier != 0 {
		builder.WithBackoffMultiplier(dto.BackoffMultiplier)
	}
	if dto.BackoffMaxDuration != 0 {
		builder.WithBackoffMaxDuration(time.Duration(dto.BackoffMaxDuration))
	}
	if dto.Timeout != 0 {
		builder.WithTimeout(time.Duration(dto.Timeout))
	}
	if dto.UserAgent != "" {
		builder.WithUserAgent(dto.UserAgent)
	}
	if dto.Auth != nil {
		builder.WithBasicAuth(dto.Auth.Username, dto.Auth.Password)
	}
	if dto.ProxyURL != "" {
		proxyURL, err := url.Parse(dto.ProxyURL)
		if err != nil {
			return Config{}, fmt.Errorf("%w: proxyUrl: %s", ErrInvalidConfig, err.Error())
		}
		builder.WithProxyURL(proxyURL)
	}
	builder.WithInsecureSkipVerify(dto.InsecureSkipVerify)
	if len(dto.RuleTags) > 0 {
		builder.WithRuleTags(dto.RuleTags)
	}
	if dto.AxeSource != "" {
		builder.WithAxeSource(dto.AxeSource)
	}
	if dto.NavigationTimeout != 0 {
		builder.WithNavigationTimeout(time.Duration(dto.NavigationTimeout))
	}
	if dto.ChromePath != "" {
		builder.WithChromePath(dto.ChromePath)
	}
	// Headless defaults to true, so only an explicit value overrides it
	if dto.Headless != nil {
		builder.WithHeadless(*dto.Headless)
	}
	if dto.OutputDir != "" {
		builder.WithOutputDir(dto.OutputDir)
	}
	if dto.ReportFileName != "" {
		builder.WithReportFileName(dto.ReportFileName)
	}
	builder.WithPerPageResults(dto.PerPageResults)
	if dto.HashAlgo != "" {
		builder.WithHashAlgo(hashutil.HashAlgo(dto.HashAlgo))
	}
	if dto.XLSXReport != "" {
		builder.WithXLSXReport(dto.XLSXReport)
	}
	if dto.Mongo != nil {
		builder.WithMongo(dto.Mongo.URI, dto.Mongo.Database, dto.Mongo.Collection)
	}
	if dto.LogLevel != "" {
		builder.WithLogLevel(dto.LogLevel)
	}
	if dto.LogFormat != "" {
		builder.WithLogFormat(dto.LogFormat)
	}

	return builder.Build()
}

// WithConfigFile loads a JSON config file, or a YAML one when the
// extension is .yaml or .yml.
func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(configContent, &cfgDTO)
	default:
		err = json.Unmarshal(configContent, &cfgDTO)
	}
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config with the provided base URL and default values for all other fields.
// baseURL is mandatory and must be absolute - Build returns an error otherwise.
func WithDefault(baseURL url.URL) *Config {
	defaultConfig := Config{
		baseURL:                baseURL,
		normalizePolicy:        urlutil.PolicyExact,
		respectRobots:          false,
		maxPages:               0,
		baseDelay:              0,
		jitter:                 0,
		randomSeed:             time.Now().UnixNano(),
		maxAttempt:             3,
		backoffInitialDuration: 500 * time.Millisecond,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     10 * time.Second,
		timeout:                10 * time.Second,
		userAgent:              "a11y-crawler/1.0",
		ruleTags:               []string{"wcag2a", "wcag2aa", "bitv"},
		axeSource:              DefaultAxeSource,
		navigationTimeout:      60 * time.Second,
		headless:               true,
		outputDir:              "accessibility-results",
		reportFileName:         "accessibility-results.json",
		perPageResults:         false,
		hashAlgo:               hashutil.HashAlgoBLAKE3,
		mongoDatabase:          "a11y",
		mongoCollection:        "reports",
		logLevel:               "info",
		logFormat:              "text",
	}
	return &defaultConfig
}

func (c *Config) WithBaseURL(baseURL url.URL) *Config {
	c.baseURL = baseURL
	return c
}

func (c *Config) WithScopePrefix(prefix string) *Config {
	c.scopePrefix = prefix
	return c
}

func (c *Config) WithNormalizePolicy(policy urlutil.NormalizePolicy) *Config {
	c.normalizePolicy = policy
	return c
}

func (c *Config) WithRespectRobots(respect bool) *Config {
	c.respectRobots = respect
	return c
}

func (c *Config) WithMaxPages(pages int) *Config {
	c.maxPages = pages
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithMaxAttempt(attempts int) *Config {
	c.maxAttempt = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithBasicAuth(username, password string) *Config {
	c.username = username
	c.password = password
	return c
}

func (c *Config) WithProxyURL(proxyURL *url.URL) *Config {
	c.proxyURL = proxyURL
	return c
}

func (c *Config) WithInsecureSkipVerify(skip bool) *Config {
	c.insecureSkipVerify = skip
	return c
}

func (c *Config) WithRuleTags(tags []string) *Config {
	c.ruleTags = tags
	return c
}

func (c *Config) WithAxeSource(source string) *Config {
	c.axeSource = source
	return c
}

func (c *Config) WithNavigationTimeout(timeout time.Duration) *Config {
	c.navigationTimeout = timeout
	return c
}

func (c *Config) WithChromePath(path string) *Config {
	c.chromePath = path
	return c
}

func (c *Config) WithHeadless(headless bool) *Config {
	c.headless = headless
	return c
}

func (c *Config) WithOutputDir(outputDir string) *Config {
	c.outputDir = outputDir
	return c
}

func (c *Config) WithReportFileName(name string) *Config {
	c.reportFileName = name
	return c
}

func (c *Config) WithPerPageResults(enabled bool) *Config {
	c.perPageResults = enabled
	return c
}

func (c *Config) WithHashAlgo(algo hashutil.HashAlgo) *Config {
	c.hashAlgo = algo
	return c
}

func (c *Config) WithXLSXReport(fileName string) *Config {
	c.xlsxReport = fileName
	return c
}

// WithMongo enables the MongoDB export. Empty database or collection keep their defaults.
func (c *Config) WithMongo(uri, database, collection string) *Config {
	c.mongoURI = uri
	if database != "" {
		c.mongoDatabase = database
	}
	if collection != "" {
		c.mongoCollection = collection
	}
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.logLevel = level
	return c
}

func (c *Config) WithLogFormat(format string) *Config {
	c.logFormat = format
	return c
}

func (c *Config) Build() (Config, error) {
	if c.baseURL.Scheme == "" || c.baseURL.Host == "" {
		return Config{}, fmt.Errorf("%w: baseUrl must be an absolute URL, got %q", ErrInvalidConfig, c.baseURL.String())
	}
	if c.baseURL.Scheme != "http" && c.baseURL.Scheme != "https" {
		return Config{}, fmt.Errorf("%w: baseUrl scheme must be http or https, got %q", ErrInvalidConfig, c.baseURL.Scheme)
	}
	if c.maxPages < 0 {
		return Config{}, fmt.Errorf("%w: maxPages cannot be negative", ErrInvalidConfig)
	}
	if c.maxAttempt < 1 {
		return Config{}, fmt.Errorf("%w: maxAttempt must be at least 1", ErrInvalidConfig)
	}
	if len(c.ruleTags) == 0 {
		return Config{}, fmt.Errorf("%w: ruleTags cannot be empty", ErrInvalidConfig)
	}
	if c.reportFileName == "" {
		return Config{}, fmt.Errorf("%w: reportFileName cannot be empty", ErrInvalidConfig)
	}
	if c.hashAlgo != hashutil.HashAlgoBLAKE3 && c.hashAlgo != hashutil.HashAlgoSHA256 {
		return Config{}, fmt.Errorf("%w: unsupported hashAlgo %q", ErrInvalidConfig, c.hashAlgo)
	}
	if c.password != "" && c.username == "" {
		return Config{}, fmt.Errorf("%w: password given without username", ErrInvalidConfig)
	}

	// If scopePrefix is empty, default to the base URL itself
	if c.scopePrefix == "" {
		c.scopePrefix = c.baseURL.String()
	}

	return *c, nil
}

func (c Config) BaseURL() url.URL {
	return c.baseURL
}

func (c Config) ScopePrefix() string {
	return c.scopePrefix
}

func (c Config) NormalizePolicy() urlutil.NormalizePolicy {
	return c.normalizePolicy
}

func (c Config) RespectRobots() bool {
	return c.respectRobots
}

func (c Config) MaxPages() int {
	return c.maxPages
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) MaxAttempt() int {
	return c.maxAttempt
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

// AuthEnabled reports whether HTTP Basic credentials are configured.
func (c Config) AuthEnabled() bool {
	return c.username != ""
}

func (c Config) Username() string {
	return c.username
}

func (c Config) Password() string {
	return c.password
}

func (c Config) ProxyURL() *url.URL {
	if c.proxyURL == nil {
		return nil
	}
	proxyURL := *c.proxyURL
	return &proxyURL
}

func (c Config) InsecureSkipVerify() bool {
	return c.insecureSkipVerify
}

func (c Config) RuleTags() []string {
	tags := make([]string, len(c.ruleTags))
	copy(tags, c.ruleTags)
	return tags
}

func (c Config) AxeSource() string {
	return c.axeSource
}

func (c Config) NavigationTimeout() time.Duration {
	return c.navigationTimeout
}

func (c Config) ChromePath() string {
	return c.chromePath
}

func (c Config) Headless() bool {
	return c.headless
}

func (c Config) OutputDir() string {
	return c.outputDir
}

func (c Config) ReportFileName() string {
	return c.reportFileName
}

func (c Config) PerPageResults() bool {
	return c.perPageResults
}

func (c Config) HashAlgo() hashutil.HashAlgo {
	return c.hashAlgo
}

func (c Config) XLSXReport() string {
	return c.xlsxReport
}

func (c Config) MongoURI() string {
	return c.mongoURI
}

func (c Config) MongoDatabase() string {
	return c.mongoDatabase
}

func (c Config) MongoCollection() string {
	return c.mongoCollection
}

func (c Config) LogLevel() string {
	return c.logLevel
}

func (c Config) LogFormat() string {
	return c.logFormat
}
