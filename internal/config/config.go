package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Artifacts names every file the job produces in the work directory.
type Artifacts struct {
	HospitalizedRegion       string
	HospitalizedNational     string
	HospitalizedByRegion     string
	HospitalizedByPopulation string
	VariationRegion          string
	VariationNational        string
	VariationByRegion        string
	VariationWeekly          string
	Quadrants                string
	Workbook                 string
}

// Columns holds the header names read from the snapshot and the population table.
type Columns struct {
	Region       string
	Date         string
	Hospitalized string

	PopulationRegion string
	PopulationTotal  string
}

// Config holds all job settings, populated from environment variables.
type Config struct {
	SourceURL        string
	SourceFile       string
	SourceFooterRows int
	SourceTimeout    time.Duration
	Columns          Columns

	DesignatedRegion string
	ExcludedRegions  []string

	WorkDir   string
	OutputDir string

	GCSBucket        string
	PopulationObject string
	PopulationFile   string

	SpikeSuppression bool
	SpikeThreshold   int
	ComparisonDays   int

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Optional run notification and metrics push.
	KafkaBrokers      []string
	KafkaSummaryTopic string
	PushgatewayURL    string

	Artifacts Artifacts
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	sourceTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("SOURCE_TIMEOUT", "30s"))
	if err != nil || sourceTimeout <= 0 {
		return nil, errors.New("invalid SOURCE_TIMEOUT")
	}

	footerRows, err := parseNonNegativeInt("SOURCE_FOOTER_ROWS", 2)
	if err != nil {
		return nil, err
	}
	threshold, err := parseNonNegativeInt("SPIKE_THRESHOLD", 10000)
	if err != nil {
		return nil, err
	}
	days, err := parseNonNegativeInt("COMPARISON_DAYS", 7)
	if err != nil {
		return nil, err
	}
	if days == 0 {
		return nil, errors.New("invalid COMPARISON_DAYS: must be positive")
	}
	suppress, err := parseBool("SPIKE_SUPPRESSION", false)
	if err != nil {
		return nil, err
	}

	sourceFile := sharedcfg.EnvOrDefault("SOURCE_FILE", "serie_historica_acumulados.csv")

	cfg := &Config{
		SourceURL:        sharedcfg.EnvOrDefault("SOURCE_URL", "https://covid19.isciii.es/resources/"+sourceFile),
		SourceFile:       sourceFile,
		SourceFooterRows: footerRows,
		SourceTimeout:    sourceTimeout,
		Columns: Columns{
			Region:       "CCAA",
			Date:         "FECHA",
			Hospitalized: "Hospitalizados",

			PopulationRegion: "Comunidades y Ciudades Autónomas",
			PopulationTotal:  "Total",
		},

		DesignatedRegion: strings.ToUpper(sharedcfg.EnvOrDefault("DESIGNATED_REGION", "GA")),
		ExcludedRegions:  parseRegions(os.Getenv("EXCLUDED_REGIONS")),

		WorkDir:   sharedcfg.EnvOrDefault("WORK_DIR", os.TempDir()),
		OutputDir: sharedcfg.EnvOrDefault("OUTPUT_DIR", "."),

		GCSBucket:        sharedcfg.EnvOrDefault("GCS_BUCKET", "covid19-jota"),
		PopulationObject: sharedcfg.EnvOrDefault("POPULATION_OBJECT", "PopulationCA.csv"),
		PopulationFile:   os.Getenv("POPULATION_FILE"),

		SpikeSuppression: suppress,
		SpikeThreshold:   threshold,
		ComparisonDays:   days,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:      sharedcfg.ParseBrokers(os.Getenv("KAFKA_BROKERS")),
		KafkaSummaryTopic: sharedcfg.EnvOrDefault("KAFKA_SUMMARY_TOPIC", "hospitalized-reports"),
		PushgatewayURL:    os.Getenv("PUSHGATEWAY_URL"),

		Artifacts: DefaultArtifacts(),
	}

	if cfg.SourceURL == "" {
		return nil, errors.New("SOURCE_URL is required")
	}
	if cfg.DesignatedRegion == "" {
		return nil, errors.New("DESIGNATED_REGION is required")
	}
	if cfg.IsExcluded(cfg.DesignatedRegion) {
		return nil, errors.New("DESIGNATED_REGION is listed in EXCLUDED_REGIONS")
	}

	return cfg, nil
}

// DefaultArtifacts returns the fixed set of output file names.
func DefaultArtifacts() Artifacts {
	return Artifacts{
		HospitalizedRegion:       "Hospitalized_ga.png",
		HospitalizedNational:     "Hospitalized_sp.png",
		HospitalizedByRegion:     "Hospitalized_ca.png",
		HospitalizedByPopulation: "Hospitalized_by_population.png",
		VariationRegion:          "Variation_ga.png",
		VariationNational:        "Variation_sp.png",
		VariationByRegion:        "Variation_ca.png",
		VariationWeekly:          "Variation_weekly.png",
		Quadrants:                "Quadrants_ca.png",
		Workbook:                 "Summary.xlsx",
	}
}

// Charts returns the chart names in publish order.
func (c *Config) Charts() []string {
	a := c.Artifacts
	return []string{
		a.HospitalizedRegion,
		a.HospitalizedNational,
		a.VariationRegion,
		a.VariationNational,
		a.VariationByRegion,
		a.HospitalizedByRegion,
		a.HospitalizedByPopulation,
		a.VariationWeekly,
		a.Quadrants,
	}
}

// PublishList returns the artifacts copied to every destination, raw snapshot first.
func (c *Config) PublishList() []string {
	names := append([]string{c.SourceFile}, c.Charts()...)
	return append(names, c.Artifacts.Workbook)
}

// IsExcluded reports whether region is on the exclusion list.
func (c *Config) IsExcluded(region string) bool {
	for _, r := range c.ExcludedRegions {
		if strings.EqualFold(r, region) {
			return true
		}
	}
	return false
}

// KafkaEnabled reports whether run summaries should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaSummaryTopic != ""
}

func parseRegions(value string) []string {
	regions := sharedcfg.ParseBrokers(value)
	for i := range regions {
		regions[i] = strings.ToUpper(regions[i])
	}
	return regions
}

func parseNonNegativeInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + key + ": must be a non-negative integer")
	}
	return n, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.New("invalid " + key + ": must be a boolean")
	}
	return b, nil
}
