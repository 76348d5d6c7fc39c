package config

import (
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/biograph/internal/util"
	"github.com/OFFIS-RIT/biograph/pkg/common"
	"github.com/OFFIS-RIT/biograph/pkg/logger"
	"github.com/OFFIS-RIT/biograph/pkg/table"
)

// Statement sources.
const (
	SourceFile     = "file"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
)

// Config is the process configuration read from the environment.
type Config struct {
	Table           table.Config
	ParallelBatches int
	BatchSize       int

	Source       string
	Path         string
	Query        string
	RowTablePath string
	DatabaseURL  string

	AWSRegion    string
	AWSEndpoint  string
	AWSAccessKey string
	AWSSecretKey string
	AWSBucket    string

	Debug     bool
	LogFormat string
	Port      string
}

// Load reads the configuration from the environment. Call util.LoadEnv
// first to pick up a .env file. Malformed values are logged and replaced
// by defaults.
func Load() Config {
	cfg := Config{
		Table: table.Config{
			ExcludeTypes:      util.GetEnvList("ASSEMBLY_EXCLUDE_TYPES"),
			MaxComplexSize:    util.GetEnvInt("ASSEMBLY_MAX_COMPLEX_SIZE", table.DefaultMaxComplexSize),
			NamespacePriority: util.GetEnvList("ASSEMBLY_NS_PRIORITY"),
		},
		ParallelBatches: util.GetEnvInt("ASSEMBLY_PARALLEL_BATCHES", 0),
		BatchSize:       util.GetEnvInt("ASSEMBLY_BATCH_SIZE", 0),

		Source:       strings.ToLower(util.GetEnvString("STATEMENTS_SOURCE", SourceFile)),
		Path:         util.GetEnv("STATEMENTS_PATH"),
		Query:        util.GetEnv("STATEMENTS_QUERY"),
		RowTablePath: util.GetEnv("ROW_TABLE_PATH"),
		DatabaseURL:  util.GetEnv("DATABASE_URL"),

		AWSRegion:    util.GetEnvString("AWS_REGION", "us-east-1"),
		AWSEndpoint:  util.GetEnv("AWS_ENDPOINT"),
		AWSAccessKey: util.GetEnv("AWS_ACCESS_KEY"),
		AWSSecretKey: util.GetEnv("AWS_SECRET_KEY"),
		AWSBucket:    util.GetEnv("AWS_BUCKET"),

		Debug:     util.GetEnvBool("DEBUG", false),
		LogFormat: util.GetEnvString("LOG_FORMAT", "text"),
		Port:      util.GetEnvString("PORT", "8080"),
	}

	if raw, ok := lookup("ASSEMBLY_SIGN_TABLE"); ok {
		cfg.Table.SignTable = ParseSignTable(raw)
	}

	switch cfg.Source {
	case SourceFile, SourceS3, SourcePostgres:
	default:
		logger.Warn("Unknown statement source, using file", "source", cfg.Source)
		cfg.Source = SourceFile
	}

	return cfg
}

func lookup(key string) (string, bool) {
	value := util.GetEnv(key)
	return value, value != ""
}

// ParseSignTable parses "Type:sign" pairs separated by commas. Signs use
// the row encoding (0 positive, 1 negative). Malformed pairs are logged
// and skipped. The result is never nil, so an all-invalid value yields an
// empty table rather than the default one.
func ParseSignTable(raw string) map[string]common.Sign {
	out := make(map[string]common.Sign)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			logger.Warn("Ignoring malformed sign table entry", "entry", pair)
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		sign := common.Sign(n)
		if err != nil || !sign.Known() {
			logger.Warn("Ignoring sign table entry with invalid sign", "type", name, "sign", value)
			continue
		}
		out[name] = sign
	}
	return out
}
