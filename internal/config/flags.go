package config

import "flag"

// Flags holds the command-line overrides shared by every job binary.
// Zero values mean "not set" and never override the environment.
type Flags struct {
	EnvFile       string
	DSN           string
	Driver        string
	BatchSize     int
	Collection    string
	ActiveVersion int
	LogLevel      string
}

// BindFlags registers the shared flags on fs. Job-specific flags are
// registered by each binary on the same set before fs.Parse.
func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.EnvFile, "env-file", "", "dotenv file to load before reading the environment")
	fs.StringVar(&f.DSN, "d", "", "Database DSN")
	fs.StringVar(&f.Driver, "driver", "", "Database driver (pgx or sqlite3)")
	fs.IntVar(&f.BatchSize, "batch-size", 0, "Records per batch transaction (default 500)")
	fs.StringVar(&f.Collection, "collection", "", "Record collection to process (default transactions)")
	fs.IntVar(&f.ActiveVersion, "active-version", 0, "Key version for new writes (default ACTIVE_ENCRYPTION_VERSION)")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	return f
}

func (f *Flags) config() *StructuredConfig {
	return &StructuredConfig{
		Keys: Keys{
			ActiveVersion: f.ActiveVersion,
		},
		Storage: Storage{
			DB: DB{
				Driver: f.Driver,
				DSN:    f.DSN,
			},
		},
		Jobs: Jobs{
			BatchSize:  f.BatchSize,
			Collection: f.Collection,
		},
		Log: Log{
			Level: f.LogLevel,
		},
		EnvFile: f.EnvFile,
	}
}
