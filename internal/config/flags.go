package config

import "github.com/spf13/pflag"

var (
	flagConfig   string
	flagDebug    bool
	flagEncoding string
	flagLogFile  string
	flagRoots    []string
)

// BindFlags registers the configuration flags on fs. Call it once, from the
// root command.
func BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&flagConfig, "config", "", "Path to config file")
	fs.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	fs.StringVar(&flagEncoding, "encoding", "", "Document encoding (utf-8, euc-kr)")
	fs.StringVar(&flagLogFile, "log-file", "", "Write logs to this file")
	fs.StringSliceVar(&flagRoots, "texture-root", nil, "Directory texture paths are resolved against (repeatable)")
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if flagDebug {
		cfg.Logging.Level = "debug"
	}
	if flagEncoding != "" {
		cfg.Document.Encoding = flagEncoding
	}
	if flagLogFile != "" {
		cfg.Logging.LogFile = flagLogFile
	}
	if len(flagRoots) > 0 {
		cfg.Textures.Roots = flagRoots
	}
}
