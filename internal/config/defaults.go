package config

import "runtime"

const (
	defaultMapsDir          = "maps"
	defaultRegionsDir       = "regions"
	defaultLocalisationDir  = "localisation_treasure"
	defaultLogDir           = "~/.local/share/treasurepicker/logs"
	defaultCacheDir         = "~/.cache/treasurepicker"
	defaultCacheFile        = "gallery.db"
	defaultThreshold        = 0.65
	defaultDeltaSecond      = 0.03
	defaultInterpolation    = "area"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultMaxWorkers       = 16
	mapsDirEnv              = "TREASUREPICKER_MAPS_DIR"
	defaultConfigLocation   = "~/.config/treasurepicker/config.toml"
	defaultProjectConfigRel = "treasurepicker.toml"
)

var defaultExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".webp"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MapsDir:         defaultMapsDir,
			RegionsDir:      defaultRegionsDir,
			LocalisationDir: defaultLocalisationDir,
			LogDir:          defaultLogDir,
		},
		Matching: Matching{
			Threshold:     defaultThreshold,
			DeltaSecond:   defaultDeltaSecond,
			Workers:       defaultWorkers(),
			Interpolation: defaultInterpolation,
		},
		Gallery: Gallery{
			Extensions: append([]string(nil), defaultExtensions...),
		},
		Cache: Cache{
			Enabled: true,
			Dir:     defaultCacheDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > defaultMaxWorkers {
		return defaultMaxWorkers
	}
	if n < 1 {
		return 1
	}
	return n
}
