package configuration

import (
	"os"

	"github.com/markusressel/twiddle/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type Configuration struct {
	DbPath string `json:"dbPath"`

	Notifications bool `json:"notifications"`

	Controllers []ControllerConfig `json:"controllers"`

	Api        ApiConfig        `json:"api"`
	Statistics StatisticsConfig `json:"statistics"`
	Profiling  ProfilingConfig  `json:"profiling"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("twiddle")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/twiddle/")
	}

	viper.SetEnvPrefix("twiddle")
	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("dbpath", "/var/lib/twiddle/twiddle.db")
	viper.SetDefault("notifications", false)

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.host", "localhost")
	viper.SetDefault("api.port", 9001)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)

	viper.SetDefault("profiling.enabled", false)
	viper.SetDefault("profiling.host", "localhost")
	viper.SetDefault("profiling.port", 6060)

	viper.SetDefault("controllers", []ControllerConfig{})
}

// DetectAndReadConfigFile reads the config file and returns its path.
// The config file is required, so this fails hard if none could be found.
func DetectAndReadConfigFile() string {
	if err := viper.ReadInConfig(); err != nil {
		ui.Fatal("Error reading config file, %s", err)
	}
	// this is only populated _after_ ReadInConfig()
	return viper.ConfigFileUsed()
}

// LoadConfig decodes the values known to viper into CurrentConfig
func LoadConfig() {
	err := viper.Unmarshal(&CurrentConfig, viper.DecodeHook(decodeHooks()))
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
	applyDefaults(&CurrentConfig)
}

func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		gainsHookFunc(),
	)
}

// GetController returns the configuration of the controller with the given id
func GetController(id string) (ControllerConfig, bool) {
	for _, controller := range CurrentConfig.Controllers {
		if controller.ID == id {
			return controller, true
		}
	}
	return ControllerConfig{}, false
}
