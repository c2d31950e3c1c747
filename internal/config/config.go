package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Paths. Relative data/output dirs resolve against BaseDir; an empty
	// BaseDir means the nearest ancestor of the working dir holding DataDir.
	BaseDir      string `mapstructure:"base_dir" yaml:"base_dir"`
	DataDir      string `mapstructure:"data_dir" yaml:"data_dir"`
	FeaturesFile string `mapstructure:"features_file" yaml:"features_file"`
	LabelsFile   string `mapstructure:"labels_file" yaml:"labels_file"`
	OutputDir    string `mapstructure:"output_dir" yaml:"output_dir"`
	Sheet        string `mapstructure:"sheet" yaml:"sheet"`

	// Column names
	IDColumn             string `mapstructure:"id_column" yaml:"id_column"`
	OutcomeColumn        string `mapstructure:"outcome_column" yaml:"outcome_column"`
	ModeColumn           string `mapstructure:"mode_column" yaml:"mode_column"`
	WarehouseColumn      string `mapstructure:"warehouse_column" yaml:"warehouse_column"`
	ImportanceColumn     string `mapstructure:"importance_column" yaml:"importance_column"`
	GenderColumn         string `mapstructure:"gender_column" yaml:"gender_column"`
	WeightColumn         string `mapstructure:"weight_column" yaml:"weight_column"`
	DiscountColumn       string `mapstructure:"discount_column" yaml:"discount_column"`
	RatingColumn         string `mapstructure:"rating_column" yaml:"rating_column"`
	PriorPurchasesColumn string `mapstructure:"prior_purchases_column" yaml:"prior_purchases_column"`

	// Thresholds and console sizes
	MissingThreshold       float64 `mapstructure:"missing_threshold" yaml:"missing_threshold"`
	LowConfidenceThreshold int     `mapstructure:"low_confidence_threshold" yaml:"low_confidence_threshold"`
	PreviewRows            int     `mapstructure:"preview_rows" yaml:"preview_rows"`
	MissingTop             int     `mapstructure:"missing_top" yaml:"missing_top"`
	DuplicateSample        int     `mapstructure:"duplicate_sample" yaml:"duplicate_sample"`

	XLSXReport bool `mapstructure:"xlsx_report" yaml:"xlsx_report"`
}

// Keys lists every configuration key in display order.
var Keys = []string{
	"base_dir", "data_dir", "features_file", "labels_file", "output_dir", "sheet",
	"id_column", "outcome_column", "mode_column", "warehouse_column", "importance_column",
	"gender_column", "weight_column", "discount_column", "rating_column", "prior_purchases_column",
	"missing_threshold", "low_confidence_threshold", "preview_rows", "missing_top",
	"duplicate_sample", "xlsx_report",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_dir", "")
	v.SetDefault("data_dir", "data")
	v.SetDefault("features_file", "X_train.csv")
	v.SetDefault("labels_file", "y_train.csv")
	v.SetDefault("output_dir", "outputs")
	v.SetDefault("sheet", "")

	v.SetDefault("id_column", "ID")
	v.SetDefault("outcome_column", "Reached.on.Time_Y.N")
	v.SetDefault("mode_column", "Mode_of_Shipment")
	v.SetDefault("warehouse_column", "Warehouse_block")
	v.SetDefault("importance_column", "Product_importance")
	v.SetDefault("gender_column", "Gender")
	v.SetDefault("weight_column", "Weight_in_gms")
	v.SetDefault("discount_column", "Discount_offered")
	v.SetDefault("rating_column", "Customer_rating")
	v.SetDefault("prior_purchases_column", "Prior_purchases")

	v.SetDefault("missing_threshold", 0.6)
	v.SetDefault("low_confidence_threshold", 50)
	v.SetDefault("preview_rows", 3)
	v.SetDefault("missing_top", 20)
	v.SetDefault("duplicate_sample", 20)
	v.SetDefault("xlsx_report", false)
}

// Default returns the built-in configuration, ignoring files and env.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".ontime"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.ontime/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults; flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("ONTIME")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.MissingThreshold < 0 || c.MissingThreshold > 1 {
		return nil, fmt.Errorf("missing_threshold must be within [0,1], got %v", c.MissingThreshold)
	}
	return &c, nil
}
