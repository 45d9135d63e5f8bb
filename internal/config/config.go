// Package config defines the portfolio configuration file and loads it with
// viper. Amounts may be written the way people type them ("185 000",
// "3,5 %") and are parsed leniently.
package config

import (
	"fmt"
	"io"
	"math"
	"reflect"
	"strings"

	"github.com/iwvelando/rental-projection/internal/projection"
	"github.com/iwvelando/rental-projection/pkg/constants"
	"github.com/iwvelando/rental-projection/pkg/mathutil"
	"github.com/iwvelando/rental-projection/pkg/validation"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for rental-projection.
type Configuration struct {
	Logging    LoggingConfig    `json:"logging,omitempty" yaml:"logging,omitempty"`
	Output     OutputConfig     `json:"output,omitempty" yaml:"output,omitempty"`
	Policy     PolicyConfig     `json:"policy,omitempty" yaml:"policy,omitempty"`
	Properties []PropertyConfig `json:"properties" yaml:"properties"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `json:"level,omitempty" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `json:"format,omitempty" yaml:"format,omitempty"`         // json, console
	OutputFile string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format   string `json:"format,omitempty" yaml:"format,omitempty"` // pretty, csv, json
	Currency string `json:"currency,omitempty" yaml:"currency,omitempty"`
}

// PolicyConfig selects the engine policy by name.
type PolicyConfig struct {
	InterestDeduction string `json:"interestDeduction,omitempty" yaml:"interestDeduction,omitempty"` // first_year, average, none
	TouristTax        string `json:"touristTax,omitempty" yaml:"touristTax,omitempty"`               // pass_through, retained
}

// Amount is a number that may be written as a string with spaces, percent
// signs, currency symbols or a decimal comma.
type Amount float64

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.currency", constants.DefaultCurrencySymbol)
	v.SetDefault("policy.interestDeduction", string(projection.DeductFirstYearInterest))
	v.SetDefault("policy.touristTax", string(projection.TouristTaxPassThrough))
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		amountHook,
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&configuration, hook); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

var amountType = reflect.TypeOf(Amount(0))

func amountHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != amountType {
		return data, nil
	}
	switch value := data.(type) {
	case string:
		parsed, err := mathutil.ParseAmount(value)
		if err != nil {
			return nil, err
		}
		return Amount(parsed), nil
	case nil:
		return Amount(0), nil
	}
	return data, nil
}

// EnginePolicy returns the engine policy named by the configuration.
func (c *Configuration) EnginePolicy() (projection.Policy, error) {
	return projection.ParsePolicy(c.Policy.InterestDeduction, c.Policy.TouristTax)
}

// ActiveProperties returns the properties not explicitly disabled.
func (c *Configuration) ActiveProperties() []PropertyConfig {
	var active []PropertyConfig
	for _, property := range c.Properties {
		if property.IsActive() {
			active = append(active, property)
		}
	}
	return active
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.ConfigValidator{}
	for _, property := range c.ActiveProperties() {
		info := validation.PropertyConfig{
			Name:                property.Name,
			LoanTermYears:       property.Financing.termYears(),
			RenovationEstimated: float64(property.Acquisition.RenovationEstimated),
			RenovationRemaining: float64(property.Acquisition.RenovationRemaining),
			DownPayment:         float64(property.Financing.DownPayment),
		}
		if in, err := property.ToInput(); err == nil {
			info.AcquisitionCost = projection.AggregateAcquisition(in.Acquisition, in.Financing.DownPayment).TotalCost
			if in.Occupancy != nil {
				info.HasOccupancy = true
				info.TargetNights = in.Occupancy.TargetNightsPerYear
				info.CapacityNights = in.Occupancy.CapacityNights()
			}
		}
		validator.Properties = append(validator.Properties, info)
	}
	return validator.ValidateAll()
}

func roundYears(value Amount) int {
	return int(math.Round(float64(value)))
}
