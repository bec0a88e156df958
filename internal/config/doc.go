// Package config loads the service configuration with viper: defaults, an
// optional config file, then HOTEL_-prefixed environment variables. The
// result is checked with validator struct tags before any component sees it.
package config
