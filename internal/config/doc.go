// Package config handles YAML configuration loading with environment
// variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable
// interpolation. Defaults are applied before validation, so a minimal
// file only needs instance.id.
package config
