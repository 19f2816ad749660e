// Package config defines and loads Parley's configuration.
//
// Configuration is read from a YAML file, defaults are applied for unset
// fields, environment variables of the form PARLEY_SECTION_FIELD override
// file values, and the result is validated before use. The run command
// applies CLI flag overrides on top.
package config
