// Package config loads typed configuration structs from environment
// variables (with optional .env support for development).
//
// Each package that needs settings declares its own Config struct with
// env/envDefault tags and loads it at startup:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
// A given configuration type is parsed once per process and cached, so
// components wired in different orders still agree on the values.
package config
