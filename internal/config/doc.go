// Package config loads, normalizes, and validates fastfox configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and fills blank credentials from environment
// variables such as GROQ_API_KEY and HUGGINGFACE_API_TOKEN. The Config type
// centralizes every knob the organize pipeline and CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical provider names, and clear validation errors.
package config
