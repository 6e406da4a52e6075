// Package config loads, normalizes, and validates vocamail configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads optional .env files, and honours
// environment fallbacks such as SMTP_SERVER and MAIL_FROM. The Config type
// centralizes every knob the CLI and the mailing batch need, so the data
// directory, SMTP transport, and selection policy are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
