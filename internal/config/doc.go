// Package config loads field editor settings from TOML files.
//
// A settings file has four tables:
//
//	[field]   behavior flags and the character limit
//	[layout]  font metrics, page and plate geometry
//	[log]     log level and destination
//	[script]  an optional Lua validation script
//
// Absent keys keep their engine defaults. Unknown keys are rejected so that
// typos surface as errors. A Watcher reloads the file when it changes.
package config
