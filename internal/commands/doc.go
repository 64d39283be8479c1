// Package commands provides the command-line interface for the pcrypt tool.
//
// It implements commands for:
//   - encryption and decryption of files
//   - key and benchmark data generation
//   - benchmarking the parallel engine against the serial path
//   - serving the benchmark API over HTTP
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands
