// Package utils holds process-level plumbing shared by the CLI: the layered
// Viper ConfigurationLoader, the zap LoggerFactory and the FlushingWriter that
// keeps progress lines visible while a scan runs.
package utils
