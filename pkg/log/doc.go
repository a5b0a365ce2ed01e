// Package log provides leveled, zap-backed logging for shipit.
//
// The CLI initialises the global logger once (Init) and hands components a
// Logger (Default or New). Tests build observed loggers with logtest.
package log
