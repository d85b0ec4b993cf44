// Package config provides configuration structures and defaults for gravelkv.
package config

import (
	"fmt"
	"log"
	"os"
)

const (
	defaultFileMode = os.FileMode(0644)
)

// RecoveryPolicy selects how Load reacts to a damaged log.
type RecoveryPolicy int

const (
	// RecoverStrict fails the load on any truncated or corrupt record.
	RecoverStrict RecoveryPolicy = iota
	// RecoverTruncateTail cuts a partially written trailing record off the
	// log and stops there. Checksum mismatches still fail the load.
	RecoverTruncateTail
	// RecoverSkipCorrupt behaves like RecoverTruncateTail and additionally
	// steps over records whose checksum does not match.
	RecoverSkipCorrupt
)

var policyNames = map[RecoveryPolicy]string{
	RecoverStrict:       "strict",
	RecoverTruncateTail: "truncate-tail",
	RecoverSkipCorrupt:  "skip-corrupt",
}

func (p RecoveryPolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("RecoveryPolicy(%d)", int(p))
}

// ParseRecoveryPolicy maps a policy name as printed by String back to its value.
func ParseRecoveryPolicy(s string) (RecoveryPolicy, error) {
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return RecoverStrict, fmt.Errorf("unknown recovery policy %q", s)
}

// Config holds the tunable parameters for a gravelkv store.
type Config struct {
	// Recovery decides what Load does with truncated or corrupt records.
	Recovery RecoveryPolicy
	// SyncWrites fsyncs the log after every append. Off by default.
	SyncWrites bool
	// FileMode is used when the log file has to be created.
	FileMode os.FileMode
	// Logger receives recovery messages. Defaults to log.Default().
	Logger *log.Logger
}

// DefaultConfig returns a Config struct populated with default values.
func DefaultConfig() *Config {
	return &Config{
		Recovery:   RecoverStrict,
		SyncWrites: false,
		FileMode:   defaultFileMode,
		Logger:     log.Default(),
	}
}

// FillDefaults sets any zero-value fields in the Config to their default values.
func (c *Config) FillDefaults() {
	def := DefaultConfig()
	if c.FileMode == 0 {
		c.FileMode = def.FileMode
	}
	if c.Logger == nil {
		c.Logger = def.Logger
	}
}
