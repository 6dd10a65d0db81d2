// Package config implements the runtime's immutable configuration
// object. The design notes call out the single-node/distributed flag
// as global mutable state that "must not change afterward"; this
// package models it (and the rest of the environment/runtime toggles
// from §6) as a value read once at startup and passed by reference
// into every component, never mutated in place.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// Mode selects single-node vs. distributed execution.
type Mode int

const (
	SingleNode Mode = iota
	Distributed
)

// Config is the runtime's immutable configuration. Once loaded,
// components hold a *Config and never write through it.
type Config struct {
	Mode Mode

	// VerboseLogging enables per-launch dependency dumps (sched.Scheduler).
	VerboseLogging bool
	// ExperimentalSignals enables the distributed signal-graph
	// scheduler; with it off, Distributed mode is rejected at startup.
	ExperimentalSignals bool
	// DevPTXDump makes the GPU engine write a one-line summary of each
	// reduction launch to stderr before running it.
	DevPTXDump bool
	// NumPartitions is the controller-side fleet size for distributed
	// mode (the partitioner's B = Π blocking[d] must equal this).
	NumPartitions int
	// GhostDepth is the configured halo width. Defaults to 2 per §3.
	// Package ghost does not read it.
	GhostDepth int
	// BlockSize is the GPU reduction engine's shared-memory tree block
	// size; must be a power of 2.
	BlockSize int
	// VersionCacheSize bounds the number of compiled kernel.Version
	// entries kernel.Cache retains across launches.
	VersionCacheSize int

	// Nodes lists the compute-node addresses for distributed mode, node
	// 0 is always the control node. Populated from a cluster file, not
	// from the environment.
	Nodes []string
}

// Default returns the configuration baseline before environment or
// file overrides are applied.
func Default() *Config {
	return &Config{
		Mode:             SingleNode,
		GhostDepth:       2,
		BlockSize:        256,
		VersionCacheSize: 256,
	}
}

// FromEnviron builds a Config by layering the §6 environment toggles
// over Default(). Recognized variables: LISZT_VERBOSE_LOGGING,
// LISZT_EXPERIMENTAL_SIGNALS, LISZT_INTERNAL_DEV_PTX_DUMP,
// LISZT_NUM_PARTITIONS.
func FromEnviron() *Config {
	c := Default()
	c.VerboseLogging = envBool("LISZT_VERBOSE_LOGGING")
	c.ExperimentalSignals = envBool("LISZT_EXPERIMENTAL_SIGNALS")
	c.DevPTXDump = envBool("LISZT_INTERNAL_DEV_PTX_DUMP")
	if n, ok := envInt("LISZT_NUM_PARTITIONS"); ok {
		c.NumPartitions = n
	}
	if c.ExperimentalSignals && c.NumPartitions > 1 {
		c.Mode = Distributed
	}
	return c
}

func envBool(name string) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func envInt(name string) (int, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// clusterFile is the on-disk shape of a distributed cluster
// configuration: the list of compute node addresses and any
// per-cluster override of the ghost depth / block size defaults.
type clusterFile struct {
	Nodes      []string `yaml:"nodes"`
	GhostDepth int      `yaml:"ghost_depth"`
	BlockSize  int      `yaml:"block_size"`
}

// LoadCluster layers a YAML cluster file's settings onto c, returning
// the merged configuration. A zero-valued field in the file leaves c's
// existing value untouched.
func LoadCluster(c *Config, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cf clusterFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	out := *c
	if len(cf.Nodes) > 0 {
		out.Nodes = cf.Nodes
		out.NumPartitions = len(cf.Nodes) - 1 // node 0 is the control node
		out.Mode = Distributed
	}
	if cf.GhostDepth > 0 {
		out.GhostDepth = cf.GhostDepth
	}
	if cf.BlockSize > 0 {
		out.BlockSize = cf.BlockSize
	}
	return &out, nil
}
