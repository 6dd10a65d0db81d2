package kernel

import (
	lru "github.com/hashicorp/golang-lru"

	liszt "github.com/clemire/liszt-in-terra"
	"github.com/clemire/liszt-in-terra/config"
)

// versionKey identifies one compiled Version: the kernel's identity,
// the processor it targets, and the subset shape (mask vs. index) it
// was compiled against. Two kernels with the same name but different
// bodies are never compared — callers key the cache off the *Kernel
// pointer itself, not its name.
type versionKey struct {
	kernel    *Kernel
	processor Processor
	subset    *liszt.Subset
}

// Cache holds compiled Versions across launches so that repeated
// dispatch of the same (kernel, processor, subset) triple skips
// recompilation, falling back to DynamicChecks' own schema-change
// detection for staleness. Bounded by size to keep memory flat under a
// long-running program that declares kernels in a loop.
type Cache struct {
	lru *lru.Cache
}

// NewCache builds a version cache holding up to size compiled
// versions.
func NewCache(size int) (*Cache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Cache{lru: c}, nil
}

// NewCacheFromConfig builds a Cache sized by cfg.VersionCacheSize,
// defaulting to config.Default's size if cfg is nil or the field is
// unset.
func NewCacheFromConfig(cfg *config.Config) (*Cache, error) {
	size := config.Default().VersionCacheSize
	if cfg != nil && cfg.VersionCacheSize > 0 {
		size = cfg.VersionCacheSize
	}
	return NewCache(size)
}

// Get returns the cached Version for k/proc/subset, compiling and
// inserting a new one on a miss.
func (c *Cache) Get(k *Kernel, proc Processor, subset *liszt.Subset, engine ReduceEngine) (*Version, error) {
	key := versionKey{kernel: k, processor: proc, subset: subset}
	if v, ok := c.lru.Get(key); ok {
		return v.(*Version), nil
	}
	kk := *k
	kk.Processor = proc
	kk.Subset = subset
	v := NewVersion(&kk)
	v.Engine = engine
	if err := v.Compile(); err != nil {
		return nil, err
	}
	c.lru.Add(key, v)
	return v, nil
}
