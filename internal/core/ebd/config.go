package ebd

import "fmt"

// Config contains the partition sizes the world is built with. The
// slot table capacity is the sum of the three partitions and every
// backing store column is sized to it, so these are fixed for the
// lifetime of a World.
type Config struct {
	MaxLoadingEntities int `json:"max_loading_entities" mapstructure:"max_loading_entities" yaml:"max_loading_entities"`
	MaxSceneEntities   int `json:"max_scene_entities" mapstructure:"max_scene_entities" yaml:"max_scene_entities"`
	MaxGlobalEntities  int `json:"max_global_entities" mapstructure:"max_global_entities" yaml:"max_global_entities"`
}

// DefaultConfig returns partition sizes suitable for a mid-size scene.
func DefaultConfig() Config {
	return Config{
		MaxLoadingEntities: 256,
		MaxSceneEntities:   8192,
		MaxGlobalEntities:  512,
	}
}

// Validate checks that the partition sizes fit the 16-bit index space.
func (c Config) Validate() error {
	if c.MaxLoadingEntities < 0 || c.MaxSceneEntities <= 0 || c.MaxGlobalEntities < 0 {
		return fmt.Errorf("scene partition size must be positive, loading and global non-negative: %+v", c)
	}
	if c.MaxEntities() > 1<<16 {
		return fmt.Errorf("partition sizes sum to %d, exceeding the 16-bit index space", c.MaxEntities())
	}
	return nil
}

// MaxEntities returns the total slot table capacity.
func (c Config) MaxEntities() int {
	return c.MaxLoadingEntities + c.MaxSceneEntities + c.MaxGlobalEntities
}

// Bounds returns the half-open index range [lo, hi) of a partition.
func (c Config) Bounds(p Partition) (lo, hi int) {
	switch p {
	case PartitionLoading:
		return 0, c.MaxLoadingEntities
	case PartitionScene:
		return c.MaxLoadingEntities, c.MaxLoadingEntities + c.MaxSceneEntities
	case PartitionGlobal:
		return c.MaxLoadingEntities + c.MaxSceneEntities, c.MaxEntities()
	default:
		return 0, 0
	}
}

// PartitionOf returns the partition an index falls in.
func (c Config) PartitionOf(i EntityIndex) Partition {
	switch {
	case int(i) < c.MaxLoadingEntities:
		return PartitionLoading
	case int(i) < c.MaxLoadingEntities+c.MaxSceneEntities:
		return PartitionScene
	default:
		return PartitionGlobal
	}
}
