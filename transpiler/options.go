package transpiler

import (
	"fmt"

	"github.com/go-faster/jx"
)

const (
	DEFAULT_OPTIMIZATION_LEVEL = 2

	// lookahead window sizes per optimization level; level 3 scans the
	// whole remainder of the circuit
	lookaheadWindowLevel1 = 16
	lookaheadWindowLevel2 = 64

	// shortest-path enumeration cap per routed gate
	maxCandidatePaths = 32
)

// Options configure a single compile call.
//
// OptimizationLevel 0 routes along the lexicographically first shortest
// path with no lookahead. Levels 1 and 2 widen the lookahead window used
// by the routing tie-break; level 2 additionally runs cancellation and
// rotation-merge passes after basis rewriting. Level 3 scans the whole
// circuit remainder and breaks remaining ties with a seeded random pick.
type Options struct {
	OptimizationLevel int
	Seed              int64
	ErrorModel        *ErrorModel
	Cache             *RewriteCache
}

func NewOptions() Options {
	return Options{OptimizationLevel: DEFAULT_OPTIMIZATION_LEVEL}
}

// ParseOptions decodes the JSON options object carried in a transpiler
// config, e.g. {"optimization_level":2,"seed":7}. Unknown keys are
// skipped. An empty document yields the defaults.
func ParseOptions(data []byte) (Options, error) {
	opts := NewOptions()
	if len(data) == 0 {
		return opts, nil
	}
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "optimization_level":
			v, err := d.Int()
			if err != nil {
				return err
			}
			if v < 0 || v > 3 {
				return fmt.Errorf("optimization_level %d out of range [0, 3]", v)
			}
			opts.OptimizationLevel = v
			return nil
		case "seed":
			v, err := d.Int64()
			if err != nil {
				return err
			}
			opts.Seed = v
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return NewOptions(), fmt.Errorf("failed to parse transpiler options: %w", err)
	}
	return opts, nil
}

func (o Options) lookaheadWindow(remaining int) int {
	switch o.OptimizationLevel {
	case 0:
		return 0
	case 1:
		return lookaheadWindowLevel1
	case 2:
		return lookaheadWindowLevel2
	default:
		return remaining
	}
}
