package circuit

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"
	"go.uber.org/zap"
)

// Basis is the set of gate names a hardware target executes directly.
// Gates keeps declaration order for rendering; membership checks go
// through an index set.
type Basis struct {
	Name    string
	Gates   []string
	members mapset.Set
}

func NewBasis(name string, gates []string) Basis {
	g := make([]string, len(gates))
	copy(g, gates)
	m := mapset.NewSet()
	for _, n := range g {
		m.Add(n)
	}
	return Basis{Name: name, Gates: g, members: m}
}

func (b Basis) Contains(name string) bool {
	if b.members == nil {
		return false
	}
	return b.members.Contains(name)
}

func DEFAULT_BASIS_GATES() []string {
	return []string{"sx", "rz", "cx"}
}

// SuperconductingBasis is the default target: the standard transmon
// native set.
func SuperconductingBasis() Basis {
	return NewBasis("superconducting", []string{"cx", "rz", "sx", "x"})
}

// TrappedIonBasis targets ion hardware where the entangler is the
// Molmer-Sorensen interaction.
func TrappedIonBasis() Basis {
	return NewBasis("trapped_ion", []string{"rxx", "rx", "ry"})
}

// BasisByName resolves the basis names accepted in device settings.
// Unknown names fall back to the superconducting set.
func BasisByName(name string) Basis {
	switch name {
	case "trapped_ion":
		return TrappedIonBasis()
	case "superconducting", "":
		return SuperconductingBasis()
	default:
		zap.L().Info(fmt.Sprintf("unknown basis name:%s, falling back to superconducting", name))
		return SuperconductingBasis()
	}
}
