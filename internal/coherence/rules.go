package coherence

import (
	"fmt"

	"cohere/internal/ast"
	"cohere/internal/symbols"
)

// traitState — третье измерение таблицы: impl без trait-а (inherent)
// или trait с его собственным квалификатором.
type traitState uint8

const (
	traitAbsent traitState = iota
	traitSafe
	traitUnsafe

	traitStateCount
)

func stateOf(trait *symbols.TraitDef) traitState {
	if trait == nil {
		return traitAbsent
	}
	switch trait.Unsafety {
	case ast.Safe:
		return traitSafe
	case ast.Unsafe:
		return traitUnsafe
	}
	panic(fmt.Sprintf("coherence: trait %s has invalid unsafety %d", trait.Name, trait.Unsafety))
}

type verdict uint8

const (
	verdictUnset verdict = iota // ни одна ячейка таблицы не должна остаться такой
	verdictOK
	verdictUnsafeInherent
	verdictUnsafeNegative
	verdictUnsafeImplOfSafeTrait
	verdictSafeImplOfUnsafeTrait

	verdictCount
)

// Размеры измерений зафиксированы: при добавлении значения в любой enum
// индекс выходит за [0,1) и сборка ломается.
var (
	_ = [1]struct{}{}[traitStateCount-3]
	_ = [1]struct{}{}[ast.UnsafetyCount-2]
	_ = [1]struct{}{}[ast.PolarityCount-2]
)

var rules = [traitStateCount][ast.UnsafetyCount][ast.PolarityCount]verdict{
	traitAbsent: {
		ast.Safe: {
			ast.Positive: verdictOK,
			ast.Negative: verdictOK,
		},
		ast.Unsafe: {
			ast.Positive: verdictUnsafeInherent,
			ast.Negative: verdictUnsafeInherent,
		},
	},
	traitSafe: {
		ast.Safe: {
			ast.Positive: verdictOK,
			ast.Negative: verdictOK,
		},
		ast.Unsafe: {
			ast.Positive: verdictUnsafeImplOfSafeTrait,
			ast.Negative: verdictUnsafeImplOfSafeTrait,
		},
	},
	traitUnsafe: {
		ast.Safe: {
			ast.Positive: verdictSafeImplOfUnsafeTrait,
			ast.Negative: verdictOK,
		},
		ast.Unsafe: {
			ast.Positive: verdictOK,
			ast.Negative: verdictUnsafeNegative,
		},
	},
}

func init() {
	if err := validateRules(); err != nil {
		panic(err)
	}
}

func validateRules() error {
	for ts := range traitStateCount {
		for u := range ast.UnsafetyCount {
			for p := range ast.PolarityCount {
				v := rules[ts][u][p]
				if v == verdictUnset || v >= verdictCount {
					return fmt.Errorf("coherence: no rule for trait state %d, %s impl, %s polarity", ts, u, p)
				}
			}
		}
	}
	return nil
}

// evaluate — чистая функция таблицы.
func evaluate(trait *symbols.TraitDef, unsafety ast.Unsafety, polarity ast.Polarity) verdict {
	return rules[stateOf(trait)][unsafety][polarity]
}
