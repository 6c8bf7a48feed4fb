// Package engine bridges pipeline stages to a backing computation engine.
//
// The pipeline layer only knows the Stage, Transformer and Estimator
// contracts; engines plug in underneath through the NativeTransformer and
// NativeEstimator handles. Before every native call the bridge pushes the
// stage's parameter bag into the engine, translating parameter names to the
// engine's field naming scheme.
package engine

import (
	"strings"
	"unicode"
)

// FieldName translates a camelCase parameter name to the engine's field
// naming scheme: a separator is inserted before every uppercase letter that
// is not at the start of the name and the whole name is uppercased, so
// "maxIter" becomes "MAX_ITER". Consecutive capitals each get their own
// separator ("useL2" becomes "USE_L2" but "vectorDF" becomes "VECTOR_D_F"),
// matching plain insertion before every interior capital.
func FieldName(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)

	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}

		b.WriteRune(unicode.ToUpper(r))
	}

	return b.String()
}
