package optimizer

import "github.com/zephyr-lang/zephyr/internal/ir"

// Optimize runs the passes appropriate to level over u's basic-block
// graph. Grounded on a CodeOptimizer::optimize fallthrough
// switch: HARD and MEDIUM both run constant folding and then fall
// through into jump threading; SOFT runs jump threading alone; NONE
// runs nothing.
func Optimize(u *ir.TranslationUnit, level Level) {
	if level >= LevelMedium {
		foldConstants(u)
	}
	if level >= LevelSoft {
		threadJumps(u)
	}
}
