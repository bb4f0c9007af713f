package ir

// JBlock is one entry of a TranslationUnit's jump-block stack: the
// loop/label scope that break/continue resolve against, plus the
// count of pending cleanup ("pops") operations a break/continue out of
// it must emit before jumping (spec §3.6 "deferred-cleanup bookkeeping").
type JBlock struct {
	Label string
	Loop  bool

	// Start is the continue target (a loop's header block); End is the
	// break target, patched in once the loop's exit block exists.
	Start *BasicBlock
	End   *BasicBlock

	// Pops is how many sync-keys/exception handlers must be unwound
	// when a break or continue jumps out of this block (e.g. leaving a
	// `sync` block mid-loop).
	Pops uint16

	prev *JBlock
}
