package object

// WeakRef is a handle obtained from Header.IncWeak. Upgrade reports false
// once the target's strong count has reached zero, even while the SideTable itself
// survives pending weak releases (spec §3.3).
type WeakRef struct {
	target *Header
	side   *SideTable
	static bool
}

// Upgrade attempts to obtain a new strong reference to the target,
// returning ok=false if the object has already been destroyed.
func (w *WeakRef) Upgrade() (ok bool) {
	if w.static {
		return true
	}
	if w.side == nil {
		return false
	}
	for {
		cur := w.side.strong.Load()
		if cur == 0 {
			return false
		}
		if w.side.strong.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// Close releases the weak reference, allowing the SideTable to be
// reclaimed once both counts reach zero.
func (w *WeakRef) Close() {
	if w.static || w.target == nil {
		return
	}
	w.target.DecWeak()
}
