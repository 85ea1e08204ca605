package game

import "time"

// DefaultRevealDuration is how long a peeked card stays face-up.
const DefaultRevealDuration = 5 * time.Second

// RevealWindows holds, per side and slot, the time until which the slot is shown face-up to the human.
// Only the rendering side reads these; no engine operation depends on them.
type RevealWindows struct {
	until [2][BoardSize]time.Time
}

// Reveal shows p's slot until now+d.
func (w *RevealWindows) Reveal(p PlayerID, slot int, now time.Time, d time.Duration) {
	if !ValidSlot(slot) {
		return
	}
	w.until[p][slot] = now.Add(d)
}

// Visible reports whether p's slot is inside its reveal window at now.
func (w *RevealWindows) Visible(p PlayerID, slot int, now time.Time) bool {
	if !ValidSlot(slot) {
		return false
	}
	return now.Before(w.until[p][slot])
}

// Until returns the expiry of p's slot window (zero if never revealed).
func (w *RevealWindows) Until(p PlayerID, slot int) time.Time {
	if !ValidSlot(slot) {
		return time.Time{}
	}
	return w.until[p][slot]
}

// Reset hides everything.
func (w *RevealWindows) Reset() {
	w.until = [2][BoardSize]time.Time{}
}
