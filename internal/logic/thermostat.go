package logic

// Next evaluates the hysteresis transition predicate for the given mode.
// It returns the mode to switch to and true if a transition fires.
//
//	OFF -> ON  when outside <= OutsideLow  or inside <= InsideLow
//	ON  -> OFF when outside >= OutsideHigh or inside >= InsideHigh
//
// Means strictly inside the band never fire.
func Next(mode Mode, m Means, sp Setpoints) (Mode, bool) {
	switch mode {
	case ModeOff:
		if m.OutsideTemp <= sp.OutsideLow || m.InsideTemp <= sp.InsideLow {
			return ModeOn, true
		}
	case ModeOn:
		if m.OutsideTemp >= sp.OutsideHigh || m.InsideTemp >= sp.InsideHigh {
			return ModeOff, true
		}
	}
	return mode, false
}
