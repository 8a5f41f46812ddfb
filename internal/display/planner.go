package display

// Plan is the target mode computed for one request.
type Plan struct {
	Target     Mode
	Mask       FieldMask
	WillChange bool
}

// PlanMode merges desired onto current. Only set fields reach the target and
// the mask; WillChange is true when a masked field differs from current.
func PlanMode(current Mode, desired DesiredMode) (Plan, error) {
	if err := desired.Validate(); err != nil {
		return Plan{}, err
	}

	p := Plan{Target: current}
	if desired.HasResolution() {
		p.Target.Width = desired.Width
		p.Target.Height = desired.Height
		p.Mask |= FieldResolution
	}
	if desired.HasRefresh() {
		p.Target.RefreshHz = desired.RefreshHz
		p.Mask |= FieldRefresh
	}
	if desired.HasOrientation() {
		p.Target.Orientation = desired.Orientation
		p.Mask |= FieldOrientation
	}

	p.WillChange = p.Mask != 0 && !p.Mask.Matches(p.Target, current)
	return p, nil
}
