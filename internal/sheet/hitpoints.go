package sheet

import "math"

// Clamp bounds Current to [0, Max] and Temporary to >= 0.
func (hp HitPoints) Clamp() HitPoints {
	hp.Current = max(0, min(hp.Current, hp.Max))
	hp.Temporary = max(0, hp.Temporary)
	return hp
}

// Damage lowers current hit points by amount, stopping at 0.
// Temporary hit points are tracked separately and left untouched.
func (hp HitPoints) Damage(amount int) HitPoints {
	hp.Current -= amount
	return hp.Clamp()
}

// Heal raises current hit points by amount, stopping at Max.
func (hp HitPoints) Heal(amount int) HitPoints {
	hp = hp.Clamp()
	if amount >= hp.Max-hp.Current {
		hp.Current = hp.Max
		return hp
	}
	hp.Current += amount
	return hp.Clamp()
}

// AdjustTemp adds delta to temporary hit points, stopping at 0.
func (hp HitPoints) AdjustTemp(delta int) HitPoints {
	hp = hp.Clamp()
	if delta > 0 && hp.Temporary > math.MaxInt-delta {
		hp.Temporary = math.MaxInt
		return hp
	}
	hp.Temporary += delta
	return hp.Clamp()
}
