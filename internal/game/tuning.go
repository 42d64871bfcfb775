package game

// ThresholdOverrides carries optional touchdown tuning. Nil fields keep the
// base value. It is the shape of the "touchdown" block in world config files
// and replay scenarios.
type ThresholdOverrides struct {
	SafeVertical      *float64 `json:"safeVertical" yaml:"safe_vertical"`
	SafeHorizontal    *float64 `json:"safeHorizontal" yaml:"safe_horizontal"`
	SafeTilt          *float64 `json:"safeTilt" yaml:"safe_tilt"`
	DestroyVertical   *float64 `json:"destroyVertical" yaml:"destroy_vertical"`
	DestroyHorizontal *float64 `json:"destroyHorizontal" yaml:"destroy_horizontal"`
	DestroyMagnitude  *float64 `json:"destroyMagnitude" yaml:"destroy_magnitude"`
	UprightLimit      *float64 `json:"uprightLimit" yaml:"upright_limit"`
	SettleSeconds     *float64 `json:"settleSeconds" yaml:"settle_seconds"`
}

// Apply merges o onto base and sanitizes the result.
func (o *ThresholdOverrides) Apply(base TouchdownThresholds) TouchdownThresholds {
	if o == nil {
		return SanitizeTouchdownThresholds(base)
	}
	set := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	set(&base.SafeVertical, o.SafeVertical)
	set(&base.SafeHorizontal, o.SafeHorizontal)
	set(&base.SafeTilt, o.SafeTilt)
	set(&base.DestroyVertical, o.DestroyVertical)
	set(&base.DestroyHorizontal, o.DestroyHorizontal)
	set(&base.DestroyMagnitude, o.DestroyMagnitude)
	set(&base.UprightLimit, o.UprightLimit)
	set(&base.SettleSeconds, o.SettleSeconds)
	return SanitizeTouchdownThresholds(base)
}
