package service

import (
	"fmt"

	"viralcut/config"
	"viralcut/internal/types"
	apperrors "viralcut/pkg/errors"
)

// Admission is the tier policy applied to an accepted job.
type Admission struct {
	QualityTier string
	MaxClips    int
	MaxDuration float64
}

// EvaluateAdmission applies the tier policy: premium accounts get longer
// videos, more clips and the high quality render profile. A video over the
// tier limit is rejected synchronously and never becomes a job. A positive
// limitOverride replaces the tier's duration limit (account-level quota).
func EvaluateAdmission(isPremium bool, duration, limitOverride float64) (*Admission, error) {
	pipeline := config.Conf.Pipeline

	adm := &Admission{}
	if isPremium {
		adm.QualityTier = types.QualityTierPremium
		adm.MaxClips = pipeline.PremiumMaxClips
		adm.MaxDuration = pipeline.PremiumMaxDuration
	} else {
		adm.QualityTier = types.QualityTierStandard
		adm.MaxClips = pipeline.FreeMaxClips
		adm.MaxDuration = pipeline.FreeMaxDuration
	}
	if adm.MaxClips > types.HardMaxClips {
		adm.MaxClips = types.HardMaxClips
	}
	if adm.MaxClips < 1 {
		adm.MaxClips = 1
	}
	if limitOverride > 0 {
		adm.MaxDuration = limitOverride
	}

	if duration > adm.MaxDuration {
		return nil, apperrors.WrapWithDetail(apperrors.ErrDurationExceeded, nil,
			fmt.Sprintf("duration %.1fs exceeds %s tier limit %.0fs", duration, adm.QualityTier, adm.MaxDuration))
	}
	return adm, nil
}
