package matcher

import (
	"github.com/nexusmarket/matcher-core/pkg/models"
)

// ValidatorConfig holds the per-dimension thresholds a session must meet to
// be considered valid.
type ValidatorConfig struct {
	MinLabelsRequired       int
	MinTagsRequired         int
	MinIntegrationsRequired int
}

// DefaultValidatorConfig returns the thresholds named by the design:
// 2 labels, 1 tag, 1 integration.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		MinLabelsRequired:       2,
		MinTagsRequired:         1,
		MinIntegrationsRequired: 1,
	}
}

// Validator computes how many more values are needed per dimension and
// whether the accumulated state already clears every threshold.
type Validator interface {
	Validate(accumulated models.Accumulated) models.Missing
}

type validator struct {
	cfg ValidatorConfig
}

// NewValidator builds a Validator with the given thresholds.
func NewValidator(cfg ValidatorConfig) Validator {
	return &validator{cfg: cfg}
}

var _ Validator = (*validator)(nil)

func (v *validator) Validate(accumulated models.Accumulated) models.Missing {
	return models.Missing{
		LabelsNeeded:       need(v.cfg.MinLabelsRequired, len(accumulated.Labels)),
		TagsNeeded:         need(v.cfg.MinTagsRequired, len(accumulated.Tags)),
		IntegrationsNeeded: need(v.cfg.MinIntegrationsRequired, len(accumulated.Integrations)),
	}
}

// IsValid reports whether missing has no outstanding requirement in any
// dimension.
func IsValid(missing models.Missing) bool {
	return missing.LabelsNeeded == 0 && missing.TagsNeeded == 0 && missing.IntegrationsNeeded == 0
}

func need(required, have int) int {
	if required > have {
		return required - have
	}
	return 0
}
