package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexusmarket/matcher-core/pkg/models"
)

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(DefaultValidatorConfig())

	tests := []struct {
		name        string
		accumulated models.Accumulated
		expected    models.Missing
		wantValid   bool
	}{
		{
			name:        "nothing accumulated",
			accumulated: models.Accumulated{},
			expected:    models.Missing{LabelsNeeded: 2, TagsNeeded: 1, IntegrationsNeeded: 1},
			wantValid:   false,
		},
		{
			name: "exactly at thresholds",
			accumulated: models.Accumulated{
				Labels:       []string{"CRM", "Sales"},
				Tags:         []string{"B2B"},
				Integrations: []string{"Stripe"},
			},
			expected:  models.Missing{},
			wantValid: true,
		},
		{
			name: "above thresholds still valid",
			accumulated: models.Accumulated{
				Labels:       []string{"CRM", "Sales", "Analytics"},
				Tags:         []string{"B2B", "Retail"},
				Integrations: []string{"Stripe", "Zapier"},
			},
			expected:  models.Missing{},
			wantValid: true,
		},
		{
			name: "only labels missing",
			accumulated: models.Accumulated{
				Labels:       []string{"CRM"},
				Tags:         []string{"B2B"},
				Integrations: []string{"Stripe"},
			},
			expected:  models.Missing{LabelsNeeded: 1},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			missing := v.Validate(tt.accumulated)
			assert.Equal(t, tt.expected, missing)
			assert.Equal(t, tt.wantValid, IsValid(missing))
		})
	}
}
