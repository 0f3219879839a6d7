package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusForScore(t *testing.T) {
	tests := []struct {
		score int
		want  Status
	}{
		{100, StatusExcellent},
		{85, StatusExcellent},
		{84, StatusGood},
		{70, StatusGood},
		{69, StatusCaution},
		{50, StatusCaution},
		{49, StatusPoor},
		{0, StatusPoor},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusForScore(tt.score), "score %d", tt.score)
	}
}

func TestStatusFor_LowerIsBetter(t *testing.T) {
	spec, ok := ContractV1.Spec(KeyNegativeTone)
	assert.True(t, ok)

	assert.Equal(t, StatusExcellent, spec.StatusFor(0))
	assert.Equal(t, StatusExcellent, spec.StatusFor(15))
	assert.Equal(t, StatusGood, spec.StatusFor(30))
	assert.Equal(t, StatusCaution, spec.StatusFor(50))
	assert.Equal(t, StatusPoor, spec.StatusFor(51))
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, ClampScore(-5))
	assert.Equal(t, 42, ClampScore(42))
	assert.Equal(t, 100, ClampScore(250))
}
