package validate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

func obs(id, pillar, confidence string) model.Observation {
	return model.Observation{
		Provenance: model.Provenance{RecordID: id, Confidence: confidence},
		Pillar:     model.Pillar(pillar),
		Value:      model.Float(1),
	}
}

func TestCheckObservation(t *testing.T) {
	v := New(model.DefaultConfig().Validation)

	tests := []struct {
		name   string
		obs    model.Observation
		fields []string
	}{
		{"valid", obs("A", "access", "high"), nil},
		{"case insensitive", obs("B", "Usage", "MEDIUM"), nil},
		{"null values pass", obs("C", "", ""), nil},
		{"bad pillar", obs("D", "acess", "low"), []string{model.ColPillar}},
		{"both bad", obs("E", "savings", "certain"), []string{model.ColConfidence, model.ColPillar}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := v.CheckObservation(tt.obs)
			assert.Equal(t, tt.fields, Fields(errs))
		})
	}
}

func TestCheckImpactLink(t *testing.T) {
	v := New(model.DefaultConfig().Validation)

	link := model.ImpactLink{
		Provenance:      model.Provenance{RecordID: "IMP1", Confidence: "medium"},
		Pillar:          model.PillarAccess,
		ImpactDirection: "sideways",
		LagMonths:       model.Int(-3),
	}

	errs := v.CheckImpactLink(link)

	require.Len(t, errs, 2)
	assert.Equal(t, model.ColImpactDirection, errs[0].Field)
	assert.Equal(t, []string{"positive", "negative"}, errs[0].Allowed)
	assert.Equal(t, model.ColLagMonths, errs[1].Field)
	assert.Equal(t, "-3", errs[1].Value)
	assert.Contains(t, errs[0].Error(), `record IMP1: impact_direction "sideways"`)

	link.ImpactDirection = "negative"
	link.LagMonths = model.Int(0)
	assert.Empty(t, v.CheckImpactLink(link))
}

func TestObservations_StrictPolicy(t *testing.T) {
	v := New(model.DefaultConfig().Validation)
	require.True(t, v.policy.Strict)

	kept, errs, err := v.Observations([]model.Observation{obs("A", "access", "high"), obs("B", "acess", "high")})

	require.Error(t, err)
	assert.Nil(t, kept)
	require.Len(t, errs, 1)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "B", verr.RecordID)
}

func TestObservations_LenientPolicy(t *testing.T) {
	cfg := model.DefaultConfig().Validation
	cfg.Strict = false
	v := New(cfg)

	kept, errs, err := v.Observations([]model.Observation{obs("A", "access", "high"), obs("B", "acess", "high")})

	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "A", kept[0].RecordID)
	require.Len(t, errs, 1)
	assert.Equal(t, "acess", errs[0].Value)
}

func TestImpactLinks_AllValid(t *testing.T) {
	v := New(model.DefaultConfig().Validation)
	links := []model.ImpactLink{{ImpactDirection: "positive", LagMonths: model.Int(12)}}

	kept, errs, err := v.ImpactLinks(links)

	require.NoError(t, err)
	assert.Len(t, kept, 1)
	assert.Empty(t, errs)
}

func TestNew_ConfiguredEnums(t *testing.T) {
	v := New(model.ValidationConfig{Pillars: []string{"access", "usage", "quality"}})

	assert.Empty(t, v.CheckObservation(obs("Q", "quality", "high")))
	assert.False(t, v.policy.Strict)
}

func TestJoin_Empty(t *testing.T) {
	assert.NoError(t, Join(nil))
}

func TestViolations(t *testing.T) {
	a := &ValidationError{RecordID: "A", Field: model.ColPillar, Value: "x"}
	b := &ValidationError{RecordID: "B", Field: model.ColConfidence, Value: "y"}

	wrapped := fmt.Errorf("trends: %w", Join([]*ValidationError{a, b}))

	assert.Equal(t, []*ValidationError{a, b}, Violations(wrapped))
	assert.Equal(t, []*ValidationError{a}, Violations(a))
	assert.Nil(t, Violations(errors.New("other")))
	assert.Nil(t, Violations(nil))
}
