package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dandantas/physicsai/internal/model"
)

func completeResultJSON() json.RawMessage {
	return json.RawMessage(`{
		"problem_type": "projectile_motion",
		"parameters": {"v0": {"value": 20, "unit": "m/s", "symbol": "v0"}},
		"equations": [{"label": "Range", "formula": "R = v0^2*sin(2th)/g"}],
		"explanation": [{"step": 1, "text": "Decompose the initial velocity."}],
		"key_results": {"range": {"value": 40.77, "unit": "m"}},
		"p5js_code": "function setup() {}",
		"manim_code": "from manim import *"
	}`)
}

func TestMissingFieldsComplete(t *testing.T) {
	missing, err := MissingFields(completeResultJSON(), model.RequiredResultFields)
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestMissingFieldsNamesExactlyTheAbsentOnes(t *testing.T) {
	raw := json.RawMessage(`{
		"problem_type": "pendulum",
		"parameters": {},
		"explanation": [],
		"key_results": {},
		"p5js_code": "function setup() {}"
	}`)

	missing, err := MissingFields(raw, model.RequiredResultFields)
	require.NoError(t, err)
	assert.Equal(t, []string{"equations", "manim_code"}, missing)
}

func TestMissingFieldsAllAbsent(t *testing.T) {
	missing, err := MissingFields(json.RawMessage(`{}`), model.RequiredResultFields)
	require.NoError(t, err)
	assert.Equal(t, model.RequiredResultFields, missing)
}

func TestMissingFieldsInvalidJSON(t *testing.T) {
	_, err := MissingFields(json.RawMessage(`{`), model.RequiredResultFields)
	assert.Error(t, err)
}
