package main

import (
	"testing"

	"surveyassistant/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptsComplete(t *testing.T) {
	first := complete(scripts[0], logger.NewNop())
	require.NotNil(t, first.Document.Meta.CompletedAt)
	assert.Equal(t, 12, first.Document.Meta.Progress.Answered)
	assert.Len(t, first.Document.MedicationsAndSupplements.Medications, 1)
	assert.Len(t, first.Document.MedicationsAndSupplements.Supplements, 1)
	assert.Equal(t, []string{"Traditional Chinese Medicine", "Ayurveda"}, first.Document.Miscellaneous.CamFields)

	second := complete(scripts[1], logger.NewNop())
	assert.Equal(t, 12, second.Document.Meta.Progress.Answered)
	assert.Equal(t, []string{"None"}, second.Document.Miscellaneous.WearableDevices)

	third := complete(scripts[2], logger.NewNop())
	assert.Equal(t, 6, third.Document.Meta.Progress.Answered)
	assert.NotEqual(t, first.SessionID, third.SessionID)
}
