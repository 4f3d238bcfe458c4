package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := newWithOutput("debug", "json", &buf)

	log.WithField("art_id", 3).Debug("blob removed")

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.Contains(t, buf.String(), `"art_id":3`)
	assert.Contains(t, buf.String(), `"msg":"blob removed"`)
}

func TestNewFallsBackToInfo(t *testing.T) {
	log := newWithOutput("loud", "text", &bytes.Buffer{})
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
