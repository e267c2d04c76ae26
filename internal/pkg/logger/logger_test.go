package logger

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew_TagsEntriesWithAppName(t *testing.T) {
	var buf bytes.Buffer
	l := newWithOutput("tasks", "debug", &buf)

	l.Info("hello")

	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.Contains(t, buf.String(), "app=tasks")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNew_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newWithOutput("tasks", "chatty", &buf)

	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.Contains(t, buf.String(), "invalid LOG_LEVEL")
}
