package calibrator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlogLogger(t *testing.T) {
	var info, errs bytes.Buffer
	l := NewSlogLogger(&info, &errs)

	l.Info("Pedestals read", "pedestals")
	l.Error("error opening file")

	assert.Contains(t, info.String(), "[pedestals] Pedestals read")
	assert.NotContains(t, info.String(), "module=")
	assert.Contains(t, errs.String(), `"msg":"error opening file"`)
	assert.Contains(t, errs.String(), `"level":"ERROR"`)
}
