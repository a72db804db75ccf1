//go:build unit

package runtime

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests in this file mutate process-wide state and must not run in parallel.

func TestReportPanicToErrorService_Development(t *testing.T) {
	reporter := &captureReporter{}

	SetErrorReporter(reporter)
	SetProductionMode(false)

	t.Cleanup(func() { SetErrorReporter(nil) })

	reportPanicToErrorService(context.Background(), "bad digest", []byte("stack"), "mesh", "modify")

	require.Len(t, reporter.errs, 1)
	assert.Equal(t, "bad digest", reporter.errs[0].Error())
	assert.Equal(t, "mesh", reporter.tags[0]["component"])
	assert.Equal(t, "modify", reporter.tags[0]["goroutine_name"])
	assert.Equal(t, "stack", reporter.tags[0]["stack_trace"])
}

func TestReportPanicToErrorService_ProductionRedacts(t *testing.T) {
	reporter := &captureReporter{}

	SetErrorReporter(reporter)
	SetProductionMode(true)

	t.Cleanup(func() {
		SetErrorReporter(nil)
		SetProductionMode(false)
	})

	reportPanicToErrorService(context.Background(), "secret", []byte("stack"), "mesh", "modify")

	require.Len(t, reporter.errs, 1)
	assert.Equal(t, redactedPanicMsg, reporter.errs[0].Error())
	assert.NotContains(t, reporter.tags[0], "stack_trace")
}

func TestReportPanicToErrorService_TruncatesStack(t *testing.T) {
	reporter := &captureReporter{}

	SetErrorReporter(reporter)
	SetProductionMode(false)

	t.Cleanup(func() { SetErrorReporter(nil) })

	reportPanicToErrorService(context.Background(), "x", []byte(strings.Repeat("s", maxReportedStack*2)), "c", "n")

	require.Len(t, reporter.tags, 1)
	assert.True(t, strings.HasSuffix(reporter.tags[0]["stack_trace"], "...[truncated]"))
}

func TestReportPanicToErrorService_NoReporter(t *testing.T) {
	SetErrorReporter(nil)

	assert.NotPanics(t, func() {
		reportPanicToErrorService(context.Background(), "x", nil, "c", "n")
	})
}

func TestToPanicError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errBoom, toPanicError(errBoom, false))
	assert.Equal(t, "plain", toPanicError("plain", false).Error())
	assert.Equal(t, "panic: 42", toPanicError(42, false).Error())
	assert.Equal(t, redactedPanicMsg, toPanicError(errBoom, true).Error())
}

func TestFormatPanicValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<nil>", formatPanicValue(nil))
	assert.Equal(t, "s", formatPanicValue("s"))
	assert.Equal(t, "boom", formatPanicValue(errBoom))
	assert.Equal(t, "[1 2]", formatPanicValue([]int{1, 2}))
}
