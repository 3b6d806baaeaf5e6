package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

func TestProgressReporter_DisabledIgnoresUpdates(t *testing.T) {
	var buf bytes.Buffer
	p := &progressReporter{out: &buf}

	p.update(domain.IngestProgress{Stage: domain.StageEmbedding, Current: 1, Total: 4})

	assert.Nil(t, p.bar)
	assert.Empty(t, buf.String())
}

func TestProgressReporter_EnableNeedsTerminal(t *testing.T) {
	p := &progressReporter{out: new(bytes.Buffer)}

	p.enable()

	assert.False(t, p.enabled)
}

func TestProgressReporter_BarPerStage(t *testing.T) {
	var buf bytes.Buffer
	p := &progressReporter{out: &buf, enabled: true}

	p.update(domain.IngestProgress{Stage: domain.StageLoading})
	assert.Nil(t, p.bar, "zero total is skipped")

	p.update(domain.IngestProgress{Stage: domain.StageChunking, Current: 1, Total: 3})
	assert.NotNil(t, p.bar)
	assert.Equal(t, domain.StageChunking, p.stage)

	p.update(domain.IngestProgress{Stage: domain.StageEmbedding, Current: 1, Total: 2})
	assert.Equal(t, domain.StageEmbedding, p.stage)

	p.update(domain.IngestProgress{Stage: domain.StageEmbedding, Current: 2, Total: 2})
	assert.Nil(t, p.bar, "bar finishes at total")

	p.disable()
	assert.False(t, p.enabled)
}

func TestStageLabel(t *testing.T) {
	assert.Contains(t, stageLabel(domain.StageEmbedding), "Embedding")
	assert.Equal(t, "custom", stageLabel(domain.IngestStage("custom")))
}
