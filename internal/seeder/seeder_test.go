package seeder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherhub-io/gatherhub/internal/dedup"
	"github.com/gatherhub-io/gatherhub/internal/normalizer"
	"github.com/gatherhub-io/gatherhub/internal/seeder"
)

func TestRawEvents_SurviveNormalization(t *testing.T) {
	gen := seeder.NewGenerator(1)
	raw := gen.RawEvents(50)
	require.Len(t, raw, 50)

	events, rejected := normalizer.NormalizeBatch(raw)
	assert.Zero(t, rejected, "generated events must pass normalization")
	assert.Len(t, events, 50)

	for _, e := range events {
		assert.NotEmpty(t, e.Title)
		assert.NotEmpty(t, e.Link)
		assert.NotEmpty(t, e.Source)
		assert.NotNil(t, e.DateKey, "generated dates parse")
	}
}

func TestRawEvents_DistinctIdentityKeys(t *testing.T) {
	gen := seeder.NewGenerator(1)
	events, _ := normalizer.NormalizeBatch(gen.RawEvents(100))
	assert.Len(t, dedup.Batch(events), 100, "links are unique per generated event")
}

func TestRawEvents_DeterministicWithSeed(t *testing.T) {
	a := seeder.NewGenerator(7).RawEvents(10)
	b := seeder.NewGenerator(7).RawEvents(10)
	assert.Equal(t, a, b)
}
