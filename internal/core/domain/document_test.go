package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDocument_Validate(t *testing.T) {
	t.Run("valid document", func(t *testing.T) {
		doc := Document{
			Content: "Revenue grew 12% year over year.",
			Entity:  "NVDA",
			Year:    "2025",
			Quarter: "Q1",
		}
		assert.NoError(t, doc.Validate())
	})

	t.Run("empty content rejected", func(t *testing.T) {
		doc := Document{Content: "   ", Entity: "NVDA"}
		err := doc.Validate()
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("missing entity rejected", func(t *testing.T) {
		doc := Document{Content: "some text"}
		err := doc.Validate()
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestChunkMetadata_Period(t *testing.T) {
	m := ChunkMetadata{Year: "2025", Quarter: "Q2"}
	assert.Equal(t, "2025 Q2", m.Period())

	empty := ChunkMetadata{}
	assert.Equal(t, "", empty.Period())
}

func TestQueryFilters_Fields(t *testing.T) {
	t.Run("sentinel and empty values skipped", func(t *testing.T) {
		f := QueryFilters{Entity: "ACME", Year: MatchAll, Quarter: ""}
		fields := f.Fields()
		assert.Equal(t, map[string]string{"entity": "ACME"}, fields)
		assert.True(t, f.Active())
	})

	t.Run("all sentinel means inactive", func(t *testing.T) {
		f := QueryFilters{Entity: MatchAll, Year: MatchAll}
		assert.Empty(t, f.Fields())
		assert.False(t, f.Active())
	})
}

func TestEmptyStats(t *testing.T) {
	s := EmptyStats()
	assert.Zero(t, s.TotalChunks)
	assert.Zero(t, s.UniqueEntities)
	assert.Equal(t, "N/A", s.LatestPeriod)
	assert.Zero(t, s.DaysSinceUpdate)
	assert.NotNil(t, s.EntityDistribution)
}

func TestChunkMetadata_Fields(t *testing.T) {
	now := time.Now()
	m := ChunkMetadata{
		Entity:        "MSFT",
		Year:          "2024",
		Quarter:       "Q4",
		Date:          "2024-10-30",
		Source:        "sec_filing",
		ChunkIndex:    2,
		TotalChunks:   5,
		IngestedAt:    now,
		ContentLength: 512,
		Extra:         map[string]string{"sector": "AI Software"},
	}

	assert.Equal(t, 2, m.ChunkIndex)
	assert.Equal(t, 5, m.TotalChunks)
	assert.Equal(t, now, m.IngestedAt)
	assert.Equal(t, "AI Software", m.Extra["sector"])
}
