package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfg2006/pipeline-analytics-api/internal/domain"
)

func TestBuildRequest(t *testing.T) {
	req, err := buildRequest("2024-01-01", "2024-03-31", "week", 8, domain.Filters{Owner: "ana"})
	require.NoError(t, err)

	assert.True(t, req.Period.Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, req.Period.End.Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, domain.BucketWeek, req.BucketSize)
	assert.Equal(t, 8, req.BucketCount)
	assert.Equal(t, "ana", req.Filters.Owner)

	_, err = buildRequest("2024-03-31", "2024-01-01", "", 0, domain.Filters{})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	_, err = buildRequest("01/01/2024", "2024-01-31", "", 0, domain.Filters{})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	_, err = buildRequest("2024-01-01", "2024-01-31", "year", 0, domain.Filters{})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)

	_, err = buildRequest("2024-01-01", "2024-01-31", "", 1000000000, domain.Filters{})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}
