package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(MatchedPairs.WithLabelValues("exact"))
	MatchedPairs.WithLabelValues("exact").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(MatchedPairs.WithLabelValues("exact")))

	before = testutil.ToFloat64(SemanticCalls.WithLabelValues("fallback"))
	SemanticCalls.WithLabelValues("fallback").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(SemanticCalls.WithLabelValues("fallback")))

	before = testutil.ToFloat64(DuplicatesMerged)
	DuplicatesMerged.Add(3)
	assert.Equal(t, before+3, testutil.ToFloat64(DuplicatesMerged))
}
