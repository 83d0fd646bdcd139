package tracing

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func TestSafeAttributesTruncatesStrings(t *testing.T) {
	long := strings.Repeat("x", maxAttributeLength+10)
	attrs := SafeAttributes(attribute.String("k", long), attribute.Int("n", 3))

	require.Len(t, attrs, 2)
	assert.Len(t, attrs[0].Value.AsString(), maxAttributeLength)
	assert.Equal(t, int64(3), attrs[1].Value.AsInt64())
}

func TestSafeErrorKeepsTopLevelMessage(t *testing.T) {
	err := fmt.Errorf("insert journal line: %w", errors.New("pq: amount=12.00"))
	assert.EqualError(t, SafeError(err), "insert journal line")
	assert.Nil(t, SafeError(nil))
}

func TestNewProviderDisabled(t *testing.T) {
	provider, err := NewProvider(nil, Config{ServiceName: "bookkeeper"}, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, provider)
}
