package eventbus

import (
	"log/slog"
	"testing"

	"github.com/gamewallet/wallet/pkg/domain/events"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSASLMechanism(t *testing.T) {
	t.Run("disabled without credentials", func(t *testing.T) {
		m, err := saslMechanism(kafkaOptions{})
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("plain with both credentials", func(t *testing.T) {
		var o kafkaOptions
		WithSASLPlain(" wallet ", "secret")(&o)
		m, err := saslMechanism(o)
		require.NoError(t, err)
		assert.Equal(t, plain.Mechanism{Username: "wallet", Password: "secret"}, m)
	})

	t.Run("rejects partial credentials", func(t *testing.T) {
		_, err := saslMechanism(kafkaOptions{saslUsername: "wallet"})
		assert.Error(t, err)
	})
}

func TestNewWithKafka_RejectsPartialSASL(t *testing.T) {
	_, err := NewWithKafka([]string{"localhost:9092"}, "wallet.settlement", "wallet", events.Types,
		slog.Default(), WithSASLPlain("", "secret"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sasl")
}

func TestNewWithKafka_RequiresTopic(t *testing.T) {
	_, err := NewWithKafka([]string{"localhost:9092"}, "", "wallet", events.Types, slog.Default())
	assert.Error(t, err)
}
