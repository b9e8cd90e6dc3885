package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	assert := assert.New(t)

	t.Run("forward transitions", func(t *testing.T) {
		assert.Equal(StatusDelivered, NextStatus(StatusSent, EventReceiverOnline))
		assert.Equal(StatusDelivered, NextStatus(StatusSent, EventDeliveredReceipt))
		assert.Equal(StatusRead, NextStatus(StatusSent, EventReadReceipt))
		assert.Equal(StatusRead, NextStatus(StatusDelivered, EventReadReceipt))
	})

	t.Run("idempotent no-ops", func(t *testing.T) {
		assert.Equal(StatusDelivered, NextStatus(StatusDelivered, EventDeliveredReceipt))
		assert.Equal(StatusDelivered, NextStatus(StatusDelivered, EventReceiverOnline))
		assert.Equal(StatusRead, NextStatus(StatusRead, EventReadReceipt))
	})

	t.Run("read never regresses", func(t *testing.T) {
		for _, event := range []DeliveryEvent{EventReceiverOnline, EventDeliveredReceipt, EventReadReceipt} {
			assert.Equal(StatusRead, NextStatus(StatusRead, event))
		}
	})

	t.Run("unknown pairs are no-ops", func(t *testing.T) {
		assert.Equal(StatusSent, NextStatus(StatusSent, DeliveryEvent("bogus")))
		assert.Equal(DeliveryStatus("weird"), NextStatus(DeliveryStatus("weird"), EventReadReceipt))
	})
}
