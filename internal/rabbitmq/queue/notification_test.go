package queue

import (
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
)

func TestAmqpDelivery_Attempts(t *testing.T) {
	tests := []struct {
		name    string
		headers amqp.Table
		want    int
	}{
		{
			name: "first delivery",
			want: 0,
		},
		{
			name:    "no x-death",
			headers: amqp.Table{"foo": "bar"},
			want:    0,
		},
		{
			name: "one retry round trip",
			headers: amqp.Table{
				"x-death": []interface{}{
					amqp.Table{"queue": RetryQueueName, "count": int64(1)},
				},
			},
			want: 1,
		},
		{
			name: "counts only the retry queue",
			headers: amqp.Table{
				"x-death": []interface{}{
					amqp.Table{"queue": RetryQueueName, "count": int64(2)},
					amqp.Table{"queue": MainQueueName, "count": int64(2)},
				},
			},
			want: 2,
		},
		{
			name: "malformed header entries ignored",
			headers: amqp.Table{
				"x-death": []interface{}{"garbage"},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &amqpDelivery{msg: amqp.Delivery{Headers: tt.headers}}
			assert.Equal(t, tt.want, d.Attempts())
		})
	}
}
