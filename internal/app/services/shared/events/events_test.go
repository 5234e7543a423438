package events

import (
	"context"
	"errors"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp091.Publishing
	err      error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "fhir.patient.create", RoutingKey(constvars.ResourcePatient, constvars.AuditActionCreate))
	assert.Equal(t, "fhir.medicationrequest.delete", RoutingKey(constvars.ResourceMedicationRequest, constvars.AuditActionDelete))
}

func TestNotifierPublishesEvent(t *testing.T) {
	ch := &fakeChannel{}
	publisher := &rabbitMQPublisher{Channel: ch, Exchange: "telehealth.fhir"}
	occurredAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	err := NewNotifier(publisher, zap.NewNop()).ResourceChanged(context.Background(), &models.ResourceChange{
		ResourceType: constvars.ResourceAppointment,
		ResourceID:   "mock-appointment-2",
		Action:       constvars.AuditActionUpdate,
		UserID:       "user-9",
		OccurredAt:   occurredAt,
	})
	require.NoError(t, err)

	assert.Equal(t, "telehealth.fhir", ch.exchange)
	assert.Equal(t, "fhir.appointment.update", ch.key)
	assert.Equal(t, constvars.MIMEApplicationJSON, ch.msg.ContentType)
	assert.Equal(t, amqp091.Persistent, ch.msg.DeliveryMode)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(ch.msg.Body, &event))
	assert.Equal(t, "Appointment", event["resourceType"])
	assert.Equal(t, "mock-appointment-2", event["resourceId"])
	assert.Equal(t, "update", event["action"])
	assert.Equal(t, "2024-03-01T10:00:00Z", event["occurredAt"])
	assert.NotContains(t, event, "userId")
}

func TestPublishWrapsBrokerError(t *testing.T) {
	brokerErr := errors.New("channel closed")
	publisher := &rabbitMQPublisher{Channel: &fakeChannel{err: brokerErr}, Exchange: "telehealth.fhir"}

	err := publisher.Publish(context.Background(), "fhir.patient.create", map[string]string{"a": "b"})

	customErr, ok := exceptions.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, constvars.StatusInternalServerError, customErr.StatusCode)
	assert.ErrorIs(t, err, brokerErr)
}
