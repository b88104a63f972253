package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"

	mocks "github.com/aidanlowson/notify-dispatch/internal/mocks/dispatch"
	"github.com/aidanlowson/notify-dispatch/internal/model"
)

const testSender = "noreply@example.com"

func setupDispatcher(t *testing.T) (*Dispatcher, *mocks.MockrecordStore, *mocks.MockEmailSender, *mocks.MockSMSSender, *mocks.MockPushSender) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	store := mocks.NewMockrecordStore(ctrl)
	emailMock := mocks.NewMockEmailSender(ctrl)
	smsMock := mocks.NewMockSMSSender(ctrl)
	pushMock := mocks.NewMockPushSender(ctrl)

	d, err := New(store, Providers{Email: emailMock, SMS: smsMock, Push: pushMock}, Config{
		SenderIdentity: testSender,
		Strategy:       retry.Strategy{Attempts: 1, Delay: time.Millisecond},
	})
	require.NoError(t, err)

	return d, store, emailMock, smsMock, pushMock
}

// recordCapture collects records written during a batch, safe for the
// concurrent batch goroutines.
type recordCapture struct {
	mu      sync.Mutex
	records []model.NotificationRecord
}

func (c *recordCapture) add(_ context.Context, record model.NotificationRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record)
	return nil
}

func TestNew_MissingConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockrecordStore(ctrl)
	providers := Providers{
		Email: mocks.NewMockEmailSender(ctrl),
		SMS:   mocks.NewMockSMSSender(ctrl),
		Push:  mocks.NewMockPushSender(ctrl),
	}

	_, err := New(store, providers, Config{})
	assert.Error(t, err, "missing sender identity must prevent startup")

	_, err = New(store, Providers{Email: providers.Email, SMS: providers.SMS}, Config{SenderIdentity: testSender})
	assert.Error(t, err, "missing push provider must prevent startup")

	_, err = New(nil, providers, Config{SenderIdentity: testSender})
	assert.Error(t, err)
}

func TestProcessBatch_Email(t *testing.T) {
	d, store, emailMock, _, _ := setupDispatcher(t)

	capture := &recordCapture{}
	store.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).DoAndReturn(capture.add)
	emailMock.EXPECT().
		SendEmail(gomock.Any(), testSender, "a@b.com", "New Notification", "hi").
		Return(nil)

	body := []byte(`{"type":"email","userId":"u1","message":"hi","email":"a@b.com"}`)
	outcomes := d.ProcessBatch(context.Background(), [][]byte{body})

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusDispatched, outcomes[0].Status)
	assert.True(t, outcomes[0].Status.Ack())
	assert.NotEqual(t, uuid.Nil, outcomes[0].RecordID)

	require.Len(t, capture.records, 1)
	assert.Equal(t, "u1", capture.records[0].UserID)
	assert.Equal(t, model.TypeEmail, capture.records[0].Type)
	assert.NotEqual(t, uuid.Nil, capture.records[0].ID)
	assert.False(t, capture.records[0].CreatedAt.IsZero())
}

func TestProcessBatch_Malformed(t *testing.T) {
	d, _, _, _, _ := setupDispatcher(t)

	outcomes := d.ProcessBatch(context.Background(), [][]byte{[]byte(`{not json`)})

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSkippedMalformed, outcomes[0].Status)
	assert.True(t, outcomes[0].Status.Ack(), "malformed message is consumed, never retried")
}

func TestProcessBatch_EmptyObject(t *testing.T) {
	d, _, _, _, _ := setupDispatcher(t)

	outcomes := d.ProcessBatch(context.Background(), [][]byte{[]byte(`{}`)})

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSkippedInvalid, outcomes[0].Status)
	assert.True(t, outcomes[0].Status.Ack(), "invalid message is consumed, never retried")
}

func TestProcessBatch_UnrecognizedType(t *testing.T) {
	d, _, _, _, _ := setupDispatcher(t)

	body := []byte(`{"type":"fax","userId":"u1","message":"hi"}`)
	outcomes := d.ProcessBatch(context.Background(), [][]byte{body})

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusSkippedInvalid, outcomes[0].Status)
}

func TestProcessBatch_SMSWithoutNumber(t *testing.T) {
	d, store, _, smsMock, _ := setupDispatcher(t)

	store.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).Return(nil)
	smsMock.EXPECT().SendSMS(gomock.Any(), "", "hi").Return(errors.New("missing destination number"))

	body := []byte(`{"type":"sms","userId":"u2","message":"hi"}`)
	outcomes := d.ProcessBatch(context.Background(), [][]byte{body})

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusFailedChannel, outcomes[0].Status)
	assert.False(t, outcomes[0].Status.Ack(), "channel failure must trigger redelivery")
	assert.NotEqual(t, uuid.Nil, outcomes[0].RecordID, "record precedes the channel attempt")
}

func TestProcessBatch_Push(t *testing.T) {
	d, store, _, _, pushMock := setupDispatcher(t)

	store.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).Return(nil)
	pushMock.EXPECT().SendPush(gomock.Any(), "+1234567", "ping").Return(nil)

	body := []byte(`{"type":"push","userId":"u3","message":"ping","number":"+1234567"}`)
	outcomes := d.ProcessBatch(context.Background(), [][]byte{body})

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusDispatched, outcomes[0].Status)
}

func TestProcessBatch_PersistenceFailure(t *testing.T) {
	d, store, _, _, _ := setupDispatcher(t)

	store.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	body := []byte(`{"type":"email","userId":"u1","message":"hi","email":"a@b.com"}`)
	outcomes := d.ProcessBatch(context.Background(), [][]byte{body})

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusFailedPersistence, outcomes[0].Status)
	assert.False(t, outcomes[0].Status.Ack())
	// no channel call expected: the email mock has no expectations set
}

func TestProcessBatch_Isolation(t *testing.T) {
	d, store, emailMock, smsMock, pushMock := setupDispatcher(t)

	capture := &recordCapture{}
	store.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).DoAndReturn(capture.add).Times(3)

	emailMock.EXPECT().
		SendEmail(gomock.Any(), testSender, "a@b.com", "New Notification", "one").
		Return(nil)
	smsMock.EXPECT().
		SendSMS(gomock.Any(), "+111", "two").
		Return(errors.New("gateway timeout"))
	pushMock.EXPECT().
		SendPush(gomock.Any(), "+222", "three").
		Return(nil)

	bodies := [][]byte{
		[]byte(`{"type":"email","userId":"u1","message":"one","email":"a@b.com"}`),
		[]byte(`{"type":"sms","userId":"u2","message":"two","number":"+111"}`),
		[]byte(`{"type":"push","userId":"u3","message":"three","number":"+222"}`),
	}

	outcomes := d.ProcessBatch(context.Background(), bodies)

	require.Len(t, outcomes, 3)
	assert.Equal(t, StatusDispatched, outcomes[0].Status)
	assert.Equal(t, StatusFailedChannel, outcomes[1].Status)
	assert.Equal(t, StatusDispatched, outcomes[2].Status)

	// the failing sibling must not prevent either persistence or dispatch
	// of the other messages
	assert.Len(t, capture.records, 3)
}

func TestProcessBatch_RedeliveryWritesDuplicateRecord(t *testing.T) {
	d, store, emailMock, _, _ := setupDispatcher(t)

	capture := &recordCapture{}
	store.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).DoAndReturn(capture.add).Times(2)

	gomock.InOrder(
		emailMock.EXPECT().
			SendEmail(gomock.Any(), testSender, "a@b.com", "New Notification", "hi").
			Return(errors.New("smtp unavailable")),
		emailMock.EXPECT().
			SendEmail(gomock.Any(), testSender, "a@b.com", "New Notification", "hi").
			Return(nil),
	)

	body := []byte(`{"type":"email","userId":"u1","message":"hi","email":"a@b.com"}`)

	first := d.ProcessBatch(context.Background(), [][]byte{body})
	require.Equal(t, StatusFailedChannel, first[0].Status)

	second := d.ProcessBatch(context.Background(), [][]byte{body})
	require.Equal(t, StatusDispatched, second[0].Status)

	// at-least-once processing: reprocessing yields a second record with a
	// fresh id, and that is tolerated
	require.Len(t, capture.records, 2)
	assert.NotEqual(t, capture.records[0].ID, capture.records[1].ID)
	assert.Equal(t, capture.records[0].UserID, capture.records[1].UserID)
	assert.Equal(t, capture.records[0].Type, capture.records[1].Type)
}

func TestProcessBatch_ChannelRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockrecordStore(ctrl)
	emailMock := mocks.NewMockEmailSender(ctrl)

	d, err := New(store, Providers{
		Email: emailMock,
		SMS:   mocks.NewMockSMSSender(ctrl),
		Push:  mocks.NewMockPushSender(ctrl),
	}, Config{
		SenderIdentity: testSender,
		Strategy:       retry.Strategy{Attempts: 2, Delay: time.Millisecond},
	})
	require.NoError(t, err)

	store.EXPECT().CreateRecord(gomock.Any(), gomock.Any()).Return(nil)
	gomock.InOrder(
		emailMock.EXPECT().
			SendEmail(gomock.Any(), testSender, "a@b.com", "New Notification", "hi").
			Return(errors.New("transient")),
		emailMock.EXPECT().
			SendEmail(gomock.Any(), testSender, "a@b.com", "New Notification", "hi").
			Return(nil),
	)

	body := []byte(`{"type":"email","userId":"u1","message":"hi","email":"a@b.com"}`)
	outcomes := d.ProcessBatch(context.Background(), [][]byte{body})

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusDispatched, outcomes[0].Status)
}

func TestStatus_Ack(t *testing.T) {
	tests := []struct {
		status Status
		ack    bool
	}{
		{StatusDispatched, true},
		{StatusSkippedMalformed, true},
		{StatusSkippedInvalid, true},
		{StatusFailedPersistence, false},
		{StatusFailedChannel, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ack, tt.status.Ack())
	}
}
