package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotificationRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     NotificationRequest
		wantErr bool
	}{
		{
			name: "valid email",
			req:  NotificationRequest{Type: TypeEmail, UserID: "u1", Message: "hi", Email: "a@b.com"},
		},
		{
			name: "valid sms without number",
			// destination presence is checked at dispatch, not here
			req: NotificationRequest{Type: TypeSMS, UserID: "u2", Message: "hi"},
		},
		{
			name: "valid push",
			req:  NotificationRequest{Type: TypePush, UserID: "u3", Message: "hi", Number: "+111"},
		},
		{
			name:    "empty",
			req:     NotificationRequest{},
			wantErr: true,
		},
		{
			name:    "missing type",
			req:     NotificationRequest{UserID: "u1", Message: "hi"},
			wantErr: true,
		},
		{
			name:    "unrecognized type",
			req:     NotificationRequest{Type: "fax", UserID: "u1", Message: "hi"},
			wantErr: true,
		},
		{
			name:    "missing userId",
			req:     NotificationRequest{Type: TypeEmail, Message: "hi"},
			wantErr: true,
		},
		{
			name:    "missing message",
			req:     NotificationRequest{Type: TypeEmail, UserID: "u1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotificationRequest_Destination(t *testing.T) {
	req := NotificationRequest{Type: TypeEmail, Email: "a@b.com", Number: "+111"}
	assert.Equal(t, "a@b.com", req.Destination())

	req.Type = TypeSMS
	assert.Equal(t, "+111", req.Destination())

	req.Type = TypePush
	assert.Equal(t, "+111", req.Destination())
}
