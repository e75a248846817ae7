package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct{ to, subject, text, html string }

type fakeSender struct {
	got []sent
	err error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	f.got = append(f.got, sent{to, subject, text, html})
	return f.err
}

func TestDeliverRendersTemplate(t *testing.T) {
	s := &fakeSender{}
	body := []byte(`{"to":"alice@example.com","template":"welcome","data":{"Name":"Alice","AppName":"Acme"}}`)

	require.NoError(t, Deliver(context.Background(), s, body))
	require.Len(t, s.got, 1)
	assert.Equal(t, "alice@example.com", s.got[0].to)
	assert.Contains(t, s.got[0].subject, "Alice")
	assert.NotEmpty(t, s.got[0].html)
}

func TestDeliverRawBody(t *testing.T) {
	s := &fakeSender{}
	body := []byte(`{"to":"bob@example.com","subject":"Hi","text":"plain"}`)

	require.NoError(t, Deliver(context.Background(), s, body))
	assert.Equal(t, sent{"bob@example.com", "Hi", "plain", ""}, s.got[0])
}

func TestDeliverPermanentFailures(t *testing.T) {
	for name, body := range map[string]string{
		"bad json":         `{`,
		"no recipient":     `{"text":"x"}`,
		"unknown template": `{"to":"a@example.com","template":"nope"}`,
	} {
		t.Run(name, func(t *testing.T) {
			s := &fakeSender{}
			err := Deliver(context.Background(), s, []byte(body))
			assert.ErrorIs(t, err, ErrPermanent)
			assert.Empty(t, s.got)
		})
	}
}

func TestDeliverSendFailureIsRetryable(t *testing.T) {
	s := &fakeSender{err: errors.New("mailgun down")}
	err := Deliver(context.Background(), s, []byte(`{"to":"a@example.com","text":"x"}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPermanent)
}
