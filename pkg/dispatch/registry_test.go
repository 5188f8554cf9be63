package dispatch

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
	"github.com/Inhealthcare/open-itk/pkg/message"
)

func inbound(serviceID, profileID string) *message.Message {
	msg := message.New("<payload/>")
	props := message.NewProperties()
	props.ServiceID = serviceID
	props.ProfileID = profileID
	msg.Properties = props
	return msg
}

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry(logrus.StandardLogger())

	var got *message.Message
	require.NoError(t, reg.Register(message.ServiceVerifyNHSNumber, "", func(_ context.Context, msg *message.Message) (*message.Message, error) {
		got = msg
		return message.New("<reply/>"), nil
	}))

	msg := inbound(message.ServiceVerifyNHSNumber, message.ProfileVerifyNHSNumberRequest)
	reply, err := reg.Dispatch(context.Background(), msg)
	require.NoError(t, err)

	assert.Same(t, msg, got)
	require.NotNil(t, reply)
	assert.Equal(t, "<reply/>", reply.BusinessPayload)
}

func TestRegistryProfileNarrowing(t *testing.T) {
	reg := NewRegistry(logrus.StandardLogger())

	var hit string
	handler := func(name string) Handler {
		return func(context.Context, *message.Message) (*message.Message, error) {
			hit = name
			return nil, nil
		}
	}
	require.NoError(t, reg.Register(message.ServiceGetNHSNumber, "", handler("wide")))
	require.NoError(t, reg.Register(message.ServiceGetNHSNumber, message.ProfileGetNHSNumberRequest, handler("narrow")))

	_, err := reg.Dispatch(context.Background(), inbound(message.ServiceGetNHSNumber, message.ProfileGetNHSNumberRequest))
	require.NoError(t, err)
	assert.Equal(t, "narrow", hit)

	_, err = reg.Dispatch(context.Background(), inbound(message.ServiceGetNHSNumber, "urn:nhs-en:profile:other-v1-0"))
	require.NoError(t, err)
	assert.Equal(t, "wide", hit)
}

func TestRegistryUnknownShape(t *testing.T) {
	reg := NewRegistry(logrus.StandardLogger())

	_, err := reg.Dispatch(context.Background(), inbound(message.ServiceGetNHSNumber, ""))
	require.Error(t, err)

	var msgErr *itkerrors.MessagingError
	require.ErrorAs(t, err, &msgErr)
	assert.False(t, msgErr.Retryable())
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry(logrus.StandardLogger())
	noop := func(context.Context, *message.Message) (*message.Message, error) { return nil, nil }

	require.NoError(t, reg.Register(message.ServiceGetNHSNumber, "", noop))
	err := reg.Register(message.ServiceGetNHSNumber, "", noop)
	assert.True(t, itkerrors.IsConfiguration(err))
}

func TestRegistryRejectsIncompleteRegistration(t *testing.T) {
	reg := NewRegistry(logrus.StandardLogger())
	noop := func(context.Context, *message.Message) (*message.Message, error) { return nil, nil }

	assert.True(t, itkerrors.IsConfiguration(reg.Register("", "", noop)))
	assert.True(t, itkerrors.IsConfiguration(reg.Register(message.ServiceGetNHSNumber, "", nil)))
}
