package directory

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
	"github.com/Inhealthcare/open-itk/pkg/message"
)

const testDestination = "urn:nhs-uk:addressing:ods:TESTORGS"

func newTestProps() *viper.Viper {
	v := viper.New()
	v.Set(message.ServiceVerifyNHSNumber+"."+testDestination+".channelid", "SMSP")
	v.Set("SMSP.transporttype", "WS")
	v.Set("SMSP.address", "https://smsp.example.nhs.uk/smsp")
	v.Set("SMSP.timetolive", 600)
	v.Set("DEFAULT.replyto", "https://sender.example.nhs.uk/reply")
	v.Set("DEFAULT.exceptionto", "https://sender.example.nhs.uk/fault")
	v.Set(message.ServiceVerifyNHSNumber+".supported", true)
	v.Set(message.ServiceVerifyNHSNumber+".sync", true)
	v.Set(message.ServiceVerifyNHSNumber+".mimetype", "text/xml")
	v.Set(message.ProfileVerifyNHSNumberRequest+".supported", true)
	return v
}

func TestResolveDestination(t *testing.T) {
	d := New(newTestProps())

	route, err := d.ResolveDestination(message.ServiceVerifyNHSNumber, testDestination)
	require.NoError(t, err)

	assert.Equal(t, "WS", route.TransportType)
	assert.Equal(t, "https://smsp.example.nhs.uk/smsp", route.PhysicalAddress)
	// Channel value wins over DEFAULT.
	assert.Equal(t, 600*time.Second, route.TimeToLive)
	// Missing channel attributes fall back to the DEFAULT namespace.
	assert.Equal(t, "https://sender.example.nhs.uk/reply", route.ReplyToAddress)
	assert.Equal(t, "https://sender.example.nhs.uk/fault", route.ExceptionToAddress)
	// No timeout anywhere: failsafe constant.
	assert.Equal(t, message.DefaultTimeout, route.Timeout)
}

func TestResolveDestinationEmptyArguments(t *testing.T) {
	d := New(newTestProps())

	_, err := d.ResolveDestination("", testDestination)
	require.Error(t, err)
	var msgErr *itkerrors.MessagingError
	require.ErrorAs(t, err, &msgErr)
	assert.False(t, msgErr.Retryable())

	_, err = d.ResolveDestination(message.ServiceVerifyNHSNumber, "")
	assert.Error(t, err)
}

func TestResolveDestinationRouteNotFound(t *testing.T) {
	d := New(newTestProps())

	_, err := d.ResolveDestination(message.ServiceGetNHSNumber, testDestination)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "route not found")

	var msgErr *itkerrors.MessagingError
	require.ErrorAs(t, err, &msgErr)
	assert.False(t, msgErr.Retryable())
}

func TestResolveDestinationUnknownTransportType(t *testing.T) {
	v := newTestProps()
	v.Set("SMSP.transporttype", "")
	d := New(v)

	route, err := d.ResolveDestination(message.ServiceVerifyNHSNumber, testDestination)
	require.NoError(t, err)
	assert.Equal(t, message.TransportTypeUnknown, route.TransportType)
}

func TestService(t *testing.T) {
	d := New(newTestProps())

	cap, err := d.Service(message.ServiceVerifyNHSNumber)
	require.NoError(t, err)
	assert.True(t, cap.SupportsSync)
	assert.False(t, cap.SupportsAsync)
	assert.False(t, cap.Base64)
	assert.Equal(t, "text/xml", cap.MimeType)

	_, err = d.Service(message.ServiceGetNHSNumber)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestIsProfileSupported(t *testing.T) {
	d := New(newTestProps())

	assert.True(t, d.IsProfileSupported(message.ProfileVerifyNHSNumberRequest))
	assert.False(t, d.IsProfileSupported(message.ProfileGetNHSNumberRequest))
}
