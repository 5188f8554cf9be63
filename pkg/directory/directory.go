package directory

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
	"github.com/Inhealthcare/open-itk/pkg/message"
)

// defaultNamespace is the property namespace consulted for any attribute
// missing from a channel's own namespace.
const defaultNamespace = "DEFAULT"

// ServiceCapability describes what a remote service supports.
type ServiceCapability struct {
	SupportsSync  bool
	SupportsAsync bool
	Base64        bool
	MimeType      string
}

// Resolver is the directory contract consumed by the sender and the
// business operations. Implementations must be safe for concurrent use.
type Resolver interface {
	// ResolveDestination maps a service id and destination address to a
	// transport route.
	ResolveDestination(serviceID, toAddress string) (*message.TransportRoute, error)

	// Service returns the capability record for a supported service.
	Service(serviceID string) (*ServiceCapability, error)

	// IsProfileSupported reports whether a payload profile is on the
	// allow-list.
	IsProfileSupported(profileID string) bool
}

// Directory resolves routes and capabilities from a flat property store.
type Directory struct {
	props *viper.Viper
}

// New creates a Directory over an already-populated property store.
func New(props *viper.Viper) *Directory {
	return &Directory{props: props}
}

// Load reads a Java-style .properties file into a new Directory.
func Load(path string) (*Directory, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("properties")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading directory properties: %w", err)
	}
	return New(v), nil
}

// ResolveDestination implements Resolver. Failures are non-retryable: a
// missing channel means the directory has no route for this service and
// destination, and retrying cannot fix that.
func (d *Directory) ResolveDestination(serviceID, toAddress string) (*message.TransportRoute, error) {
	if serviceID == "" {
		return nil, itkerrors.NewMessaging(itkerrors.KindProcessingNotRetryable,
			"cannot resolve destination without a service id", nil)
	}
	if toAddress == "" {
		return nil, itkerrors.NewMessaging(itkerrors.KindProcessingNotRetryable,
			"cannot resolve destination without a destination address", nil)
	}

	channel := d.props.GetString(serviceID + "." + toAddress + ".channelid")
	if channel == "" {
		return nil, itkerrors.NewMessaging(itkerrors.KindProcessingNotRetryable,
			fmt.Sprintf("route not found for service %s to %s", serviceID, toAddress), nil)
	}

	route := &message.TransportRoute{
		TransportType:      d.channelString(channel, "transporttype"),
		PhysicalAddress:    d.channelString(channel, "address"),
		ReplyToAddress:     d.channelString(channel, "replyto"),
		ExceptionToAddress: d.channelString(channel, "exceptionto"),
		TimeToLive:         d.channelDuration(channel, "timetolive", time.Second, message.DefaultTimeToLive),
		Timeout:            d.channelDuration(channel, "timeout", time.Millisecond, message.DefaultTimeout),
	}
	if route.TransportType == "" {
		route.TransportType = message.TransportTypeUnknown
	}
	return route, nil
}

// Service implements Resolver. A service absent from configuration, or not
// marked supported, is a non-retryable failure.
func (d *Directory) Service(serviceID string) (*ServiceCapability, error) {
	if !d.props.GetBool(serviceID + ".supported") {
		return nil, itkerrors.NewMessaging(itkerrors.KindProcessingNotRetryable,
			fmt.Sprintf("service %s is not supported", serviceID), nil)
	}
	return &ServiceCapability{
		SupportsSync:  d.props.GetBool(serviceID + ".sync"),
		SupportsAsync: d.props.GetBool(serviceID + ".async"),
		Base64:        d.props.GetBool(serviceID + ".base64"),
		MimeType:      d.props.GetString(serviceID + ".mimetype"),
	}, nil
}

// IsProfileSupported implements Resolver.
func (d *Directory) IsProfileSupported(profileID string) bool {
	return d.props.GetBool(profileID + ".supported")
}

// channelString reads a channel attribute with DEFAULT namespace fallback.
func (d *Directory) channelString(channel, attr string) string {
	if v := d.props.GetString(channel + "." + attr); v != "" {
		return v
	}
	return d.props.GetString(defaultNamespace + "." + attr)
}

// channelDuration reads a numeric channel attribute in the given unit,
// falling back to the DEFAULT namespace and then to the failsafe value.
func (d *Directory) channelDuration(channel, attr string, unit, failsafe time.Duration) time.Duration {
	if v := d.props.GetInt64(channel + "." + attr); v > 0 {
		return time.Duration(v) * unit
	}
	if v := d.props.GetInt64(defaultNamespace + "." + attr); v > 0 {
		return time.Duration(v) * unit
	}
	return failsafe
}
