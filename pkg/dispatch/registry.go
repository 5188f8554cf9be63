package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
	"github.com/Inhealthcare/open-itk/pkg/message"
)

// Handler processes one received message and returns the reply message,
// nil when the exchange produces no reply.
type Handler func(ctx context.Context, msg *message.Message) (*message.Message, error)

type shapeKey struct {
	service string
	profile string
}

// Registry maps message shapes to handlers. Registration happens at
// startup; lookups are concurrent.
type Registry struct {
	logger logrus.FieldLogger

	mu sync.RWMutex
	r  map[shapeKey]Handler
}

// NewRegistry returns an empty registry.
func NewRegistry(logger logrus.FieldLogger) *Registry {
	return &Registry{
		logger: logger,
		r:      make(map[shapeKey]Handler),
	}
}

// Register binds a handler to a service id and profile id. An empty
// profile id registers the handler for every profile of the service.
// Registering the same shape twice is a configuration mistake and fails.
func (r *Registry) Register(serviceID, profileID string, h Handler) error {
	if serviceID == "" {
		return itkerrors.NewConfiguration("service id")
	}
	if h == nil {
		return itkerrors.NewConfiguration("handler")
	}
	key := shapeKey{service: serviceID, profile: profileID}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.r[key]; exists {
		return itkerrors.NewConfiguration(
			fmt.Sprintf("duplicate handler for %s %s", serviceID, profileID))
	}
	r.r[key] = h
	r.logger.WithFields(logrus.Fields{
		"serviceId": serviceID,
		"profileId": profileID,
	}).Info("handler registered")
	return nil
}

// Lookup returns the handler for a service and profile pair, falling back
// to the service-wide handler.
func (r *Registry) Lookup(serviceID, profileID string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, ok := r.r[shapeKey{service: serviceID, profile: profileID}]; ok {
		return h, true
	}
	h, ok := r.r[shapeKey{service: serviceID}]
	return h, ok
}

// Dispatch routes a received message to its handler. A message whose
// shape has no registered handler is a non-retryable failure.
func (r *Registry) Dispatch(ctx context.Context, msg *message.Message) (*message.Message, error) {
	if msg == nil || msg.Properties == nil {
		return nil, itkerrors.NewMessaging(itkerrors.KindInvalidMessage,
			"cannot dispatch a message without properties", nil)
	}
	h, ok := r.Lookup(msg.Properties.ServiceID, msg.Properties.ProfileID)
	if !ok {
		return nil, itkerrors.NewMessaging(itkerrors.KindProcessingNotRetryable,
			fmt.Sprintf("no handler registered for service %s", msg.Properties.ServiceID), nil)
	}
	return h(ctx, msg)
}
