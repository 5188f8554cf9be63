package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	itkerrors "github.com/Inhealthcare/open-itk/pkg/errors"
	"github.com/Inhealthcare/open-itk/pkg/message"
)

// Transport is the physical transmission contract. A nil body with a nil
// error means the remote accepted the message without a synchronous body
// (the 202 case). Remote unavailability is signalled with a busy error;
// other transport failures are comms or timeout errors.
type Transport interface {
	Send(ctx context.Context, frame string, route *message.TransportRoute, headers map[string]string) ([]byte, error)
}

// HTTPConfig contains HTTP transport configuration.
type HTTPConfig struct {
	MinTLSVersion   uint16
	Certificates    []tls.Certificate
	RootCAs         *x509.CertPool
	IdleConnTimeout time.Duration
}

// DefaultHTTPConfig returns the default HTTP transport configuration.
func DefaultHTTPConfig() *HTTPConfig {
	return &HTTPConfig{
		MinTLSVersion:   tls.VersionTLS12,
		IdleConnTimeout: 90 * time.Second,
	}
}

// HTTPTransport posts frames over HTTP(S). The per-request timeout comes
// from the route, not from the client: the route's transport timeout is an
// attribute resolved by the directory and carried end to end.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates an HTTP transport.
func NewHTTPTransport(config *HTTPConfig) *HTTPTransport {
	if config == nil {
		config = DefaultHTTPConfig()
	}

	tlsConfig := &tls.Config{
		MinVersion:   config.MinTLSVersion,
		Certificates: config.Certificates,
		RootCAs:      config.RootCAs,
	}

	return &HTTPTransport{
		client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig:     tlsConfig,
				IdleConnTimeout:     config.IdleConnTimeout,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, frame string, route *message.TransportRoute, headers map[string]string) ([]byte, error) {
	timeout := route.Timeout
	if timeout == 0 {
		timeout = message.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, route.PhysicalAddress, bytes.NewReader([]byte(frame)))
	if err != nil {
		return nil, itkerrors.NewMessaging(itkerrors.KindProcessingNotRetryable,
			fmt.Sprintf("building request to %s", route.PhysicalAddress), err)
	}

	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, itkerrors.NewTimeout(
				fmt.Sprintf("no response from %s within %s", route.PhysicalAddress, timeout), err)
		}
		return nil, itkerrors.NewComms(
			fmt.Sprintf("sending to %s", route.PhysicalAddress), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return nil, itkerrors.NewBusy()
	case resp.StatusCode == http.StatusAccepted:
		return nil, nil
	case resp.StatusCode == http.StatusOK, resp.StatusCode == http.StatusInternalServerError:
		// 500 carries the SOAP fault body.
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, itkerrors.NewComms(
			fmt.Sprintf("unexpected status %d from %s: %s", resp.StatusCode, route.PhysicalAddress, body), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, itkerrors.NewComms("reading response body", err)
	}
	if len(body) == 0 {
		return nil, nil
	}
	return body, nil
}
