// Copyright (c) 2024 The open-itk Authors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package transport implements the wire transport layer: SOAP 1.1 framing
with WS-Addressing headers, the physical HTTP transport, and the
synchronous sender with its response classification.

# Send lifecycle

Each synchronous send walks a fixed sequence: build the transport frame,
audit the request, physically send, classify the response, audit the
outcome, return. Every outcome is audited exactly once with a status tag,
and an audit write failure is itself escalated: no network interaction may
go unaudited.

# Classification

The classified outcomes are explicit result variants rather than
exceptions: success carries the parsed response message, busy is a
first-class remote-unavailable signal, and a structured SOAP fault carries
the extracted error code, diagnostic text and correlation id. A 202
accepted-without-body reply is a hard error for a synchronous call, and a
response with no extractable payload is a non-retryable processing error.
*/
package transport
