// Copyright (c) 2024 The open-itk Authors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package message defines the ITK message model: the business [Message], its
[MessageProperties], the per-hop [TransportProperties], and the
[TransportRoute] produced by directory resolution.

# Lifecycle

A Message and its MessageProperties are created per call, live for the
duration of one operation invocation, and are then discarded; nothing
persists beyond the audit trail. TransportProperties are regenerated for
every transport hop and are never reused across retries, while the
conversation id is generated exactly once and carried unchanged end to end.

# Addressing

Addresses and identities carry a URI plus a type; the type defaults to the
well-known ITK OID constants when omitted. Exactly one recipient is
supported per message. Audit and patient identities are ordered lists
looked up by type, not by position.
*/
package message
