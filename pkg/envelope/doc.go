// Copyright (c) 2024 The open-itk Authors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package envelope builds and parses the ITK distribution envelope.

Building produces a canonical intermediate document from a [message.Message]
and hands it to an external template transform to obtain the final wire
text. Parsing turns a received envelope document back into a Message.

The envelope carries exactly one manifest entry and exactly one payload
block, and addresses exactly one recipient. These are enforced as hard
limits with loud failures: the intended multi-payload and multi-recipient
semantics are not specified anywhere in the protocol usage this toolkit
supports, so violations are a non-retryable processing error rather than
something to silently generalize.
*/
package envelope
