// Copyright (c) 2024 The open-itk Authors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package openitk implements the NHS ITK synchronous messaging core used by
Spine Mini Service (SMSP) consumers.

# Overview

open-itk is a Go implementation of the ITK distribution envelope and its
synchronous web-service transport, together with the SMSP demographics
operations built on top of them. It builds and parses distribution
envelopes, resolves transport routes through a directory of services,
frames envelopes with SOAP and WS-Addressing headers, classifies the
remote's answer into success, busy and fault outcomes, and records a
mandatory audit trail around every network interaction.

# Specifications Implemented

This library models the wire behaviour described by:

  - ITK Core 2.0 distribution envelope (urn:nhs-itk:ns:201005)
  - Spine Mini Service Provider interactions: getNHSNumber,
    verifyNHSNumber, getPatientDetailsByNHSNumber,
    getPatientDetailsBySearch
  - WS-Addressing 2005/08 and WS-Security utility headers, limited to
    the fields the ITK web-service transport actually uses

# Package Structure

The library is organized into the following packages:

	github.com/Inhealthcare/open-itk/pkg/operation - SMSP business operations and shared pipeline
	github.com/Inhealthcare/open-itk/pkg/message   - Message model, addresses and identities
	github.com/Inhealthcare/open-itk/pkg/envelope  - Distribution envelope builder and parser
	github.com/Inhealthcare/open-itk/pkg/transport - SOAP framing and synchronous HTTP sender
	github.com/Inhealthcare/open-itk/pkg/directory - Directory-of-services route resolution
	github.com/Inhealthcare/open-itk/pkg/audit     - Audit sink contract and implementations
	github.com/Inhealthcare/open-itk/pkg/identity  - NHS number and demographic validators
	github.com/Inhealthcare/open-itk/pkg/dispatch  - Handler registry for received messages
	github.com/Inhealthcare/open-itk/pkg/errors    - Error taxonomy

# Quick Start

To trace an NHS number:

	import (
	    "github.com/Inhealthcare/open-itk/pkg/audit"
	    "github.com/Inhealthcare/open-itk/pkg/directory"
	    "github.com/Inhealthcare/open-itk/pkg/envelope"
	    "github.com/Inhealthcare/open-itk/pkg/operation"
	    "github.com/Inhealthcare/open-itk/pkg/transport"
	)

	dir, _ := directory.Load("/etc/itk/directory.properties")
	wire := transport.NewHTTPTransport(transport.DefaultHTTPConfig())
	sink := audit.NewLogSink(logger)
	sender := transport.NewSender(wire, sink, ownEndpoint, username)

	engine := operation.NewEngine(operation.Config{
	    RemoteAddress: "urn:nhs-uk:addressing:ods:SMSP01",
	    ServiceID:     message.ServiceGetNHSNumber,
	    ProfileID:     message.ProfileGetNHSNumberRequest,
	    SenderAddress: "urn:nhs-uk:addressing:ods:SENDER",
	    TemplateName:  envelope.DefaultTemplate,
	}, dir, sender, sink, envelope.Passthrough)

	trace := operation.NewGetNHSNumber(engine)
	resp, err := trace.Process(ctx, &operation.GetNHSNumberRequest{
	    Surname:     "SMITH",
	    DateOfBirth: "19700630",
	})

Callers see either a typed response, whose code may be the remote's
business code or the BUSY/FAILED sentinel, or a configuration, validation
or logging error. Network-level failures never escape as raw errors.

# Audit

Every network interaction is audited at two levels: protocol-level
records around the business operation, transport-level records around the
physical send. An audit write failure is escalated even when the exchange
itself succeeded; an unaudited clinical message exchange is treated as a
compliance failure. Sinks ship for structured logs and MongoDB, plus an
in-memory sink for tests.

# License

BSD-2-Clause License
*/
package openitk
