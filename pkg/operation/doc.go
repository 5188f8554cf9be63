// Copyright (c) 2024 The open-itk Authors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package operation implements the business operation framework: a shared
synchronous pipeline reused by every concrete SMSP operation.

# Pipeline

[Engine.Process] runs one invocation end to end:

 1. Configuration completeness is verified before the request is touched;
    any single missing item fails fast with a named configuration error.
 2. The outbound request is audited at the protocol level.
 3. Operation-specific field validation runs; a failure aborts the call
    before any network interaction.
 4. The business payload is built and the distribution envelope is
    constructed around it, with the operation's patient identities
    attached.
 5. The envelope is sent synchronously over the route resolved by the
    directory of services.
 6. The outcome is normalized: a normal response is unmarshalled into the
    operation's typed response; a busy signal becomes the BUSY sentinel
    code; every other send or parse failure becomes the FAILED sentinel
    code. Neither sentinel surfaces as an error.
 7. The response, sentinel or not, is audited. An audit failure is
    escalated even though the remote call already succeeded.

Callers therefore see either a typed response or a configuration,
validation or logging error, never a raw transport failure.

# Operations

Each concrete operation implements the [Capability] step set consumed by
the shared pipeline: [GetNHSNumber] traces an NHS number from
demographics, [VerifyNHSNumber] confirms an NHS number against
demographics, [GetPatientDetailsByNHSNumber] and
[GetPatientDetailsBySearch] retrieve patient demographics.
*/
package operation
