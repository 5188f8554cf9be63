// Copyright (c) 2024 The open-itk Authors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package errors defines the error taxonomy for the ITK messaging toolkit.

# Taxonomy

  - [ConfigurationError]: a required collaborator or setting is missing.
    Fatal to the current call, never retried automatically.
  - [ValidationError]: caller-supplied data fails a business rule. Fatal to
    the current call, safe to retry after correction.
  - [LoggingError]: the audit sink could not durably record an event. This
    is escalated even when the underlying operation succeeded, because an
    unaudited clinical message exchange is a compliance failure.
  - [MessagingError]: wire-level failures, classified by [Kind] into
    retryable and non-retryable. Each instance carries a unique correlation
    id embedded in its message text for cross-log tracing.
  - [CommsError], [TimeoutError]: transport-specific messaging errors.
  - [BusyError]: the remote signalled it is unavailable. At the transport
    layer this is a distinct signal, never a fault; the operation layer
    converts it to the BUSY response code rather than letting it propagate.

Business operation callers only ever see ConfigurationError,
ValidationError or LoggingError; every network-level outcome is normalized
into the response code of a typed response.
*/
package errors
