// Copyright (c) 2024 The open-itk Authors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package audit defines the audit contract for the toolkit and its default
implementations.

Every request, response and failure is audited before control returns to
the caller; an unaudited clinical message exchange is treated as a
compliance failure, so a sink write failure is escalated even when the
underlying operation succeeded. Records are append-only and are never
mutated after write.

Two record shapes share a common base: protocol-level records carry the
message correlation and identity fields, transport-level records carry the
per-hop addressing fields.

The default sink writes records through logrus. A MongoDB-backed sink
lives in the mongodb sub-package, and [MemorySink] supports tests. Sinks
are explicit instances passed by interface; there is no global fallback.
*/
package audit
