// Copyright (c) 2024 The open-itk Authors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package dispatch routes received messages to handlers by message shape.

A [Registry] maps a service id, optionally narrowed by profile id, to a
handler function. Handlers are registered explicitly at startup; there is
no runtime introspection. Dispatch first looks for a handler registered
for the exact service and profile pair, then falls back to a handler
registered for the service alone.
*/
package dispatch
