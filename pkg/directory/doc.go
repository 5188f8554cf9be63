// Copyright (c) 2024 The open-itk Authors
// SPDX-License-Identifier: BSD-2-Clause

/*
Package directory implements the Directory of Services: the
configuration-driven resolver that maps a service and destination address
to a physical transport route, and a service id to its capability record.

Routes are looked up through a channel indirection. The key
"<serviceId>.<toAddress>.channelid" names a channel, and the channel's
namespace holds the transport attributes; any attribute missing from the
channel namespace falls back to the "DEFAULT" namespace, and the numeric
attributes fall back to hard failsafe constants after that.

The directory is read-only after construction and safe for concurrent use.
*/
package directory
