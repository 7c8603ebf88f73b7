// SPDX-License-Identifier: GPL-3.0-or-later

package transport

import "context"

// Func is a generic operation that accepts an input and returns a result.
//
// Func instances can be composed using [Compose2] and [Compose3] to build
// type-safe pipelines where the output of one operation flows to the
// input of the next.
//
// Resource cleanup contract: when a Func receives a closeable resource as
// input and returns an error, it is responsible for closing that resource
// before returning. This ensures that composed pipelines do not leak
// resources on partial failure. See [TLSHandshakeFunc] for an example of
// this pattern.
type Func[A, B any] interface {
	Call(ctx context.Context, input A) (B, error)
}
