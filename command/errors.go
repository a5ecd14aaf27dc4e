// SPDX-License-Identifier: EPL-2.0

package command

import "errors"

var (
	// ErrChannelFull is returned when the queue has no room. The command was
	// not delivered.
	ErrChannelFull = errors.New("command channel is full")

	// ErrChannelDisconnected is returned after either end closed the queue.
	ErrChannelDisconnected = errors.New("command channel is disconnected")
)
