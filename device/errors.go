// SPDX-License-Identifier: EPL-2.0

package device

import "errors"

var ErrClosed = errors.New("player is closed")
