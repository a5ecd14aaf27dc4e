// SPDX-License-Identifier: EPL-2.0

package audmix

import "errors"

var (
	ErrNoGroupWithName    = errors.New("no group with that name")
	ErrNoTrackWithName    = errors.New("no sub-track with that name")
	ErrDuplicateTrackName = errors.New("sub-track name already in use")
	ErrDuplicateGroupName = errors.New("group name already in use")
	ErrUnknownSound       = errors.New("sound was not added")
	ErrUnknownSubTrack    = errors.New("sub-track was not added")
	ErrCapacityExceeded   = errors.New("capacity exceeded")
	ErrNoTrack            = errors.New("no track given")
	ErrClosed             = errors.New("manager is closed")
)
