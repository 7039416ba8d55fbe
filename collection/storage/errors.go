// Copyright 2021-2024, Offchain Labs, Inc.
// For license information, see https://github.com/offchainlabs/mintengine/blob/master/LICENSE

package storage

import "errors"

var ErrNotUint64 = errors.New("expected uint64 compatible value in storage")
