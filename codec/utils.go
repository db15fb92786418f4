// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "github.com/embervm/embervm/consts"

// BytesLen returns the packed size of a length-prefixed byte slice.
func BytesLen(msg []byte) int {
	return consts.IntLen + len(msg)
}
