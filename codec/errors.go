// Copyright (C) 2024, EmberVM Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "errors"

var (
	ErrFieldNotPopulated  = errors.New("field is not populated")
	ErrInsufficientLength = errors.New("insufficient length")
	ErrInvalidSize        = errors.New("invalid size")
)
