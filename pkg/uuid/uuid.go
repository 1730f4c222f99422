// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for the service.

It wraps the standard UUID library to generate Version 7 values, used as
request correlation IDs and as the 'jti' of every session token.

Advantages:

  - Sortable: Naturally ordered by creation time (millisecond precision).
  - Greppable: Log lines and token IDs for one login flow sort together.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
//
// It falls back to a random (v4) UUID if the v7 generator cannot read the
// clock sequence, so callers never need to handle an error.
func New() string {

	// Create a new version 7 UUID (time-sortable)
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
