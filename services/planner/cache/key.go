// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cache

import (
	"sort"

	"github.com/AleutianAI/relaxplan/services/planner/action"
	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns an order-insensitive 64-bit hash of a state.
//
// Description:
//
//	The literal keys are sorted and deduplicated before hashing, so two
//	slices holding the same literals in any order, with or without
//	repeats, share a fingerprint.
func Fingerprint(state []action.Literal) uint64 {
	keys := make([]string, len(state))
	for i, l := range state {
		keys[i] = l.Key()
	}
	sort.Strings(keys)

	d := xxhash.New()
	prev := ""
	for i, k := range keys {
		if i > 0 && k == prev {
			continue
		}
		_, _ = d.WriteString(k)
		_, _ = d.Write([]byte{0})
		prev = k
	}
	return d.Sum64()
}
