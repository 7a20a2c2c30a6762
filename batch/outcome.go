/*
LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

  This file is part of Ocean Uploader. Ocean Uploader is free software: you can
  redistribute it and/or modify it under the terms of the GNU
  General Public License as published by the Free Software
  Foundation, either version 3 of the License, or (at your option)
  any later version.

  Ocean Uploader is distributed in the hope that it will be useful,
  but WITHOUT ANY WARRANTY; without even the implied warranty of
  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
  GNU General Public License for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt. If not, see <http://www.gnu.org/licenses/>.
*/

package batch

import "time"

// Kind classifies the outcome of one item.
type Kind int

// Outcome kinds.
const (
	Uploaded        Kind = iota // Upload succeeded; VideoID is set.
	SkippedMetadata             // Metadata generation failed; nothing was uploaded.
	UploadFailed                // Upload was attempted and failed.
)

func (k Kind) String() string {
	switch k {
	case Uploaded:
		return "uploaded"
	case SkippedMetadata:
		return "skipped"
	case UploadFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome records what happened to one item.
type Outcome struct {
	Index     int
	Item      Item
	Kind      Kind
	Title     string    // Generated title, if any.
	VideoID   string    // Set for Uploaded.
	PublishAt time.Time // Zero for SkippedMetadata.
	Reason    string    // Set for SkippedMetadata and UploadFailed.
}

// Summary describes a completed batch.
type Summary struct {
	RunID     string
	Dir       string
	Reference time.Time // Instant all publish slots were computed against.
	Items     int       // Number of items discovered.
	Outcomes  []Outcome // One per processed item, in order.
}

// Count returns the number of outcomes of kind k.
func (s *Summary) Count(k Kind) int {
	var n int
	for _, o := range s.Outcomes {
		if o.Kind == k {
			n++
		}
	}
	return n
}
