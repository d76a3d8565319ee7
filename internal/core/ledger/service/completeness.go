package service

import (
	"fmt"
	"sort"
	"strings"
)

// SeqRange is an inclusive range of ledger sequence numbers.
type SeqRange struct {
	Start, End uint32
}

// Contains reports whether seq falls inside the range.
func (r SeqRange) Contains(seq uint32) bool {
	return seq >= r.Start && seq <= r.End
}

// String renders the range as "start-end", or just "start" for a
// single sequence.
func (r SeqRange) String() string {
	if r.Start == r.End {
		return fmt.Sprintf("%d", r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// SeqRanges tracks which ledger sequences the node holds, as a sorted
// list of non-overlapping ranges. The zero value is empty and usable.
type SeqRanges struct {
	ranges []SeqRange
}

// Add marks a single sequence as held.
func (s *SeqRanges) Add(seq uint32) {
	s.AddRange(seq, seq)
}

// AddRange marks an inclusive range of sequences as held. Overlapping
// and adjacent ranges collapse into one.
func (s *SeqRanges) AddRange(start, end uint32) {
	if start > end {
		return
	}

	s.ranges = append(s.ranges, SeqRange{Start: start, End: end})
	sort.Slice(s.ranges, func(i, j int) bool {
		return s.ranges[i].Start < s.ranges[j].Start
	})

	merged := s.ranges[:1]
	for _, r := range s.ranges[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End+1 {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		merged = append(merged, r)
	}
	s.ranges = merged
}

// Contains reports whether seq is held.
func (s *SeqRanges) Contains(seq uint32) bool {
	idx := sort.Search(len(s.ranges), func(i int) bool {
		return s.ranges[i].End >= seq
	})
	return idx < len(s.ranges) && s.ranges[idx].Contains(seq)
}

// Range returns the overall minimum and maximum held sequence, and
// whether any sequence is held at all.
func (s *SeqRanges) Range() (min, max uint32, ok bool) {
	if len(s.ranges) == 0 {
		return 0, 0, false
	}
	return s.ranges[0].Start, s.ranges[len(s.ranges)-1].End, true
}

// Count returns the total number of held sequences.
func (s *SeqRanges) Count() uint32 {
	var total uint32
	for _, r := range s.ranges {
		total += r.End - r.Start + 1
	}
	return total
}

// String renders the held ranges as "1-5,7,9-12", or "empty" when
// nothing is held.
func (s *SeqRanges) String() string {
	if len(s.ranges) == 0 {
		return "empty"
	}
	parts := make([]string, 0, len(s.ranges))
	for _, r := range s.ranges {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, ",")
}
