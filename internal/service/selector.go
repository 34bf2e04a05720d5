package service

import (
	"sort"

	"github.com/samber/lo"

	"viralcut/internal/types"
)

// overlaps reports whether two half-open intervals [a.Start, a.End) and
// [b.Start, b.End) intersect. Segments that only touch at a boundary are
// allowed to coexist.
func overlaps(a, b types.CandidateMoment) bool {
	return a.Start < b.End && b.Start < a.End
}

// SelectSegments ranks candidate moments by score (ties broken by earlier
// start), then greedily keeps non-overlapping winners up to the clip cap.
// Winners are numbered 1..K in that ranking order, independent of where
// they sit on the timeline; fewer candidates than the cap simply yields
// fewer segments, never padding.
func SelectSegments(moments []types.CandidateMoment, maxClips int) []types.Segment {
	if maxClips > types.HardMaxClips {
		maxClips = types.HardMaxClips
	}
	if maxClips < 1 || len(moments) == 0 {
		return nil
	}

	ranked := make([]types.CandidateMoment, len(moments))
	copy(ranked, moments)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Start < ranked[j].Start
	})

	var chosen []types.CandidateMoment
	for _, cand := range ranked {
		if len(chosen) >= maxClips {
			break
		}
		conflict := false
		for _, kept := range chosen {
			if overlaps(cand, kept) {
				conflict = true
				break
			}
		}
		if !conflict {
			chosen = append(chosen, cand)
		}
	}

	// chosen is already in score-descending order with the start-time
	// tie-break, which is exactly the display ranking.
	return lo.Map(chosen, func(cm types.CandidateMoment, idx int) types.Segment {
		return types.Segment{
			SegmentNumber:  idx + 1,
			StartTime:      cm.Start,
			EndTime:        cm.End,
			Duration:       cm.End - cm.Start,
			HighlightScore: cm.Score,
			Rationale:      cm.Rationale,
		}
	})
}
