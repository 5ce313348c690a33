package qc

import (
	"fmt"
	"sort"
	"time"

	"github.com/user/agentlink-service/internal/domain"
)

// galleryTolerance is the time-proximity window around a gallery's anchor
// timestamp. Images further apart belong to different inspection
// sessions.
const galleryTolerance = 5 * time.Minute

// qcDateLayouts are tried in order when parsing provider timestamps.
var qcDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseQCDate(value string) time.Time {
	for _, layout := range qcDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func sameCalendarDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// BuildGalleries clusters a flat timestamped image list into galleries.
// Images are sorted by timestamp ascending, then each is appended to the
// first existing gallery (in creation order) whose anchor lies within the
// tolerance window on the same calendar date; otherwise it opens a new
// gallery anchored at its own timestamp. Single-pass greedy, tie-breaking
// always favors the earliest-created matching gallery. The linear scan
// per image is O(n*galleries); fine at expected batch sizes of tens of
// images.
func BuildGalleries(images []domain.QCImage) []domain.QCGallery {
	if len(images) == 0 {
		return []domain.QCGallery{}
	}

	sorted := make([]domain.QCImage, len(images))
	copy(sorted, images)
	sort.SliceStable(sorted, func(i, j int) bool {
		return parseQCDate(sorted[i].QCDate).Before(parseQCDate(sorted[j].QCDate))
	})

	galleries := []domain.QCGallery{}
	anchors := []time.Time{}

	for _, image := range sorted {
		imageTime := parseQCDate(image.QCDate)

		added := false
		for i := range galleries {
			diff := imageTime.Sub(anchors[i])
			if diff < 0 {
				diff = -diff
			}
			if diff <= galleryTolerance && sameCalendarDate(imageTime, anchors[i]) {
				galleries[i].Images = append(galleries[i].Images, image)
				galleries[i].ImageCount = len(galleries[i].Images)
				added = true
				break
			}
		}

		if !added {
			galleries = append(galleries, domain.QCGallery{
				ID:          fmt.Sprintf("gallery_%d", imageTime.UnixMilli()),
				Images:      []domain.QCImage{image},
				Date:        image.QCDate,
				Time:        imageTime.Format("15:04:05"),
				ProductName: image.ProductName,
				ImageCount:  1,
			})
			anchors = append(anchors, imageTime)
		}
	}

	return galleries
}
