package qc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/agentlink-service/internal/domain"
)

func img(url, name, date string) domain.QCImage {
	return domain.QCImage{ImageURL: url, ProductName: name, QCDate: date}
}

func TestBuildGalleriesTimeProximity(t *testing.T) {
	images := []domain.QCImage{
		img("a.jpg", "hoodie", "2024-05-01 10:00:00"),
		img("b.jpg", "hoodie", "2024-05-01 10:03:00"),
		img("c.jpg", "hoodie", "2024-05-01 10:12:00"),
	}

	galleries := BuildGalleries(images)
	require.Len(t, galleries, 2)

	assert.Equal(t, 2, galleries[0].ImageCount)
	assert.Len(t, galleries[0].Images, 2)
	assert.Equal(t, "a.jpg", galleries[0].Images[0].ImageURL)
	assert.Equal(t, "b.jpg", galleries[0].Images[1].ImageURL)

	assert.Equal(t, 1, galleries[1].ImageCount)
	assert.Equal(t, "c.jpg", galleries[1].Images[0].ImageURL)
}

func TestBuildGalleriesDifferentCalendarDate(t *testing.T) {
	// Clock-time proximity across midnight never merges: a different
	// calendar date always opens a new gallery.
	images := []domain.QCImage{
		img("a.jpg", "hoodie", "2024-05-01 23:59:00"),
		img("b.jpg", "hoodie", "2024-05-02 00:01:00"),
	}

	galleries := BuildGalleries(images)
	require.Len(t, galleries, 2)
	assert.Equal(t, 1, galleries[0].ImageCount)
	assert.Equal(t, 1, galleries[1].ImageCount)
}

func TestBuildGalleriesSortsBeforeClustering(t *testing.T) {
	images := []domain.QCImage{
		img("late.jpg", "shoes", "2024-05-01 10:12:00"),
		img("early.jpg", "shoes", "2024-05-01 10:00:00"),
		img("mid.jpg", "shoes", "2024-05-01 10:03:00"),
	}

	galleries := BuildGalleries(images)
	require.Len(t, galleries, 2)
	assert.Equal(t, "early.jpg", galleries[0].Images[0].ImageURL)
	assert.Equal(t, "mid.jpg", galleries[0].Images[1].ImageURL)
	assert.Equal(t, "late.jpg", galleries[1].Images[0].ImageURL)
}

func TestBuildGalleriesEarliestMatchingGalleryWins(t *testing.T) {
	// 10:00 and 10:08 anchor two galleries; 10:04 is within tolerance of
	// both but joins the earliest-created one.
	images := []domain.QCImage{
		img("a.jpg", "bag", "2024-05-01 10:00:00"),
		img("b.jpg", "bag", "2024-05-01 10:08:00"),
		img("c.jpg", "bag", "2024-05-01 10:04:00"),
	}

	galleries := BuildGalleries(images)
	require.Len(t, galleries, 2)
	// After sorting: 10:00 -> gallery 1; 10:04 -> gallery 1 (within 5m);
	// 10:08 -> within 5m of 10:04 but anchors are fixed at gallery
	// creation, so 10:08 vs anchor 10:00 exceeds tolerance.
	assert.Equal(t, 2, galleries[0].ImageCount)
	assert.Equal(t, 1, galleries[1].ImageCount)
	assert.Equal(t, "b.jpg", galleries[1].Images[0].ImageURL)
}

func TestBuildGalleriesMetadata(t *testing.T) {
	galleries := BuildGalleries([]domain.QCImage{img("a.jpg", "hat", "2024-05-01 09:30:15")})
	require.Len(t, galleries, 1)

	g := galleries[0]
	assert.Equal(t, "2024-05-01 09:30:15", g.Date)
	assert.Equal(t, "09:30:15", g.Time)
	assert.Equal(t, "hat", g.ProductName)
	assert.NotEmpty(t, g.ID)
}

func TestBuildGalleriesEmpty(t *testing.T) {
	assert.Empty(t, BuildGalleries(nil))
	assert.Empty(t, BuildGalleries([]domain.QCImage{}))
}
