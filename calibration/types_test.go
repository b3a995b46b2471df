package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectTemplate(t *testing.T) {
	tpl := ObjectTemplate(GridSize{Cols: 3, Rows: 2}, 0)

	assert.Equal(t, ObjectPointSet{
		{0, 0, 0}, {1, 0, 0}, {2, 0, 0},
		{0, 1, 0}, {1, 1, 0}, {2, 1, 0},
	}, tpl)

	big := ObjectTemplate(grid96, 1)
	assert.Len(t, big, 54)
	assert.Equal(t, Point3{8, 5, 0}, big[53])
	for _, p := range big {
		assert.Zero(t, p.Z)
	}
}

func TestGridSize(t *testing.T) {
	assert.Equal(t, "9x6", grid96.String())
	assert.Equal(t, 54, grid96.Count())
	assert.NoError(t, grid96.Validate())
	assert.Error(t, GridSize{Cols: 9, Rows: 1}.Validate())
	assert.Error(t, GridSize{}.Validate())
}

func TestImageShape(t *testing.T) {
	assert.True(t, ImageShape{}.Empty())
	assert.True(t, ImageShape{Width: 10}.Empty())
	assert.False(t, ImageShape{1280, 720}.Empty())
}
