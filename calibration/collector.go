package calibration

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultDir is where calibration photographs are looked up
	DefaultDir = "camera_cal"
	// DefaultPattern selects the calibration photographs inside DefaultDir
	DefaultPattern = "calibration*.jpg"
)

// Detection is what a CornerDetector found in one image
type Detection struct {
	Shape   ImageShape
	Found   bool
	Corners ImagePointSet
}

// CornerDetector finds a chessboard corner grid in an image file.
// An error means the file could not be read or decoded.
type CornerDetector interface {
	DetectCorners(path string, grid GridSize) (Detection, error)
}

// Progress receives per-file progress while collecting
type Progress interface {
	Start(total int)
	Increment(path string)
	Stop()
}

type noProgress struct{}

func (noProgress) Start(int)        {}
func (noProgress) Increment(string) {}
func (noProgress) Stop()            {}

// Collector gathers object/image point correspondences from a directory of photographs
type Collector struct {
	Detector CornerDetector
	Pattern  string
	// SquareSize scales the object template; 0 means unit squares
	SquareSize float32
	// AllowMixedShapes keeps images whose size differs from the first one
	AllowMixedShapes bool
	Progress         Progress
	Logger           logrus.FieldLogger
}

// NewCollector returns a collector with the default file pattern
func NewCollector(detector CornerDetector, logger logrus.FieldLogger) *Collector {
	return &Collector{
		Detector: detector,
		Pattern:  DefaultPattern,
		Progress: noProgress{},
		Logger:   logger,
	}
}

// Files lists the files in dir matching the collector pattern
func (c *Collector) Files(dir string) ([]string, error) {
	pattern := c.pattern()
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.Errorf("invalid file pattern %q", pattern)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", dir)
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		files = append(files, filepath.Join(dir, filepath.FromSlash(m)))
	}
	return files, nil
}

// Collect runs corner detection on every matching file in dir. Images without a
// full corner grid are skipped. An empty directory yields an empty collection.
func (c *Collector) Collect(ctx context.Context, dir string, grid GridSize) (*PointCollection, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}

	files, err := c.Files(dir)
	if err != nil {
		return nil, err
	}

	log := c.logger().WithFields(logrus.Fields{"dir": dir, "grid": grid.String()})
	if len(files) == 0 {
		log.Warnf("no files matching %q", c.pattern())
	}

	progress := c.Progress
	if progress == nil {
		progress = noProgress{}
	}
	progress.Start(len(files))
	defer progress.Stop()

	template := ObjectTemplate(grid, c.SquareSize)
	result := &PointCollection{}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.collectOne(log.WithField("file", filepath.Base(path)), result, path, grid, template)
		progress.Increment(path)
	}

	log.WithFields(logrus.Fields{
		"accepted": result.Views(),
		"skipped":  len(result.Skipped),
		"shape":    result.Shape.String(),
	}).Info("corner collection finished")

	return result, nil
}

func (c *Collector) collectOne(log logrus.FieldLogger, result *PointCollection, path string, grid GridSize, template ObjectPointSet) {
	det, err := c.Detector.DetectCorners(path, grid)
	if err != nil {
		log.WithError(err).Warn("skipping unreadable image")
		result.skip(path, SkipUnreadable, err)
		return
	}

	if result.Shape.Empty() {
		result.Shape = det.Shape
	} else if det.Shape != result.Shape {
		if !c.AllowMixedShapes {
			log.Warnf("skipping image of size %s, expected %s", det.Shape, result.Shape)
			result.skip(path, SkipShapeMismatch, nil)
			return
		}
		log.Warnf("image size %s differs from %s", det.Shape, result.Shape)
	}

	if !det.Found || len(det.Corners) != grid.Count() {
		log.Debug("no chessboard corners found")
		result.skip(path, SkipNoCorners, nil)
		return
	}

	log.Debug("chessboard corners found")
	result.add(path, template, det.Corners)
}

func (c *Collector) pattern() string {
	if c.Pattern == "" {
		return DefaultPattern
	}
	return c.Pattern
}

func (c *Collector) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}
